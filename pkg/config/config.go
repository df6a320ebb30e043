package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

type ServerConfig struct {
	ListenAddress  string   `toml:"listen_address"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type BackendConfig struct {
	// Kind is "sheets" or "sqlite".
	Kind string `toml:"kind"`
}

type SheetsConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	SheetName       string `toml:"sheet_name"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type RosterConfig struct {
	// Collation is the BCP 47 language tag used when sorting by name.
	Collation string `toml:"collation"`
	// ConflictCheck rejects saves when the sheet changed since it was loaded.
	// Off by default: the last writer wins.
	ConflictCheck bool `toml:"conflict_check"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Sheets  SheetsConfig  `toml:"sheets"`
	SQLite  SQLiteConfig  `toml:"sqlite"`
	Roster  RosterConfig  `toml:"roster"`
}

// Default returns the configuration used for anything the file leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddress:  ":8080",
			AllowedOrigins: []string{"*"},
		},
		Backend: BackendConfig{Kind: BackendSheets},
		Sheets:  SheetsConfig{SheetName: "Sheet1"},
		SQLite:  SQLiteConfig{Path: "roster.sqlite3"},
		Roster:  RosterConfig{Collation: "ja"},
	}
}

type datastore struct {
	Filename string
	Store    Config
}

// Write the current config out to a toml file.
func (c *datastore) Save() error {
	b, err := toml.Marshal(c.Store)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Filename, b, 0644)
}

// Load the current config from a toml file.
func (c *datastore) Load() error {
	b, err := os.ReadFile(c.Filename)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, &c.Store)
}

// Load reads filename, writing it with defaults first if it does not exist,
// then applies a .env file from the working directory (if any) and
// environment overrides.
func Load(filename string) (Config, error) {
	c := &datastore{Filename: filename, Store: Default()}
	if err := c.Load(); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", filename, err)
		}
		log.WithField("file", filename).Info("Config file not found, writing defaults")
		if err := c.Save(); err != nil {
			return Config{}, fmt.Errorf("write default config %s: %w", filename, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Could not load .env file")
	}
	applyEnv(&c.Store, os.Getenv)

	if err := c.Store.Validate(); err != nil {
		return Config{}, err
	}
	return c.Store, nil
}

// applyEnv overrides file settings with environment variables. The names
// follow the Google client libraries where one exists.
func applyEnv(c *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Sheets.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	set(&c.Sheets.SpreadsheetID, "SPREADSHEET_ID")
	set(&c.Sheets.SheetName, "SHEET_NAME")
	set(&c.Backend.Kind, "ROSTER_BACKEND")
	set(&c.SQLite.Path, "ROSTER_SQLITE_PATH")
	set(&c.Server.ListenAddress, "LISTEN_ADDRESS")
	set(&c.Roster.Collation, "ROSTER_COLLATION")
	if v := getenv("ROSTER_CONFLICT_CHECK"); v != "" {
		c.Roster.ConflictCheck = strings.EqualFold(v, "true") || v == "1"
	}
}

func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets backend needs a spreadsheet_id (or SPREADSHEET_ID)")
		}
		if c.Sheets.SheetName == "" {
			return fmt.Errorf("sheets backend needs a sheet_name")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend needs a path")
		}
	default:
		return fmt.Errorf("unknown backend %q: must be %q or %q", c.Backend.Kind, BackendSheets, BackendSQLite)
	}
	return nil
}
