// Package backend opens the roster table selected by the configuration.
package backend

import (
	"context"
	"fmt"

	"attendance/pkg/config"
	"attendance/pkg/roster"
	"attendance/pkg/sheets"
	"attendance/pkg/sqlitetable"

	log "github.com/sirupsen/logrus"
)

// Open returns the configured table and a function that releases it.
func Open(ctx context.Context, cfg config.Config) (roster.Table, func() error, error) {
	switch cfg.Backend.Kind {
	case config.BackendSheets:
		client, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)
		if err != nil {
			return nil, nil, err
		}
		if err := client.EnsureSheetExists(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure sheet %q exists: %w", cfg.Sheets.SheetName, err)
		}
		log.WithFields(log.Fields{
			"spreadsheet": cfg.Sheets.SpreadsheetID,
			"sheet":       cfg.Sheets.SheetName,
		}).Info("Using Google Sheets backend")
		return client, func() error { return nil }, nil
	case config.BackendSQLite:
		tbl, err := sqlitetable.Open(cfg.SQLite.Path, cfg.Sheets.SheetName)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.SQLite.Path).Info("Using SQLite backend")
		return tbl, tbl.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
}

// NewService wires a roster service over the configured table.
func NewService(table roster.Table, cfg config.Config) *roster.Service {
	return roster.NewService(roster.NewStore(table), roster.ServiceOptions{
		ConflictCheck: cfg.Roster.ConflictCheck,
		Collation:     cfg.Roster.Collation,
	})
}
