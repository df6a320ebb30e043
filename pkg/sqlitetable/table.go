// Package sqlitetable stores a sheet-shaped grid of cells in SQLite. It
// behaves like the Google Sheets tab (no schema on the cells, whole-table
// replace) and is used for offline development and tests.
package sqlitetable

import (
	"context"
	"database/sql"
	"fmt"

	"attendance/pkg/sheets"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cells (
	sheet TEXT    NOT NULL,
	row   INTEGER NOT NULL,
	col   INTEGER NOT NULL,
	value TEXT    NOT NULL,
	PRIMARY KEY (sheet, row, col)
)`

type Table struct {
	db    *sql.DB
	sheet string
}

// Open creates or opens the database at path and returns the named sheet.
// Use ":memory:" for a throwaway table.
func Open(path, sheet string) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer at a time, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Table{db: db, sheet: sheet}, nil
}

func (t *Table) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Grid returns the raw cells, header row first.
func (t *Table) Grid(ctx context.Context) ([][]interface{}, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT row, col, value FROM cells WHERE sheet = ? ORDER BY row, col`, t.sheet)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	var grid [][]interface{}
	for rows.Next() {
		var r, c int
		var v string
		if err := rows.Scan(&r, &c, &v); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		for len(grid) <= r {
			grid = append(grid, []interface{}{})
		}
		for len(grid[r]) < c {
			grid[r] = append(grid[r], "")
		}
		grid[r] = append(grid[r], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	return grid, nil
}

func (t *Table) ReadAllRows(ctx context.Context) ([]map[string]string, error) {
	grid, err := t.Grid(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.RecordsFromGrid(grid), nil
}

// ReplaceAll deletes every cell of the sheet and writes the new grid in
// one transaction, so unlike the Sheets API a failed write keeps the old
// contents.
func (t *Table) ReplaceAll(ctx context.Context, header []string, rows [][]string) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.WithError(rbErr).Warn("Rollback failed")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cells WHERE sheet = ?`, t.sheet); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	all := append([][]string{header}, rows...)
	for r, row := range all {
		for c, v := range row {
			if _, err = stmt.ExecContext(ctx, t.sheet, r, c, v); err != nil {
				return fmt.Errorf("write cell %d,%d: %w", r, c, err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WriteGrid replaces the sheet with an arbitrary grid, such as a sheet in
// one of the older layouts.
func (t *Table) WriteGrid(ctx context.Context, grid [][]string) error {
	if len(grid) == 0 {
		return t.ReplaceAll(ctx, nil, nil)
	}
	return t.ReplaceAll(ctx, grid[0], grid[1:])
}
