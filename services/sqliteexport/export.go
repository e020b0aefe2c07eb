// Package sqliteexport loads the consolidated CSV tables into a sqlite
// database so reporting consumers can query SQL instead of parsing files.
// The CSV files stay the dataset of record; the database is a derived
// artifact, rebuilt on every export.
package sqliteexport

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"politeia-backend/lib/tabular"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Report counts the rows loaded per table.
type Report struct {
	Loaded map[tabular.Table]int
}

// Export creates the schema in the target database file and bulk-loads
// every persisted table inside a single transaction. Existing rows in the
// target tables are cleared first, so re-exporting is idempotent even
// though re-ingesting is not.
func Export(ctx context.Context, store tabular.Store, dbPath string) (Report, error) {
	report := Report{Loaded: make(map[tabular.Table]int)}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return report, err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		return report, fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	for _, t := range tabular.All() {
		n, err := loadTable(ctx, tx, store, t)
		if err != nil {
			return report, fmt.Errorf("load %s: %w", t.Name(), err)
		}
		report.Loaded[t] = n
	}

	err = tx.Commit()
	if err != nil {
		return report, err
	}
	slog.InfoContext(ctx, "exported dataset", "db", dbPath)
	return report, nil
}

func loadTable(ctx context.Context, tx *sql.Tx, store tabular.Store, t tabular.Table) (int, error) {
	_, err := tx.ExecContext(ctx, "DELETE FROM "+t.Name())
	if err != nil {
		return 0, err
	}

	cols := t.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.Name(), strings.Join(cols, ", "), placeholders,
	)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	err = store.Scan(t, func(row tabular.Row) error {
		args := make([]any, len(cols))
		for i, col := range cols {
			v := row.Get(col)
			// empty nullable foreign keys become NULL, not ""
			if v == "" && (col == "parent_id" || col == "external_code") {
				args[i] = nil
				continue
			}
			args[i] = v
		}
		_, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
