// Package export writes the tables of a pipeline run to a SQLite database or
// an Excel workbook, for analysts who prefer those to delimited files.
package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/logger"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Run is what a pipeline run produced.
type Run struct {
	Summary      *apotek.Summary
	Transactions []apotek.Transaction // after outlier handling
	Stock        []apotek.Stock
}

// schema creates the tables, every row of which is keyed by the run id, so
// that one database accumulates successive runs.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		ledger TEXT,
		stock TEXT,
		method TEXT,
		column_name TEXT,
		threshold REAL,
		transactions INTEGER,
		stock_records INTEGER,
		outliers INTEGER,
		errors INTEGER,
		cleaned INTEGER,
		outliers_after INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		row_index INTEGER NOT NULL,
		date TEXT,
		transaction_id TEXT,
		qty_in NUMERIC,
		value_in NUMERIC,
		qty_out NUMERIC,
		value_out NUMERIC,
		code TEXT,
		name TEXT,
		unit TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stock (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		code TEXT,
		name TEXT,
		location TEXT,
		quantity NUMERIC,
		unit TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS classifications (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		row_index INTEGER NOT NULL,
		transaction_id TEXT,
		code TEXT,
		unit TEXT,
		typical_unit TEXT,
		price_per_unit NUMERIC,
		median_price_per_unit NUMERIC,
		price_ratio NUMERIC,
		is_error INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		code TEXT,
		qty_in REAL,
		qty_out REAL,
		value_in REAL,
		value_out REAL,
		qty_stock REAL,
		stock_high INTEGER,
		pred_label INTEGER,
		prob_low REAL,
		prob_high REAL
	)`,
	`CREATE TABLE IF NOT EXISTS importances (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		feature TEXT,
		importance REAL
	)`,
}

// nullString returns a sql.NullString for optional string fields.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// SQLite appends run to the SQLite database at path, creating it if needed.
func SQLite(ctx context.Context, path string, run Run) (err error) {
	if run.Summary == nil || run.Summary.RunID == "" {
		return errors.New("cannot export a run without id")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database %q: %w", path, err)
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := writeRun(ctx, tx, run); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.Summary.RunID, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("run_id", run.Summary.RunID).Str("path", path).Int("transactions", len(run.Transactions)).Msg("exported run to sqlite")
	return nil
}

func writeRun(ctx context.Context, tx *sql.Tx, run Run) error {
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	s := run.Summary
	id := s.RunID
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.Ledger, s.Stock, s.Method, s.Column, s.Threshold,
		s.Transactions, s.StockRecords, s.Outliers, s.Errors, s.Cleaned, s.OutliersAfter,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", id, err)
	}

	insert := func(query string, rows int, args func(i int) []any) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare %q: %w", query, err)
		}
		defer stmt.Close()
		for i := 0; i < rows; i++ {
			if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
				return fmt.Errorf("failed to insert row %d with %q: %w", i, query, err)
			}
		}
		return nil
	}

	return errors.Join(
		insert(`INSERT INTO transactions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(run.Transactions), func(i int) []any {
			t := run.Transactions[i]
			return []any{id, i, nullString(t.Date.String()), t.ID,
				t.QtyIn.Decimal(), t.ValueIn.Decimal(), t.QtyOut.Decimal(), t.ValueOut.Decimal(),
				nullString(t.Code), nullString(t.Name), nullString(t.Unit)}
		}),
		insert(`INSERT INTO stock VALUES (?, ?, ?, ?, ?, ?)`, len(run.Stock), func(i int) []any {
			st := run.Stock[i]
			return []any{id, st.Code, st.Name, st.Location, st.Quantity.Decimal(), st.Unit}
		}),
		insert(`INSERT INTO classifications VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(s.Classifications), func(i int) []any {
			c := s.Classifications[i]
			return []any{id, c.Row, c.Transaction.ID, nullString(c.Transaction.Code), nullString(c.Transaction.Unit),
				nullString(c.TypicalUnit), c.PricePerUnit, c.MedianPricePerUnit, c.PriceRatio, c.IsError}
		}),
		insert(`INSERT INTO predictions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(s.Predictions), func(i int) []any {
			p := s.Predictions[i]
			return []any{id, p.Code, p.QtyIn, p.QtyOut, p.ValueIn, p.ValueOut, p.QtyStock, p.StockHigh, p.PredLabel, p.ProbLow, p.ProbHigh}
		}),
		insert(`INSERT INTO importances VALUES (?, ?, ?)`, len(s.Importances), func(i int) []any {
			imp := s.Importances[i]
			return []any{id, imp.Feature, imp.Importance}
		}),
	)
}
