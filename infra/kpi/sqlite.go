// Package kpi persists supplier dispatch KPIs in SQLite.
package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/vpp/core/metrics/kpi"
)

const schema = `CREATE TABLE IF NOT EXISTS supplier_kpi (
	supplier_id TEXT NOT NULL,
	day INTEGER NOT NULL,
	dispatched_kwh REAL NOT NULL,
	peak_kw REAL NOT NULL,
	events INTEGER NOT NULL,
	PRIMARY KEY(supplier_id, day)
);`

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ core.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add merges the record into the supplier's total for that day.
func (s *SQLiteStore) Add(r core.Record) error {
	_, err := s.db.Exec(`INSERT INTO supplier_kpi (supplier_id, day, dispatched_kwh, peak_kw, events)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(supplier_id, day) DO UPDATE SET
			dispatched_kwh = dispatched_kwh + excluded.dispatched_kwh,
			peak_kw = MAX(peak_kw, excluded.peak_kw),
			events = events + 1`,
		r.SupplierID, core.Day(r.Date).Unix(), r.DispatchedKWh, r.PeakKW)
	return err
}

// Query returns records in the range [start,end], oldest first.
func (s *SQLiteStore) Query(supplierID string, start, end time.Time) ([]core.Record, error) {
	rows, err := s.db.Query(`SELECT supplier_id, day, dispatched_kwh, peak_kw, events
		FROM supplier_kpi WHERE supplier_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		supplierID, core.Day(start).Unix(), core.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		var day int64
		if err := rows.Scan(&r.SupplierID, &day, &r.DispatchedKWh, &r.PeakKW, &r.Events); err != nil {
			return nil, err
		}
		r.Date = time.Unix(day, 0).UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
