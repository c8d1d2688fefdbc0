// Package sqlite implements the record store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/couchcryptid/tide-calendar-sync/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL,
	date        TEXT NOT NULL,
	title       TEXT NOT NULL,
	body        TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_location_date ON records(location_id, date);
`

// Store is a domain.ManagedStore backed by SQLite.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Debug("record store opened", "path", path)
	return &Store{conn: conn, logger: logger}, nil
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	_, _ = s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.conn.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, location_id, date, title, body FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, id string, f domain.RecordFields) error {
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO records (id, location_id, date, title, body, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, f.LocationID, f.Date.String(), f.Title, f.Body, timestamp())
	if err != nil {
		return fmt.Errorf("create record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("create record %s: %w", id, domain.ErrRecordExists)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, f domain.RecordFields, _ *domain.Record) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE records SET location_id = ?, date = ?, title = ?, body = ?, updated_at = ? WHERE id = ?`,
		f.LocationID, f.Date.String(), f.Title, f.Body, timestamp(), id)
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update record %s: %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

// List returns the location's records dated from..to inclusive, ordered by date.
func (s *Store) List(ctx context.Context, locationID string, from, to civil.Date) ([]domain.Record, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, location_id, date, title, body FROM records
		 WHERE location_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, id`,
		locationID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record %s: %w", id, err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.Record, error) {
	var (
		rec  domain.Record
		date string
	)
	if err := row.Scan(&rec.ID, &rec.LocationID, &date, &rec.Title, &rec.Body); err != nil {
		return nil, err
	}
	d, err := civil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s date %q", domain.ErrInvalidRecord, rec.ID, date)
	}
	rec.Date = d
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func timestamp() string {
	return domain.Now().UTC().Format(time.RFC3339)
}
