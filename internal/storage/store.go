// Package storage persists monthly production samples in the SQLite
// database the loader and the web server share. The loader replaces the
// production table wholesale; the web server only reads.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"energymix/pkg/contracts/domain"
)

// ErrNoLoads is returned by LatestLoad when the loader has never run
// against this database.
var ErrNoLoads = errors.New("no loads recorded")

// LoadRecord is one row of the load_log audit table.
type LoadRecord struct {
	LoadID            int64     `json:"load_id"`
	LoadedAt          time.Time `json:"loaded_at"`
	RecordCount       int       `json:"record_count"`
	CoercionFallbacks int       `json:"coercion_fallbacks"`
}

// Store wraps the shared SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the database at path, creating it and its schema when absent.
// WAL journaling keeps web-process readers unblocked while the loader
// writes; the busy timeout is applied per connection through the DSN so it
// covers the whole database/sql pool.
func Open(path string, busyTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if _, err := db.Exec(bootSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		logger: logger.With(slog.String("component", "storage")),
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the production table for the given samples and appends one
// load_log row, all inside a single transaction. A failure anywhere leaves
// the previous table intact; readers observe the old data until commit.
// Duplicate months violate the primary key and fail the whole load.
func (s *Store) Replace(ctx context.Context, samples []domain.EnergySample, coercionFallbacks int) (*LoadRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+ProductionTable); err != nil {
		return nil, fmt.Errorf("drop production table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createProductionTable); err != nil {
		return nil, fmt.Errorf("create production table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertProduction)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.ExecContext(ctx,
			sample.Month(),
			sample.Coal, sample.GasDry, sample.GasLiquid, sample.CrudeOil,
			sample.Nuclear, sample.Hydro, sample.Geothermal, sample.Solar,
			sample.Wind, sample.Biomass,
		); err != nil {
			return nil, fmt.Errorf("insert month %s: %w", sample.Month(), err)
		}
	}

	loadedAt := time.Now().UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx, insertLoadLog,
		loadedAt.Format(time.RFC3339), len(samples), coercionFallbacks)
	if err != nil {
		return nil, fmt.Errorf("append load log: %w", err)
	}
	loadID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read load id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}

	record := &LoadRecord{
		LoadID:            loadID,
		LoadedAt:          loadedAt,
		RecordCount:       len(samples),
		CoercionFallbacks: coercionFallbacks,
	}

	s.logger.InfoContext(ctx, "production table replaced",
		slog.String("table", ProductionTable),
		slog.Int("records", record.RecordCount),
		slog.Int("coercion_fallbacks", record.CoercionFallbacks),
		slog.Int64("load_id", record.LoadID))

	return record, nil
}

// ReadAll returns every persisted sample ordered by month.
func (s *Store) ReadAll(ctx context.Context) ([]domain.EnergySample, error) {
	rows, err := s.db.QueryContext(ctx, selectAllProduction)
	if err != nil {
		return nil, fmt.Errorf("query production table: %w", err)
	}
	defer rows.Close()

	var samples []domain.EnergySample
	for rows.Next() {
		var month string
		var sample domain.EnergySample
		if err := rows.Scan(&month,
			&sample.Coal, &sample.GasDry, &sample.GasLiquid, &sample.CrudeOil,
			&sample.Nuclear, &sample.Hydro, &sample.Geothermal, &sample.Solar,
			&sample.Wind, &sample.Biomass,
		); err != nil {
			return nil, fmt.Errorf("scan production row: %w", err)
		}

		date, err := time.Parse(domain.MonthLayout, month)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", month, err)
		}
		sample.Date = date
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate production rows: %w", err)
	}

	return samples, nil
}

// RowCount returns the number of rows in the production table.
func (s *Store) RowCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, countProduction).Scan(&count); err != nil {
		return 0, fmt.Errorf("count production rows: %w", err)
	}
	return count, nil
}

// LatestLoad returns the most recent load_log row.
func (s *Store) LatestLoad(ctx context.Context) (*LoadRecord, error) {
	record, err := scanLoadRecord(s.db.QueryRowContext(ctx, selectLatestLoad))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoLoads
	}
	if err != nil {
		return nil, fmt.Errorf("query latest load: %w", err)
	}
	return record, nil
}

// LoadHistory returns up to limit load_log rows, most recent first.
func (s *Store) LoadHistory(ctx context.Context, limit int) ([]*LoadRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, selectLoadHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("query load history: %w", err)
	}
	defer rows.Close()

	var records []*LoadRecord
	for rows.Next() {
		record, err := scanLoadRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan load record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate load history: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoadRecord(row rowScanner) (*LoadRecord, error) {
	var record LoadRecord
	var loadedAt string
	if err := row.Scan(&record.LoadID, &loadedAt, &record.RecordCount, &record.CoercionFallbacks); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, loadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse loaded_at %q: %w", loadedAt, err)
	}
	record.LoadedAt = ts

	return &record, nil
}
