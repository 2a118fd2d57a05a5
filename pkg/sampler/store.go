// SQLite draw recorder: an Observer that persists every draw of a run
// Draws are buffered and written in batches inside a transaction
package sampler

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// storeBatchSize is how many draws are buffered before a write.
const storeBatchSize = 1000

//go:embed migrations/*.sql
var migrations embed.FS

// Store records draws in a SQLite database. Observe cannot return errors, so
// the first write failure is kept and reported by Flush and Close.
type Store struct {
	sqlDB   *sql.DB
	runID   string
	pending []Draw
	err     error
}

// OpenStore opens or creates the database at path and registers a run. An
// empty runID is replaced by a random UUID.
func OpenStore(ctx context.Context, path, runID string, seed uint64) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrateStore(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if _, err := sqlDB.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, seed) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().UnixMilli(), strconv.FormatUint(seed, 10),
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}

	return &Store{
		sqlDB:   sqlDB,
		runID:   runID,
		pending: make([]Draw, 0, storeBatchSize),
	}, nil
}

// RunID identifies this run's rows.
func (s *Store) RunID() string { return s.runID }

// Observe buffers a draw, writing the buffer once it is full.
func (s *Store) Observe(d Draw) {
	if s.err != nil {
		return
	}
	s.pending = append(s.pending, d)
	if len(s.pending) >= storeBatchSize {
		s.err = s.Flush(context.Background())
	}
}

// Flush writes buffered draws.
func (s *Store) Flush(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draw batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO draws (run_id, seq, sampler, kind, value, unit, label, instant, tail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare draw insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range s.pending {
		var value, instant, label, unit any
		switch d.Kind {
		case KindWeights:
			label = d.Label
		case KindWindow:
			instant = d.Instant.String()
			value = d.Value
		default:
			value = d.Value
		}
		if d.Unit != "" {
			unit = d.Unit
		}
		if _, err := stmt.ExecContext(ctx, s.runID, d.Seq, d.Sampler, d.Kind.String(), value, unit, label, instant, d.Tail); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert draw %d: %w", d.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draw batch: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Count returns how many draws are stored for the run.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM draws WHERE run_id = ?`, s.runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count draws: %w", err)
	}
	return n, nil
}

// LabelCounts returns stored label frequencies for a weights sampler.
func (s *Store) LabelCounts(ctx context.Context, sampler string) (map[string]int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT label, COUNT(*) FROM draws WHERE run_id = ? AND sampler = ? AND label IS NOT NULL GROUP BY label`,
		s.runID, sampler)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int64)
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out[label] = n
	}
	return out, rows.Err()
}

// Close flushes pending draws and closes the database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	flushErr := s.Flush(context.Background())
	closeErr := s.sqlDB.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// migrateStore brings the schema up to the latest embedded migration.
func migrateStore(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(sqlDB, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
