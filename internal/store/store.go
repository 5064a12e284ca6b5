// Package store owns the shared SQLite database. Plugins receive it as
// a plugin.Store and bring their own migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/danmudi/netlab/pkg/plugin"
)

var _ plugin.Store = (*SQLiteStore)(nil)

// DefaultBusyTimeout is how long a writer waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

// Option configures New.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	busyTimeout time.Duration
}

// WithLogger logs applied migrations to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// SQLiteStore implements plugin.Store on modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger

	mu       sync.Mutex // serializes Migrate
	initOnce sync.Once
	initErr  error
}

// New opens or creates the database at path. ":memory:" gives a private
// in-memory database, which tests use.
func New(path string, opts ...Option) (*SQLiteStore, error) {
	o := options{logger: zap.NewNop(), busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One connection: writes are serialized and an in-memory database
	// stays the same database across calls.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", o.busyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %q: %s: %w", path, p, err)
		}
	}

	return &SQLiteStore{db: db, logger: o.logger}, nil
}

func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Tx runs fn in a transaction, committing when fn returns nil.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v (after: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// Migrate applies the migrations of owner that are not yet recorded.
// Each migration runs in its own transaction together with its record,
// so a failed migration leaves nothing behind.
func (s *SQLiteStore) Migrate(ctx context.Context, owner string, migrations []plugin.Migration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}
	applied, err := s.appliedVersions(ctx, owner)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := s.apply(ctx, owner, m); err != nil {
			return fmt.Errorf("migration %s/%d (%s): %w", owner, m.Version, m.Description, err)
		}
		s.logger.Info("applied migration",
			zap.String("owner", owner),
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
		)
	}
	return nil
}

// SchemaVersion returns the highest migration version recorded for
// owner, or 0 when none has run.
func (s *SQLiteStore) SchemaVersion(ctx context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(version) FROM _migrations WHERE plugin_name = ?", owner,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("schema version %s: %w", owner, err)
	}
	return int(v.Int64), nil
}

// Checkpoint folds the WAL back into the main database file so that a
// file-level copy is complete.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureMigrationsTable(ctx context.Context) error {
	s.initOnce.Do(func() {
		_, s.initErr = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS _migrations (
				plugin_name TEXT     NOT NULL,
				version     INTEGER  NOT NULL,
				description TEXT     NOT NULL,
				applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (plugin_name, version)
			)
		`)
		if s.initErr != nil {
			s.initErr = fmt.Errorf("create _migrations: %w", s.initErr)
		}
	})
	return s.initErr
}

func (s *SQLiteStore) appliedVersions(ctx context.Context, owner string) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM _migrations WHERE plugin_name = ?", owner)
	if err != nil {
		return nil, fmt.Errorf("list migrations %s: %w", owner, err)
	}
	defer rows.Close()

	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (s *SQLiteStore) apply(ctx context.Context, owner string, m plugin.Migration) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if err := m.Up(tx); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO _migrations (plugin_name, version, description) VALUES (?, ?, ?)",
			owner, m.Version, m.Description,
		)
		return err
	})
}
