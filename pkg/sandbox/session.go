// Package sandbox owns the embedded SQLite database a learner works on.
//
// A Session is the explicit {engine handle, ready} pair of the application. It is
// opened with the schema and the seed rows, executes learner scripts statement by
// statement and can be reset to its initial state at any time. Statements the
// engine rejects are reported in the Outcome together with a dialect hint; only
// problems with the session itself are returned as errors.
package sandbox

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/config"
	"github.com/nsxbet/sql-sandbox/pkg/hint"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// ErrNotReady is returned by every operation on a session that is closed or
// failed to initialize.
var ErrNotReady = errors.New("sandbox session is not ready")

// Option configures Open.
type Option func(*options)

type options struct {
	dsn   string
	seed  *Seed
	hints *hint.Set
}

// WithDSN sets the go-sqlite3 data source name.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithSeed replaces the embedded seed.
func WithSeed(seed *Seed) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithHints replaces the hint catalog used for rejected statements.
func WithHints(set *hint.Set) Option {
	return func(o *options) {
		o.hints = set
	}
}

// Session is a sandbox database. It is safe for concurrent use; operations are
// serialized.
type Session struct {
	mu    sync.Mutex
	db    *sql.DB
	ready bool

	dsn   string
	seed  *Seed
	hints *hint.Set
}

// Open creates the database, applies the schema and the seed, and returns a
// ready session.
func Open(ctx context.Context, opts ...Option) (*Session, error) {
	o := &options{dsn: config.DefaultDSN}
	for _, opt := range opts {
		opt(o)
	}
	if o.seed == nil {
		o.seed = DefaultSeed()
	}
	if o.hints == nil {
		o.hints = hint.Catalog()
	}

	s := &Session{
		dsn:   o.dsn,
		seed:  o.seed,
		hints: o.hints,
	}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// init opens a fresh engine. Callers hold mu, except Open.
func (s *Session) init(ctx context.Context) error {
	db, err := sql.Open(DriverName, s.dsn)
	if err != nil {
		return errors.Wrap(err, "failed to open sqlite")
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "failed to connect to sqlite")
	}
	if err := s.seed.apply(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.ready = true
	slog.Debug("Sandbox session ready", "dsn", s.dsn)
	return nil
}

// Ready reports whether the session accepts statements.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// DB returns the engine handle, e.g. for a review dry run. It is nil once the
// session is closed.
func (s *Session) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	return s.db
}

// Hints returns the hint catalog of the session.
func (s *Session) Hints() *hint.Set {
	return s.hints
}

// Reset discards every change and restores the seed.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("Failed to close sandbox database", "error", err)
		}
	}
	s.db = nil
	s.ready = false

	if err := s.init(ctx); err != nil {
		return errors.Wrap(err, "failed to reset sandbox")
	}
	slog.Info("Sandbox reset")
	return nil
}

// Close releases the engine. Further operations return ErrNotReady.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}
	s.ready = false
	err := s.db.Close()
	s.db = nil
	return errors.Wrap(err, "failed to close sandbox")
}

// conn returns the engine handle. Callers hold mu.
func (s *Session) conn() (*sql.DB, error) {
	if !s.ready || s.db == nil {
		return nil, ErrNotReady
	}
	return s.db, nil
}
