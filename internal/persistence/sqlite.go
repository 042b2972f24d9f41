package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLite is a fixed-size pool of embedded SQLite connections. Every
// connection gets the standard pragmas and the embedded schema on first use.
//
// Individual connections are not safe for concurrent use; Take one per
// goroutine and Put it back.
type SQLite struct {
	inner  *sqlitex.Pool
	logger *zap.Logger
	path   string
}

// NewSQLite opens a pool on path. The file is created when missing.
func NewSQLite(path string, poolSize int, logger *zap.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if poolSize <= 0 {
		poolSize = 4
	}

	schema, err := SQLiteSchema()
	if err != nil {
		return nil, err
	}

	inner, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, schema)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}

	logger.Info("sqlite pool opened", zap.String("path", path), zap.Int("pool_size", poolSize))
	return &SQLite{inner: inner, logger: logger, path: path}, nil
}

// Take borrows a connection. Blocks until one is available or ctx ends.
func (s *SQLite) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (s *SQLite) Put(conn *sqlite.Conn) {
	s.inner.Put(conn)
}

// Ping borrows a connection and runs a trivial statement.
func (s *SQLite) Ping(ctx context.Context) error {
	conn, err := s.Take(ctx)
	if err != nil {
		return err
	}
	defer s.Put(conn)
	return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
}

// Close closes all connections, waiting for borrowed ones to come back.
func (s *SQLite) Close() {
	if s == nil || s.inner == nil {
		return
	}
	if err := s.inner.Close(); err != nil {
		s.logger.Error("sqlite pool close error", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.logger.Info("sqlite pool closed", zap.String("path", s.path))
}

func prepareConnection(conn *sqlite.Conn, schema string) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}
