package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/persistence"
)

// Store bundles the repositories for one storage backend.
type Store struct {
	Driver  string
	Users   UserRepository
	Queries QueryRepository

	ping  func(context.Context) error
	close func()
}

// Open connects to the configured backend, applies its schema when
// RunMigrations is set, and returns the repositories bound to it.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		pg, err := persistence.NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool := pg.PoolHandle()
		return &Store{
			Driver:  config.DriverPostgres,
			Users:   NewUserRepository(pool),
			Queries: NewQueryRepository(pool),
			ping:    pg.Ping,
			close:   pg.Close,
		}, nil

	case config.DriverMySQL:
		my, err := persistence.NewMySQL(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := MigrateGorm(my.DB); err != nil {
				my.Close()
				return nil, err
			}
			logger.Info("mysql schema migrated")
		}
		return &Store{
			Driver:  config.DriverMySQL,
			Users:   NewGormUserRepository(my.DB),
			Queries: NewGormQueryRepository(my.DB),
			ping:    my.Ping,
			close:   my.Close,
		}, nil

	case config.DriverSQLite:
		pool, err := persistence.NewSQLite(cfg.ConnectionString(), int(cfg.MaxConns), logger)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(pool), nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// NewSQLiteStore binds repositories to an already opened SQLite pool.
func NewSQLiteStore(pool *persistence.SQLite) *Store {
	return &Store{
		Driver:  config.DriverSQLite,
		Users:   NewSQLiteUserRepository(pool),
		Queries: NewSQLiteQueryRepository(pool),
		ping:    pool.Ping,
		close:   pool.Close,
	}
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return fmt.Errorf("store not configured")
	}
	return s.ping(ctx)
}

// Close releases backend resources.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}
