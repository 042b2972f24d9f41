package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spec-kit/client-query-service/internal/config"
)

// MySQL wraps a GORM handle for the MySQL backend.
type MySQL struct {
	DB *gorm.DB
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*MySQL, error) {
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		sqlDB.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.ConnMaxIdleSec > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleSec) * time.Second)
	}
	if cfg.ConnMaxLifeSec > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeSec) * time.Second)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	logger.Info("connected to mysql", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return &MySQL{DB: db}, nil
}

// Ping verifies database connectivity.
func (m *MySQL) Ping(ctx context.Context) error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (m *MySQL) Close() {
	if m == nil || m.DB == nil {
		return
	}
	if sqlDB, err := m.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
