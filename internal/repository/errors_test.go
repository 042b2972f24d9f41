package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/spec-kit/client-query-service/internal/domain"
)

func TestMapPgError(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	tests := []struct {
		name    string
		err     error
		want    error
		storage bool
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: domain.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}, want: domain.ErrConstraintViolation},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", Message: "violates check"}, want: domain.ErrConstraintViolation},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}, storage: true},
		{name: "connection refused", err: refused, storage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError("op", tt.err)
			if tt.storage {
				assert.True(t, domain.IsStorageError(got))
				assert.ErrorIs(t, got, tt.err)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.False(t, domain.IsStorageError(got))
		})
	}
}

func TestMapPgCreateUserError(t *testing.T) {
	err := mapPgCreateUserError("Alice", &pgconn.PgError{Code: pgUniqueViolation})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	err = mapPgCreateUserError("Alice", &pgconn.PgError{Code: "23514"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.NotErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestMapGormError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		storage bool
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, want: domain.ErrNotFound},
		{name: "duplicated key", err: gorm.ErrDuplicatedKey, want: domain.ErrConstraintViolation},
		{name: "check constraint", err: gorm.ErrCheckConstraintViolated, want: domain.ErrConstraintViolation},
		{name: "driver failure", err: errors.New("invalid connection"), storage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapGormError("op", tt.err)
			if tt.storage {
				assert.True(t, domain.IsStorageError(got))
				assert.ErrorIs(t, got, tt.err)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.False(t, domain.IsStorageError(got))
		})
	}
}

func TestMapGormCreateUserError(t *testing.T) {
	err := mapGormCreateUserError("Alice", gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	err = mapGormCreateUserError("Alice", gorm.ErrCheckConstraintViolated)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}
