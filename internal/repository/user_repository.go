package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/client-query-service/internal/domain"
)

const pgUniqueViolation = "23505"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, hashed_password, role)
        VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, user.Username, user.PasswordHash, string(user.Role)); err != nil {
		return mapPgCreateUserError(user.Username, err)
	}
	return nil
}

func mapPgCreateUserError(username string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("create user %q: %w", username, domain.ErrDuplicateUsername)
	}
	return mapPgError("create user", err)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT username, hashed_password, role
        FROM users WHERE username=$1`

	var (
		user domain.User
		role string
	)
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&role,
	); err != nil {
		return nil, mapPgError("get user", err)
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// mapPgError translates pgx failures into the domain taxonomy.
func mapPgError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%s: %s: %w", op, pgErr.Message, domain.ErrConstraintViolation)
	}
	return domain.NewStorageError(op, err)
}
