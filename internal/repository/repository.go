package repository

import (
	"context"
	"time"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// UserRepository is the credential store. Usernames are unique; rows are
// never updated or deleted.
type UserRepository interface {
	// Create stores a new user. Returns domain.ErrDuplicateUsername when the
	// username is taken.
	Create(ctx context.Context, user *domain.User) error
	// GetByUsername returns domain.ErrNotFound for unknown usernames.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// QueryRepository persists client queries.
type QueryRepository interface {
	// NextID returns the identifier following the highest stored one.
	NextID(ctx context.Context) (string, error)
	// Create inserts a ticket. Empty status defaults to Open and a nil
	// CreatedAt to the current time. Returns domain.ErrConstraintViolation
	// when the id is taken or the row is rejected.
	Create(ctx context.Context, query *domain.Query) error
	// List returns every ticket ordered by id.
	List(ctx context.Context) ([]domain.Query, error)
	// Close marks an open ticket closed at closedAt. Already-closed and
	// missing tickets are left untouched and reported through the outcome.
	Close(ctx context.Context, id string, closedAt time.Time) (domain.CloseOutcome, error)
}

func applyInsertDefaults(query *domain.Query) {
	if query.Status == "" {
		query.Status = domain.QueryStatusOpen
	}
	if query.CreatedAt == nil {
		now := time.Now()
		query.CreatedAt = &now
	}
}
