package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockQueryRepository is a mock implementation of QueryRepository.
type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) NextID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockQueryRepository) Create(ctx context.Context, query *domain.Query) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

func (m *MockQueryRepository) List(ctx context.Context) ([]domain.Query, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Query), args.Error(1)
}

func (m *MockQueryRepository) Close(ctx context.Context, id string, closedAt time.Time) (domain.CloseOutcome, error) {
	args := m.Called(ctx, id, closedAt)
	return args.Get(0).(domain.CloseOutcome), args.Error(1)
}

// MockRevocationStore is a mock implementation of RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
