package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/client-query-service/internal/domain"
)

func TestSeedUsersSkipsExisting(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByUsername", mock.Anything, "Alice").Return(&domain.User{Username: "Alice"}, nil)
	users.On("GetByUsername", mock.Anything, "Bob").Return(nil, domain.ErrNotFound)
	users.On("GetByUsername", mock.Anything, "SUPP0001").Return(nil, domain.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return (u.Username == "Bob" && u.Role == domain.RoleClient) ||
			(u.Username == "SUPP0001" && u.Role == domain.RoleSupport)
	})).Return(nil).Twice()

	svc := NewAuthService(testConfig(), AuthDependencies{UserRepo: users})
	result, err := SeedUsers(context.Background(), svc, DemoUsers)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "SUPP0001"}, result.Created)
	assert.Equal(t, []string{"Alice"}, result.Skipped)
	users.AssertExpectations(t)
}
