package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// SeedUser is one account created by SeedUsers.
type SeedUser struct {
	Username string
	Password string
	Role     domain.Role
}

// DemoUsers are the accounts a fresh install is seeded with.
var DemoUsers = []SeedUser{
	{Username: "Alice", Password: "alice123", Role: domain.RoleClient},
	{Username: "Bob", Password: "bob123", Role: domain.RoleClient},
	{Username: "SUPP0001", Password: "support123", Role: domain.RoleSupport},
}

// SeedResult lists which seed accounts were created and which existed.
type SeedResult struct {
	Created []string
	Skipped []string
}

// SeedUsers registers each user, skipping usernames that already exist.
func SeedUsers(ctx context.Context, authService *AuthService, users []SeedUser) (SeedResult, error) {
	var result SeedResult
	for _, u := range users {
		err := authService.Register(ctx, u.Username, u.Password, u.Role)
		switch {
		case err == nil:
			result.Created = append(result.Created, u.Username)
		case errors.Is(err, domain.ErrDuplicateUsername):
			result.Skipped = append(result.Skipped, u.Username)
		default:
			return result, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	return result, nil
}
