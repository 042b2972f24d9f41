package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/domain"
	apperrors "github.com/spec-kit/client-query-service/pkg/util/errorutil"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("alice123", 4)
	require.NoError(t, err)

	other, err := HashPassword("alice123", 4)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes are salted per call")

	assert.NoError(t, ComparePassword(hash, "alice123"))
	assert.NoError(t, ComparePassword(other, "alice123"))

	err = ComparePassword(hash, "Alice123")
	assert.Error(t, err)
	assert.True(t, IsMismatch(err))
}

func TestPasswordHashingBeyondBcryptLimit(t *testing.T) {
	long := strings.Repeat("p", 80)
	hash, err := HashPassword(long, 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, long))

	// differs only after byte 72
	err = ComparePassword(hash, strings.Repeat("p", 79)+"q")
	assert.True(t, IsMismatch(err))

	multibyte := strings.Repeat("пароль", 20)
	hash, err = HashPassword(multibyte, 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, multibyte))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	session, err := tm.GenerateToken(domain.Identity{Username: "SUPP0001", Role: domain.RoleSupport})
	require.NoError(t, err)
	assert.NotEmpty(t, session.TokenID)
	assert.Equal(t, 30*time.Minute, session.ExpiresAt.Sub(session.IssuedAt))

	claims, err := tm.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "SUPP0001", claims.Username)
	assert.Equal(t, domain.RoleSupport, claims.Role)
	assert.Equal(t, session.TokenID, claims.ID)
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("secret", 1)
	session, err := issuer.GenerateToken(domain.Identity{Username: "Bob", Role: domain.RoleClient})
	require.NoError(t, err)

	_, err = NewTokenManager("other", 1).ParseToken(session.Token)
	assert.Error(t, err)

	late := NewTokenManager("secret", 1)
	late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = late.ParseToken(session.Token)
	assert.Error(t, err)
}

type fakeRevocations struct {
	revoked map[string]bool
}

func (f *fakeRevocations) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], nil
}

func TestMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", 10)
	revocations := &fakeRevocations{revoked: map[string]bool{}}
	mw := NewAuthMiddleware(tm, revocations, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).SendString(domainErr.Message)
	}})
	app.Get("/support", mw.Handle, RequireRole(domain.RoleSupport), func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.Identity.Username)
	})

	client, err := tm.GenerateToken(domain.Identity{Username: "Alice", Role: domain.RoleClient})
	require.NoError(t, err)
	support, err := tm.GenerateToken(domain.Identity{Username: "SUPP0001", Role: domain.RoleSupport})
	require.NoError(t, err)

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, call(support.Token))
	assert.Equal(t, http.StatusForbidden, call(client.Token))
	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("garbage"))

	require.NoError(t, revocations.Revoke(context.Background(), support.TokenID, time.Minute))
	assert.Equal(t, http.StatusUnauthorized, call(support.Token))
}
