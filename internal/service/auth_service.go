package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/auth"
	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/events"
	"github.com/spec-kit/client-query-service/internal/repository"
)

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	revocations auth.RevocationStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Revocations auth.RevocationStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revocations: deps.Revocations,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		now:         time.Now,
	}
}

// Register creates an account. A taken username yields
// domain.ErrDuplicateUsername and leaves the store unchanged.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.ValidationError("username and password are required")
	}
	if !role.Valid() {
		return domain.ValidationError("unknown role %q", role)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	// the unique index catches a concurrent registration of the same name
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventUserRegistered, "", events.Actor{Username: username, Role: role},
		events.UserRegisteredPayload{Username: username, Role: role}))
	return nil
}

// Verify checks the credentials and returns the stored identity. Unknown
// usernames and wrong passwords both yield domain.ErrAuthenticationFailed.
func (s *AuthService) Verify(ctx context.Context, username, password string) (domain.Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Identity{}, domain.ErrAuthenticationFailed
		}
		return domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if auth.IsMismatch(err) {
			return domain.Identity{}, domain.ErrAuthenticationFailed
		}
		// malformed stored hash
		s.logger.Warn("stored password hash unusable", zap.String("username", username), zap.Error(err))
		return domain.Identity{}, domain.ErrAuthenticationFailed
	}
	return domain.Identity{Username: user.Username, Role: user.Role}, nil
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	identity, err := s.Verify(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	session, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return session, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revocations == nil || tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, tokenID, ttl); err != nil {
		return domain.NewStorageError("revoke token", err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
