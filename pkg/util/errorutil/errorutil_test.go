package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/client-query-service/internal/domain"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"duplicate username", fmt.Errorf("register: %w", domain.ErrDuplicateUsername), "DUPLICATE_USERNAME", http.StatusConflict},
		{"bad credentials", domain.ErrAuthenticationFailed, "AUTHENTICATION_FAILED", http.StatusUnauthorized},
		{"constraint", fmt.Errorf("insert Q0001: %w", domain.ErrConstraintViolation), "CONSTRAINT_VIOLATION", http.StatusConflict},
		{"not found", domain.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"validation", domain.ValidationError("role must be Client or Support"), "VALIDATION_FAILED", http.StatusBadRequest},
		{"storage", domain.NewStorageError("list queries", errors.New("connection refused")), "STORAGE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"fiber", fiber.NewError(http.StatusForbidden, "Support role required"), "FORBIDDEN", http.StatusForbidden},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewValidationError("heading too long", map[string]any{"max": 255})
	got := ToDomainError(fmt.Errorf("wrapped: %w", original))
	assert.Same(t, original, error(got))
	assert.Nil(t, ToDomainError(nil))
}
