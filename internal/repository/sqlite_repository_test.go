package repository

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/persistence"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	pool, err := persistence.NewSQLite(filepath.Join(t.TempDir(), "queries.db"), 2, zap.NewNop())
	require.NoError(t, err)
	store := NewSQLiteStore(pool)
	t.Cleanup(store.Close)
	return store
}

func TestSQLiteUserRepository(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	alice := &domain.User{Username: "Alice", PasswordHash: "hash-1", Role: domain.RoleClient}
	require.NoError(t, store.Users.Create(ctx, alice))

	err := store.Users.Create(ctx, &domain.User{Username: "Alice", PasswordHash: "hash-2", Role: domain.RoleSupport})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	got, err := store.Users.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", got.PasswordHash)
	assert.Equal(t, domain.RoleClient, got.Role)

	_, err = store.Users.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteUserRepositoryRejectsUnknownRole(t *testing.T) {
	store := openTestStore(t)

	err := store.Users.Create(context.Background(), &domain.User{Username: "eve", PasswordHash: "h", Role: "Admin"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestSQLiteNextIDSequence(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	want := []string{"Q0001", "Q0002", "Q0003"}
	for _, expected := range want {
		id, err := store.Queries.NextID(ctx)
		require.NoError(t, err)
		require.Equal(t, expected, id)
		require.NoError(t, store.Queries.Create(ctx, &domain.Query{ID: id, Heading: "Login Issue"}))
	}
}

func TestSQLiteNextIDFollowsHighestImportedID(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, id := range []string{"Q0001", "Q0040", "LEGACY-7"} {
		require.NoError(t, store.Queries.Create(ctx, &domain.Query{ID: id}))
	}

	id, err := store.Queries.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Q0041", id)
}

func TestSQLiteNextIDIgnoresOversizedIDs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, id := range []string{"Q0009", "Q1234567890123456789012"} {
		require.NoError(t, store.Queries.Create(ctx, &domain.Query{ID: id}))
	}

	id, err := store.Queries.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Q0010", id)
}

func TestSequentialIDPattern(t *testing.T) {
	pattern := regexp.MustCompile(sequentialIDPattern)

	assert.True(t, pattern.MatchString("Q0042"))
	assert.True(t, pattern.MatchString("Q999999999999999"))
	assert.False(t, pattern.MatchString("Q1234567890123456789"), "would overflow BIGINT")
	assert.False(t, pattern.MatchString("Q"))
	assert.False(t, pattern.MatchString("LEGACY-7"))
}

func TestSQLiteCreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Queries.Create(ctx, &domain.Query{ID: "Q0001"}))
	err := store.Queries.Create(ctx, &domain.Query{ID: "Q0001"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestSQLiteCreateAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	start := time.Now()

	require.NoError(t, store.Queries.Create(ctx, &domain.Query{
		ID:           "Q0001",
		ClientEmail:  "a@example.com",
		ClientMobile: "0712345678",
		Heading:      "Billing",
		Description:  "double charge",
	}))
	end := time.Now()

	queries, err := store.Queries.List(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 1)

	got := queries[0]
	assert.Equal(t, "Q0001", got.ID)
	assert.Equal(t, "a@example.com", got.ClientEmail)
	assert.Equal(t, domain.QueryStatusOpen, got.Status)
	assert.Nil(t, got.ClosedAt)
	require.NotNil(t, got.CreatedAt)
	assert.WithinRange(t, *got.CreatedAt, start.Add(-time.Second), end.Add(time.Second))
}

func TestSQLiteClose(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Queries.Create(ctx, &domain.Query{ID: "Q0001"}))

	firstClose := time.Date(2025, 3, 4, 10, 30, 0, 0, time.Local)
	outcome, err := store.Queries.Close(ctx, "Q0001", firstClose)
	require.NoError(t, err)
	assert.Equal(t, domain.CloseOutcomeClosed, outcome)

	outcome, err = store.Queries.Close(ctx, "Q0001", firstClose.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.CloseOutcomeAlreadyClosed, outcome)

	outcome, err = store.Queries.Close(ctx, "Q9999", firstClose)
	require.NoError(t, err)
	assert.Equal(t, domain.CloseOutcomeNotFound, outcome)

	queries, err := store.Queries.List(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, domain.QueryStatusClosed, queries[0].Status)
	require.NotNil(t, queries[0].ClosedAt)
	assert.True(t, queries[0].ClosedAt.Equal(firstClose), "re-close must keep the original closed_at")
}
