package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/analytics"
	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/events"
	"github.com/spec-kit/client-query-service/internal/repository"
)

const defaultIDAttempts = 5

// QueryService coordinates ticket submission, listing and closing.
type QueryService struct {
	queries     repository.QueryRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	maxAttempts int
	now         func() time.Time
}

// QueryDependencies bundles collaborators of the query service.
type QueryDependencies struct {
	QueryRepo  repository.QueryRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// IDMaxAttempts bounds retries when a generated id collides.
	IDMaxAttempts int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// SubmitInput is the client-provided part of a ticket. Fields are stored
// as given; empty values are accepted.
type SubmitInput struct {
	Email       string
	Mobile      string
	Heading     string
	Description string
}

// QueryFilter narrows listings. Empty or "All" disables a field.
type QueryFilter struct {
	Status  string
	Heading string
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := deps.IDMaxAttempts
	if attempts <= 0 {
		attempts = defaultIDAttempts
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &QueryService{
		queries:     deps.QueryRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		maxAttempts: attempts,
		now:         now,
	}
}

// Submit stores a new open ticket and returns its id. A colliding id from a
// concurrent submission triggers a fresh id until attempts run out.
func (s *QueryService) Submit(ctx context.Context, actor domain.Identity, input SubmitInput) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.queries.NextID(ctx)
		if err != nil {
			return "", fmt.Errorf("next query id: %w", err)
		}

		createdAt := s.now()
		query := &domain.Query{
			ID:           id,
			ClientEmail:  input.Email,
			ClientMobile: input.Mobile,
			Heading:      input.Heading,
			Description:  input.Description,
			Status:       domain.QueryStatusOpen,
			CreatedAt:    &createdAt,
		}
		err = s.queries.Create(ctx, query)
		if err == nil {
			s.publishEvent(ctx, events.NewEvent(events.EventQuerySubmitted, id, actorOf(actor),
				events.QuerySubmittedPayload{ClientEmail: input.Email, Heading: input.Heading}))
			return id, nil
		}
		if !errors.Is(err, domain.ErrConstraintViolation) {
			return "", fmt.Errorf("insert query: %w", err)
		}
		lastErr = err
		s.logger.Debug("query id collision", zap.String("query_id", id), zap.Int("attempt", attempt))
	}
	return "", fmt.Errorf("insert query after %d attempts: %w", s.maxAttempts, lastErr)
}

// Close marks a ticket closed. Re-closing and unknown ids are not errors;
// the outcome tells them apart.
func (s *QueryService) Close(ctx context.Context, actor domain.Identity, id string) (domain.CloseOutcome, error) {
	closedAt := s.now()
	outcome, err := s.queries.Close(ctx, id, closedAt)
	if err != nil {
		return "", fmt.Errorf("close query: %w", err)
	}
	if outcome == domain.CloseOutcomeClosed {
		s.publishEvent(ctx, events.NewEvent(events.EventQueryClosed, id, actorOf(actor),
			events.QueryClosedPayload{Outcome: outcome, ClosedAt: closedAt}))
	}
	return outcome, nil
}

// ListAll returns every stored ticket.
func (s *QueryService) ListAll(ctx context.Context) ([]domain.Query, error) {
	queries, err := s.queries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return queries, nil
}

// List returns tickets matching filter ordered by numeric id.
func (s *QueryService) List(ctx context.Context, filter QueryFilter) ([]domain.Query, error) {
	queries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterQueries(queries, filter.Status, filter.Heading)
	sortByID(filtered)
	return filtered, nil
}

// Headings lists distinct headings for filter choices.
func (s *QueryService) Headings(ctx context.Context) ([]string, error) {
	queries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Headings(queries), nil
}

func (s *QueryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// sortByID orders Q9999 before Q10000; malformed ids sort last.
func sortByID(queries []domain.Query) {
	sort.SliceStable(queries, func(i, j int) bool {
		a, okA := domain.ParseQuerySequence(queries[i].ID)
		b, okB := domain.ParseQuerySequence(queries[j].ID)
		switch {
		case okA && okB && a != b:
			return a < b
		case okA != okB:
			return okA
		default:
			return queries[i].ID < queries[j].ID
		}
	})
}

func actorOf(identity domain.Identity) events.Actor {
	return events.Actor{Username: identity.Username, Role: identity.Role}
}
