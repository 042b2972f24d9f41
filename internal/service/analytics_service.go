package service

import (
	"context"

	"github.com/spec-kit/client-query-service/internal/analytics"
)

// AnalyticsService computes dashboard aggregates from a fresh snapshot.
type AnalyticsService struct {
	queries *QueryService
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(queries *QueryService) *AnalyticsService {
	return &AnalyticsService{queries: queries}
}

// Report reads every ticket and builds the dashboard report. headingStatus
// filters only the per-heading breakdown.
func (s *AnalyticsService) Report(ctx context.Context, headingStatus string) (analytics.Report, error) {
	tickets, err := s.queries.ListAll(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Build(tickets, headingStatus), nil
}
