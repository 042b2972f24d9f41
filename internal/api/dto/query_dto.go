package dto

import (
	"time"

	"github.com/spec-kit/client-query-service/internal/analytics"
	"github.com/spec-kit/client-query-service/internal/domain"
)

// SubmitQueryRequest payload. Empty fields are accepted as-is.
type SubmitQueryRequest struct {
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

// QueryResponse represents a stored ticket.
type QueryResponse struct {
	QueryID     string             `json:"query_id"`
	Email       string             `json:"client_email"`
	Mobile      string             `json:"client_mobile"`
	Heading     string             `json:"query_heading"`
	Description string             `json:"query_description"`
	Status      domain.QueryStatus `json:"status"`
	CreatedAt   *time.Time         `json:"query_created_time"`
	ClosedAt    *time.Time         `json:"query_closed_time"`
}

// CloseQueryResponse acknowledges a close request.
type CloseQueryResponse struct {
	QueryID string              `json:"query_id"`
	Outcome domain.CloseOutcome `json:"outcome"`
}

// AnalyticsResponse wraps the dashboard report.
type AnalyticsResponse struct {
	analytics.Report
	HeadingStatus string `json:"heading_status"`
}

// NewQueryResponse maps a domain ticket onto its wire form.
func NewQueryResponse(q domain.Query) QueryResponse {
	return QueryResponse{
		QueryID:     q.ID,
		Email:       q.ClientEmail,
		Mobile:      q.ClientMobile,
		Heading:     q.Heading,
		Description: q.Description,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
		ClosedAt:    q.ClosedAt,
	}
}
