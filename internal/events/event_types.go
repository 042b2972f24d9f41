package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQuerySubmitted EventType = "query_submitted"
	EventQueryClosed    EventType = "query_closed"
	EventUserRegistered EventType = "user_registered"
)

// Actor identifies who triggered an event.
type Actor struct {
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	QueryID   string      `json:"query_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and timestamp.
func NewEvent(eventType EventType, queryID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		QueryID:   queryID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// QuerySubmittedPayload payload.
type QuerySubmittedPayload struct {
	ClientEmail string `json:"client_email"`
	Heading     string `json:"heading"`
}

// QueryClosedPayload payload.
type QueryClosedPayload struct {
	Outcome  domain.CloseOutcome `json:"outcome"`
	ClosedAt time.Time           `json:"closed_at"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
