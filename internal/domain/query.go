package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QueryStatus enumerates lifecycle states for client queries.
type QueryStatus string

const (
	QueryStatusOpen   QueryStatus = "Open"
	QueryStatusClosed QueryStatus = "Closed"

	// legacyStatusOpened appears in older CSV exports.
	legacyStatusOpened = "Opened"
)

// QueryIDPrefix prefixes every ticket identifier.
const QueryIDPrefix = "Q"

// MaxQueryIDLength matches the width of the query_id column.
const MaxQueryIDLength = 16

// Query is a client-submitted support ticket.
type Query struct {
	ID           string
	ClientEmail  string
	ClientMobile string
	Heading      string
	Description  string
	Status       QueryStatus
	CreatedAt    *time.Time
	ClosedAt     *time.Time
}

// IsOpen reports whether the ticket is still awaiting support.
func (q Query) IsOpen() bool {
	return q.Status == QueryStatusOpen
}

// FormatQueryID renders the n-th ticket identifier, e.g. 7 -> "Q0007".
func FormatQueryID(n int64) string {
	return fmt.Sprintf("%s%04d", QueryIDPrefix, n)
}

// ParseQuerySequence extracts the numeric counter from an identifier such as
// "Q0042". ok is false for identifiers that do not follow the format.
func ParseQuerySequence(id string) (n int64, ok bool) {
	if !strings.HasPrefix(id, QueryIDPrefix) || len(id) == len(QueryIDPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[len(QueryIDPrefix):], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ValidateQueryID rejects identifiers that storage cannot hold. Identifiers
// outside the "Q<digits>" scheme are accepted for legacy imports.
func ValidateQueryID(id string) error {
	if len(id) > MaxQueryIDLength {
		return ValidationError("query id %q exceeds %d characters", id, MaxQueryIDLength)
	}
	return nil
}

// NormalizeStatus maps imported status values onto the two known states.
// Unknown values are returned unchanged so storage can reject them.
func NormalizeStatus(raw string) QueryStatus {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return QueryStatusOpen
	case trimmed == legacyStatusOpened:
		return QueryStatusOpen
	default:
		return QueryStatus(trimmed)
	}
}

// CloseOutcome describes what a close request did.
type CloseOutcome string

const (
	CloseOutcomeClosed        CloseOutcome = "closed"
	CloseOutcomeAlreadyClosed CloseOutcome = "already_closed"
	CloseOutcomeNotFound      CloseOutcome = "not_found"
)
