// Package analytics derives dashboard aggregates from a snapshot of tickets.
// Every function is pure; callers fetch a fresh snapshot per request.
package analytics

import (
	"sort"
	"strings"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// FilterAll disables a status or heading filter.
const FilterAll = "All"

const dateLayout = "2006-01-02"

// Counts holds ticket totals by status.
type Counts struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// DailyCount is one point of a per-day trend.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HeadingCount is the number of tickets sharing a heading.
type HeadingCount struct {
	Heading string `json:"heading"`
	Count   int    `json:"count"`
}

// Report bundles every aggregate shown on the support dashboard.
type Report struct {
	Counts             Counts         `json:"counts"`
	AvgResolutionHours *float64       `json:"avg_resolution_hours,omitempty"`
	DailyCreationTrend []DailyCount   `json:"daily_creation_trend"`
	DailyBacklogTrend  []DailyCount   `json:"daily_backlog_trend"`
	HeadingCounts      []HeadingCount `json:"heading_counts"`
}

// Build computes the full report. headingStatus pre-filters HeadingCounts
// only; the other aggregates always cover the whole snapshot.
func Build(tickets []domain.Query, headingStatus string) Report {
	report := Report{
		Counts:             CountByStatus(tickets),
		DailyCreationTrend: DailyCreationTrend(tickets),
		DailyBacklogTrend:  DailyOpenBacklogTrend(tickets),
		HeadingCounts:      HeadingCounts(tickets, headingStatus),
	}
	if avg, ok := AverageResolutionHours(tickets); ok {
		report.AvgResolutionHours = &avg
	}
	return report
}

// CountByStatus counts tickets per status. Status comparison is exact.
func CountByStatus(tickets []domain.Query) Counts {
	counts := Counts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.QueryStatusOpen:
			counts.Open++
		case domain.QueryStatusClosed:
			counts.Closed++
		}
	}
	return counts
}

// AverageResolutionHours returns the mean time from creation to close over
// tickets carrying both timestamps. ok is false when no ticket qualifies.
// Tickets closed before their recorded creation contribute negative values.
func AverageResolutionHours(tickets []domain.Query) (hours float64, ok bool) {
	var total float64
	var n int
	for _, t := range tickets {
		if t.CreatedAt == nil || t.ClosedAt == nil {
			continue
		}
		total += t.ClosedAt.Sub(*t.CreatedAt).Hours()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// DailyCreationTrend counts tickets per calendar day of creation, ascending.
// Tickets without a creation time are skipped.
func DailyCreationTrend(tickets []domain.Query) []DailyCount {
	return dailyCounts(tickets, func(domain.Query) bool { return true })
}

// DailyOpenBacklogTrend is DailyCreationTrend restricted to open tickets.
func DailyOpenBacklogTrend(tickets []domain.Query) []DailyCount {
	return dailyCounts(tickets, domain.Query.IsOpen)
}

func dailyCounts(tickets []domain.Query, include func(domain.Query) bool) []DailyCount {
	perDay := make(map[string]int)
	for _, t := range tickets {
		if t.CreatedAt == nil || !include(t) {
			continue
		}
		perDay[t.CreatedAt.Format(dateLayout)]++
	}

	trend := make([]DailyCount, 0, len(perDay))
	for day, count := range perDay {
		trend = append(trend, DailyCount{Date: day, Count: count})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// HeadingCounts counts tickets per heading after an optional case-insensitive
// status filter, largest first. Equal counts are ordered by heading.
func HeadingCounts(tickets []domain.Query, statusFilter string) []HeadingCount {
	perHeading := make(map[string]int)
	for _, t := range FilterQueries(tickets, statusFilter, "") {
		perHeading[t.Heading]++
	}

	counts := make([]HeadingCount, 0, len(perHeading))
	for heading, count := range perHeading {
		counts = append(counts, HeadingCount{Heading: heading, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Heading < counts[j].Heading
	})
	return counts
}

// FilterQueries keeps tickets matching status and heading, both compared
// case-insensitively. An empty or "All" value matches everything.
func FilterQueries(tickets []domain.Query, status, heading string) []domain.Query {
	matchStatus := !isWildcard(status)
	matchHeading := !isWildcard(heading)

	filtered := make([]domain.Query, 0, len(tickets))
	for _, t := range tickets {
		if matchStatus && !strings.EqualFold(string(t.Status), strings.TrimSpace(status)) {
			continue
		}
		if matchHeading && !strings.EqualFold(t.Heading, strings.TrimSpace(heading)) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// Headings returns the distinct non-empty headings in ascending order.
func Headings(tickets []domain.Query) []string {
	seen := make(map[string]struct{})
	headings := make([]string, 0)
	for _, t := range tickets {
		if strings.TrimSpace(t.Heading) == "" {
			continue
		}
		if _, ok := seen[t.Heading]; ok {
			continue
		}
		seen[t.Heading] = struct{}{}
		headings = append(headings, t.Heading)
	}
	sort.Strings(headings)
	return headings
}

func isWildcard(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || strings.EqualFold(trimmed, FilterAll)
}
