package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/client-query-service/internal/domain"
)

func at(value string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		panic(err)
	}
	return &t
}

func ticket(id, heading string, status domain.QueryStatus, created, closed *time.Time) domain.Query {
	return domain.Query{ID: id, Heading: heading, Status: status, CreatedAt: created, ClosedAt: closed}
}

func TestCountByStatus(t *testing.T) {
	tickets := []domain.Query{
		ticket("Q0001", "Billing", domain.QueryStatusOpen, nil, nil),
		ticket("Q0002", "Billing", domain.QueryStatusClosed, nil, nil),
		ticket("Q0003", "Billing", domain.QueryStatus("open"), nil, nil),
	}
	assert.Equal(t, Counts{Total: 3, Open: 1, Closed: 1}, CountByStatus(tickets))
	assert.Equal(t, Counts{}, CountByStatus(nil))
}

func TestAverageResolutionHours(t *testing.T) {
	tests := []struct {
		name    string
		tickets []domain.Query
		want    float64
		wantOK  bool
	}{
		{
			name: "single ticket closed after two hours",
			tickets: []domain.Query{
				ticket("Q0001", "Login", domain.QueryStatusClosed, at("2024-03-01 09:00"), at("2024-03-01 11:00")),
			},
			want:   2.0,
			wantOK: true,
		},
		{
			name: "all open",
			tickets: []domain.Query{
				ticket("Q0001", "Login", domain.QueryStatusOpen, at("2024-03-01 09:00"), nil),
				ticket("Q0002", "Login", domain.QueryStatusOpen, at("2024-03-02 09:00"), nil),
			},
			wantOK: false,
		},
		{
			name: "ignores tickets missing created time",
			tickets: []domain.Query{
				ticket("Q0001", "Login", domain.QueryStatusClosed, nil, at("2024-03-01 11:00")),
				ticket("Q0002", "Login", domain.QueryStatusClosed, at("2024-03-01 09:00"), at("2024-03-01 13:00")),
				ticket("Q0003", "Login", domain.QueryStatusClosed, at("2024-03-01 09:00"), at("2024-03-01 11:00")),
			},
			want:   3.0,
			wantOK: true,
		},
		{
			name: "closed before created counts negative",
			tickets: []domain.Query{
				ticket("Q0001", "Login", domain.QueryStatusClosed, at("2024-03-01 12:00"), at("2024-03-01 10:00")),
			},
			want:   -2.0,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AverageResolutionHours(tt.tickets)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDailyTrends(t *testing.T) {
	tickets := []domain.Query{
		ticket("Q0001", "A", domain.QueryStatusOpen, at("2024-03-02 23:30"), nil),
		ticket("Q0002", "A", domain.QueryStatusClosed, at("2024-03-01 08:00"), at("2024-03-01 09:00")),
		ticket("Q0003", "B", domain.QueryStatusOpen, at("2024-03-01 10:00"), nil),
		ticket("Q0004", "B", domain.QueryStatusOpen, at("2024-03-02 00:10"), nil),
		ticket("Q0005", "C", domain.QueryStatusOpen, nil, nil),
	}

	assert.Equal(t, []DailyCount{
		{Date: "2024-03-01", Count: 2},
		{Date: "2024-03-02", Count: 2},
	}, DailyCreationTrend(tickets))

	assert.Equal(t, []DailyCount{
		{Date: "2024-03-01", Count: 1},
		{Date: "2024-03-02", Count: 2},
	}, DailyOpenBacklogTrend(tickets))

	assert.Empty(t, DailyCreationTrend(nil))
}

func TestHeadingCounts(t *testing.T) {
	created := at("2024-03-01 09:00")
	tickets := []domain.Query{
		ticket("Q0001", "Login Issue", domain.QueryStatusOpen, created, nil),
		ticket("Q0002", "Login Issue", domain.QueryStatusOpen, created, nil),
		ticket("Q0003", "Billing", domain.QueryStatusOpen, created, nil),
	}

	assert.Equal(t, []HeadingCount{
		{Heading: "Login Issue", Count: 2},
		{Heading: "Billing", Count: 1},
	}, HeadingCounts(tickets, "All"))
	assert.Equal(t, HeadingCounts(tickets, "All"), HeadingCounts(tickets, ""))

	closed := append(tickets,
		ticket("Q0004", "Billing", domain.QueryStatusClosed, created, created),
		ticket("Q0005", "Billing", domain.QueryStatusClosed, created, created),
		ticket("Q0006", "Billing", domain.QueryStatusClosed, created, created),
	)
	assert.Equal(t, []HeadingCount{
		{Heading: "Login Issue", Count: 2},
		{Heading: "Billing", Count: 1},
	}, HeadingCounts(closed, "open"))
	assert.Equal(t, []HeadingCount{{Heading: "Billing", Count: 3}}, HeadingCounts(closed, "CLOSED"))
	assert.Empty(t, HeadingCounts(closed, "Pending"))
}

func TestFilterQueriesAndHeadings(t *testing.T) {
	tickets := []domain.Query{
		ticket("Q0001", "Login Issue", domain.QueryStatusOpen, nil, nil),
		ticket("Q0002", "Billing", domain.QueryStatusClosed, nil, nil),
		ticket("Q0003", "billing", domain.QueryStatusOpen, nil, nil),
		ticket("Q0004", "", domain.QueryStatusOpen, nil, nil),
	}

	assert.Len(t, FilterQueries(tickets, "All", "All"), 4)
	assert.Len(t, FilterQueries(tickets, "open", ""), 3)

	billing := FilterQueries(tickets, "", "BILLING")
	require.Len(t, billing, 2)
	assert.Equal(t, "Q0002", billing[0].ID)

	openBilling := FilterQueries(tickets, "Open", "Billing")
	require.Len(t, openBilling, 1)
	assert.Equal(t, "Q0003", openBilling[0].ID)

	assert.Equal(t, []string{"Billing", "Login Issue", "billing"}, Headings(tickets))
}

func TestBuild(t *testing.T) {
	tickets := []domain.Query{
		ticket("Q0001", "Login Issue", domain.QueryStatusClosed, at("2024-03-01 09:00"), at("2024-03-01 11:00")),
		ticket("Q0002", "Billing", domain.QueryStatusOpen, at("2024-03-02 09:00"), nil),
	}

	report := Build(tickets, "Open")
	assert.Equal(t, Counts{Total: 2, Open: 1, Closed: 1}, report.Counts)
	require.NotNil(t, report.AvgResolutionHours)
	assert.InDelta(t, 2.0, *report.AvgResolutionHours, 1e-9)
	assert.Len(t, report.DailyCreationTrend, 2)
	assert.Equal(t, []DailyCount{{Date: "2024-03-02", Count: 1}}, report.DailyBacklogTrend)
	assert.Equal(t, []HeadingCount{{Heading: "Billing", Count: 1}}, report.HeadingCounts)

	empty := Build(nil, "")
	assert.Nil(t, empty.AvgResolutionHours)
	assert.Equal(t, Counts{}, empty.Counts)
}
