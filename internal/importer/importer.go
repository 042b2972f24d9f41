// Package importer loads legacy ticket exports into the query store.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/repository"
)

// DefaultFile is read when no path is given.
const DefaultFile = "client_data.csv"

const (
	colQueryID     = "query_id"
	colEmail       = "client_email"
	colMobile      = "client_mobile"
	colHeading     = "query_heading"
	colDescription = "query_description"
	colStatus      = "status"
	colCreated     = "query_created_time"
	colClosed      = "query_closed_time"
)

// legacyColumns maps old export headers onto current ones.
var legacyColumns = map[string]string{
	"date_raised": colCreated,
	"date_closed": colClosed,
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-01-2006 15:04",
	"02-01-2006",
}

// RowError describes one rejected data row. Row is 1-based and excludes the
// header.
type RowError struct {
	Row     int    `json:"row"`
	QueryID string `json:"query_id,omitempty"`
	Err     error  `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Result summarizes an import run.
type Result struct {
	Inserted int
	Failed   int
	Errors   []RowError
}

// Importer inserts CSV rows one at a time. A failing row never aborts the
// batch.
type Importer struct {
	queries repository.QueryRepository
	logger  *zap.Logger
}

// New creates an importer writing through queries.
func New(queries repository.QueryRepository, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{queries: queries, logger: logger}
}

// ImportFile imports the CSV at path, or DefaultFile when path is empty.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	im.logger.Info("importing csv", zap.String("path", path))
	return im.Import(ctx, f)
}

// Import reads a header row followed by ticket rows from r.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("csv has no header row")
		}
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	columns := indexColumns(header)

	var result Result
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			im.fail(&result, RowError{Row: row, Err: err})
			continue
		}

		query, err := parseRow(columns, record)
		if err != nil {
			im.fail(&result, RowError{Row: row, QueryID: query.ID, Err: err})
			continue
		}
		if query.ID == "" {
			id, err := im.queries.NextID(ctx)
			if err != nil {
				im.fail(&result, RowError{Row: row, Err: err})
				continue
			}
			query.ID = id
		}
		if err := im.queries.Create(ctx, &query); err != nil {
			im.fail(&result, RowError{Row: row, QueryID: query.ID, Err: err})
			continue
		}
		result.Inserted++
	}

	im.logger.Info("csv import finished", zap.Int("inserted", result.Inserted), zap.Int("failed", result.Failed))
	return result, nil
}

func (im *Importer) fail(result *Result, rowErr RowError) {
	result.Failed++
	result.Errors = append(result.Errors, rowErr)
	im.logger.Warn("row skipped", zap.Int("row", rowErr.Row), zap.String("query_id", rowErr.QueryID), zap.Error(rowErr.Err))
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if renamed, ok := legacyColumns[key]; ok {
			key = renamed
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	return columns
}

func parseRow(columns map[string]int, record []string) (domain.Query, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	query := domain.Query{
		ID:           field(colQueryID),
		ClientEmail:  field(colEmail),
		ClientMobile: field(colMobile),
		Heading:      field(colHeading),
		Description:  field(colDescription),
		Status:       domain.NormalizeStatus(field(colStatus)),
		CreatedAt:    parseTime(field(colCreated)),
		ClosedAt:     parseTime(field(colClosed)),
	}

	if err := domain.ValidateQueryID(query.ID); err != nil {
		return query, err
	}

	switch query.Status {
	case domain.QueryStatusOpen:
		if query.ClosedAt != nil {
			return query, domain.ValidationError("open ticket has a closed time")
		}
	case domain.QueryStatusClosed:
		if query.ClosedAt == nil {
			return query, domain.ValidationError("closed ticket has no valid closed time")
		}
	default:
		return query, domain.ValidationError("unknown status %q", query.Status)
	}
	return query, nil
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		local := t.Local()
		return &local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
