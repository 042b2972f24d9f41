package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/client-query-service/internal/domain"
)

type queryRepository struct {
	pool *pgxpool.Pool
}

// NewQueryRepository returns a Postgres-backed implementation.
func NewQueryRepository(pool *pgxpool.Pool) QueryRepository {
	return &queryRepository{pool: pool}
}

// sequentialIDPattern selects identifiers whose numeric part fits in a
// BIGINT. Postgres and MySQL share the same regex syntax here.
const sequentialIDPattern = `^Q[0-9]{1,15}$`

func (r *queryRepository) NextID(ctx context.Context) (string, error) {
	const query = `
        SELECT COALESCE(MAX(CAST(SUBSTRING(query_id FROM 2) AS BIGINT)), 0) + 1
        FROM client_queries
        WHERE query_id ~ '` + sequentialIDPattern + `'`

	var next int64
	if err := r.pool.QueryRow(ctx, query).Scan(&next); err != nil {
		return "", mapPgError("next query id", err)
	}
	return domain.FormatQueryID(next), nil
}

func (r *queryRepository) Create(ctx context.Context, q *domain.Query) error {
	const query = `
        INSERT INTO client_queries (query_id, client_email, client_mobile, query_heading, query_description,
            status, query_created_time, query_closed_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	applyInsertDefaults(q)
	_, err := r.pool.Exec(ctx, query,
		q.ID,
		q.ClientEmail,
		q.ClientMobile,
		q.Heading,
		q.Description,
		string(q.Status),
		q.CreatedAt,
		q.ClosedAt,
	)
	if err != nil {
		return mapPgError("insert query "+q.ID, err)
	}
	return nil
}

func (r *queryRepository) List(ctx context.Context) ([]domain.Query, error) {
	const query = `
        SELECT query_id, client_email, client_mobile, query_heading, query_description,
               status, query_created_time, query_closed_time
        FROM client_queries ORDER BY query_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError("list queries", err)
	}
	defer rows.Close()

	result, err := scanQueries(rows)
	if err != nil {
		return nil, mapPgError("list queries", err)
	}
	return result, nil
}

func (r *queryRepository) Close(ctx context.Context, id string, closedAt time.Time) (domain.CloseOutcome, error) {
	const update = `
        UPDATE client_queries SET status='Closed', query_closed_time=$1
        WHERE query_id=$2 AND status <> 'Closed'`
	const exists = `SELECT EXISTS (SELECT 1 FROM client_queries WHERE query_id=$1)`

	cmd, err := r.pool.Exec(ctx, update, closedAt, id)
	if err != nil {
		return "", mapPgError("close query "+id, err)
	}
	if cmd.RowsAffected() > 0 {
		return domain.CloseOutcomeClosed, nil
	}

	var found bool
	if err := r.pool.QueryRow(ctx, exists, id).Scan(&found); err != nil {
		return "", mapPgError("close query "+id, err)
	}
	if found {
		return domain.CloseOutcomeAlreadyClosed, nil
	}
	return domain.CloseOutcomeNotFound, nil
}

func scanQueries(rows pgx.Rows) ([]domain.Query, error) {
	var result []domain.Query
	for rows.Next() {
		var (
			q      domain.Query
			status string
		)
		if err := rows.Scan(
			&q.ID,
			&q.ClientEmail,
			&q.ClientMobile,
			&q.Heading,
			&q.Description,
			&status,
			&q.CreatedAt,
			&q.ClosedAt,
		); err != nil {
			return nil, err
		}
		q.Status = domain.QueryStatus(status)
		result = append(result, q)
	}
	return result, rows.Err()
}
