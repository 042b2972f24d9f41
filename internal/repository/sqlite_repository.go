package repository

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/client-query-service/internal/domain"
	"github.com/spec-kit/client-query-service/internal/persistence"
)

// Timestamps are stored as local wall-clock text, like a DATETIME column.
const (
	sqliteTimeLayout      = "2006-01-02 15:04:05.000000"
	sqliteTimeParseLayout = "2006-01-02 15:04:05"
)

type sqliteUserRepository struct {
	pool *persistence.SQLite
}

// NewSQLiteUserRepository returns a credential store on the embedded backend.
func NewSQLiteUserRepository(pool *persistence.SQLite) UserRepository {
	return &sqliteUserRepository{pool: pool}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return domain.NewStorageError("create user", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO users (username, hashed_password, role) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{user.Username, user.PasswordHash, string(user.Role)}},
	)
	if err != nil {
		switch sqlite.ErrCode(err) {
		case sqlite.ResultConstraintUnique, sqlite.ResultConstraintPrimaryKey:
			return fmt.Errorf("create user %q: %w", user.Username, domain.ErrDuplicateUsername)
		}
		return mapSQLiteError("create user", err)
	}
	return nil
}

func (r *sqliteUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, domain.NewStorageError("get user", err)
	}
	defer r.pool.Put(conn)

	var user *domain.User
	err = sqlitex.Execute(conn,
		`SELECT username, hashed_password, role FROM users WHERE username = ?`,
		&sqlitex.ExecOptions{
			Args: []any{username},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				user = &domain.User{
					Username:     stmt.ColumnText(0),
					PasswordHash: stmt.ColumnText(1),
					Role:         domain.Role(stmt.ColumnText(2)),
				}
				return nil
			},
		},
	)
	if err != nil {
		return nil, mapSQLiteError("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("get user: %w", domain.ErrNotFound)
	}
	return user, nil
}

type sqliteQueryRepository struct {
	pool *persistence.SQLite
}

// NewSQLiteQueryRepository returns a query repository on the embedded backend.
func NewSQLiteQueryRepository(pool *persistence.SQLite) QueryRepository {
	return &sqliteQueryRepository{pool: pool}
}

func (r *sqliteQueryRepository) NextID(ctx context.Context) (string, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return "", domain.NewStorageError("next query id", err)
	}
	defer r.pool.Put(conn)

	var next int64
	err = sqlitex.Execute(conn, `
		SELECT COALESCE(MAX(CAST(SUBSTR(query_id, 2) AS INTEGER)), 0) + 1
		FROM client_queries
		WHERE query_id GLOB 'Q[0-9]*' AND SUBSTR(query_id, 2) NOT GLOB '*[^0-9]*'
			AND LENGTH(query_id) <= 16`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				next = stmt.ColumnInt64(0)
				return nil
			},
		},
	)
	if err != nil {
		return "", mapSQLiteError("next query id", err)
	}
	return domain.FormatQueryID(next), nil
}

func (r *sqliteQueryRepository) Create(ctx context.Context, q *domain.Query) error {
	applyInsertDefaults(q)

	conn, err := r.pool.Take(ctx)
	if err != nil {
		return domain.NewStorageError("insert query "+q.ID, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO client_queries (query_id, client_email, client_mobile, query_heading, query_description,
			status, query_created_time, query_closed_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			q.ID,
			q.ClientEmail,
			q.ClientMobile,
			q.Heading,
			q.Description,
			string(q.Status),
			sqliteTimeArg(q.CreatedAt),
			sqliteTimeArg(q.ClosedAt),
		}},
	)
	if err != nil {
		return mapSQLiteError("insert query "+q.ID, err)
	}
	return nil
}

func (r *sqliteQueryRepository) List(ctx context.Context) ([]domain.Query, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list queries", err)
	}
	defer r.pool.Put(conn)

	var result []domain.Query
	err = sqlitex.Execute(conn, `
		SELECT query_id, client_email, client_mobile, query_heading, query_description,
			status, query_created_time, query_closed_time
		FROM client_queries ORDER BY query_id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				q := domain.Query{
					ID:           stmt.ColumnText(0),
					ClientEmail:  stmt.ColumnText(1),
					ClientMobile: stmt.ColumnText(2),
					Heading:      stmt.ColumnText(3),
					Description:  stmt.ColumnText(4),
					Status:       domain.QueryStatus(stmt.ColumnText(5)),
				}
				if !stmt.ColumnIsNull(6) {
					q.CreatedAt = parseSQLiteTime(stmt.ColumnText(6))
				}
				if !stmt.ColumnIsNull(7) {
					q.ClosedAt = parseSQLiteTime(stmt.ColumnText(7))
				}
				result = append(result, q)
				return nil
			},
		},
	)
	if err != nil {
		return nil, mapSQLiteError("list queries", err)
	}
	return result, nil
}

func (r *sqliteQueryRepository) Close(ctx context.Context, id string, closedAt time.Time) (domain.CloseOutcome, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return "", domain.NewStorageError("close query "+id, err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE client_queries SET status = 'Closed', query_closed_time = ? WHERE query_id = ? AND status <> 'Closed'`,
		&sqlitex.ExecOptions{Args: []any{closedAt.Format(sqliteTimeLayout), id}},
	)
	if err != nil {
		return "", mapSQLiteError("close query "+id, err)
	}
	if conn.Changes() > 0 {
		return domain.CloseOutcomeClosed, nil
	}

	var found bool
	err = sqlitex.Execute(conn,
		`SELECT 1 FROM client_queries WHERE query_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(*sqlite.Stmt) error {
				found = true
				return nil
			},
		},
	)
	if err != nil {
		return "", mapSQLiteError("close query "+id, err)
	}
	if found {
		return domain.CloseOutcomeAlreadyClosed, nil
	}
	return domain.CloseOutcomeNotFound, nil
}

func sqliteTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(sqliteTimeLayout)
}

func parseSQLiteTime(raw string) *time.Time {
	t, err := time.ParseInLocation(sqliteTimeParseLayout, raw, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func mapSQLiteError(op string, err error) error {
	if sqlite.ErrCode(err).ToPrimary() == sqlite.ResultConstraint {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrConstraintViolation)
	}
	return domain.NewStorageError(op, err)
}
