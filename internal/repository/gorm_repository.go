package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/client-query-service/internal/domain"
)

// Identifier columns use a binary collation so MySQL compares them
// case-sensitively, like the Postgres and SQLite backends do.
type userRecord struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	Username       string `gorm:"type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;uniqueIndex;not null"`
	HashedPassword string `gorm:"column:hashed_password;type:varchar(255);not null"`
	Role           string `gorm:"type:varchar(16);not null;default:'Client'"`
}

func (userRecord) TableName() string { return "users" }

type queryRecord struct {
	QueryID          string     `gorm:"column:query_id;type:varchar(16) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;primaryKey"`
	ClientEmail      string     `gorm:"column:client_email;type:varchar(255);not null;default:''"`
	ClientMobile     string     `gorm:"column:client_mobile;type:varchar(20);not null;default:''"`
	QueryHeading     string     `gorm:"column:query_heading;type:varchar(255);not null;default:''"`
	QueryDescription string     `gorm:"column:query_description;type:text"`
	Status           string     `gorm:"column:status;type:varchar(16);not null;default:'Open';index"`
	QueryCreatedTime *time.Time `gorm:"column:query_created_time"`
	QueryClosedTime  *time.Time `gorm:"column:query_closed_time"`
}

func (queryRecord) TableName() string { return "client_queries" }

// MigrateGorm creates or updates the tables for the MySQL backend.
func MigrateGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRecord{}, &queryRecord{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository returns a GORM-backed credential store.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	record := userRecord{
		Username:       user.Username,
		HashedPassword: user.PasswordHash,
		Role:           string(user.Role),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return mapGormCreateUserError(user.Username, err)
	}
	return nil
}

func mapGormCreateUserError(username string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create user %q: %w", username, domain.ErrDuplicateUsername)
	}
	return mapGormError("create user", err)
}

func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var record userRecord
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&record).Error; err != nil {
		return nil, mapGormError("get user", err)
	}
	return &domain.User{
		Username:     record.Username,
		PasswordHash: record.HashedPassword,
		Role:         domain.Role(record.Role),
	}, nil
}

type gormQueryRepository struct {
	db *gorm.DB
}

// NewGormQueryRepository returns a GORM-backed query repository.
func NewGormQueryRepository(db *gorm.DB) QueryRepository {
	return &gormQueryRepository{db: db}
}

func (r *gormQueryRepository) NextID(ctx context.Context) (string, error) {
	const query = `
        SELECT COALESCE(MAX(CAST(SUBSTRING(query_id, 2) AS UNSIGNED)), 0) + 1
        FROM client_queries
        WHERE query_id REGEXP '` + sequentialIDPattern + `'`

	var next int64
	if err := r.db.WithContext(ctx).Raw(query).Scan(&next).Error; err != nil {
		return "", mapGormError("next query id", err)
	}
	return domain.FormatQueryID(next), nil
}

func (r *gormQueryRepository) Create(ctx context.Context, q *domain.Query) error {
	applyInsertDefaults(q)
	record := queryRecord{
		QueryID:          q.ID,
		ClientEmail:      q.ClientEmail,
		ClientMobile:     q.ClientMobile,
		QueryHeading:     q.Heading,
		QueryDescription: q.Description,
		Status:           string(q.Status),
		QueryCreatedTime: q.CreatedAt,
		QueryClosedTime:  q.ClosedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return mapGormError("insert query "+q.ID, err)
	}
	return nil
}

func (r *gormQueryRepository) List(ctx context.Context) ([]domain.Query, error) {
	var records []queryRecord
	if err := r.db.WithContext(ctx).Order("query_id").Find(&records).Error; err != nil {
		return nil, mapGormError("list queries", err)
	}
	result := make([]domain.Query, 0, len(records))
	for _, record := range records {
		result = append(result, domain.Query{
			ID:           record.QueryID,
			ClientEmail:  record.ClientEmail,
			ClientMobile: record.ClientMobile,
			Heading:      record.QueryHeading,
			Description:  record.QueryDescription,
			Status:       domain.QueryStatus(record.Status),
			CreatedAt:    record.QueryCreatedTime,
			ClosedAt:     record.QueryClosedTime,
		})
	}
	return result, nil
}

func (r *gormQueryRepository) Close(ctx context.Context, id string, closedAt time.Time) (domain.CloseOutcome, error) {
	res := r.db.WithContext(ctx).
		Model(&queryRecord{}).
		Where("query_id = ? AND status <> ?", id, string(domain.QueryStatusClosed)).
		Updates(map[string]any{
			"status":            string(domain.QueryStatusClosed),
			"query_closed_time": closedAt,
		})
	if res.Error != nil {
		return "", mapGormError("close query "+id, res.Error)
	}
	if res.RowsAffected > 0 {
		return domain.CloseOutcomeClosed, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&queryRecord{}).Where("query_id = ?", id).Count(&count).Error; err != nil {
		return "", mapGormError("close query "+id, err)
	}
	if count > 0 {
		return domain.CloseOutcomeAlreadyClosed, nil
	}
	return domain.CloseOutcomeNotFound, nil
}

func mapGormError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%s: %w", op, domain.ErrConstraintViolation)
	default:
		return domain.NewStorageError(op, err)
	}
}
