package repository

import (
	"context"

	"vaultroom/internal/models"

	"gorm.io/gorm"
)

// ActivityFilter bounds an activity query. BeforeID acts as a keyset
// cursor: only records with a smaller ID are returned.
type ActivityFilter struct {
	DataRoomID *uint
	ActorID    *uint
	Limit      int
	BeforeID   *uint
}

// ActivityRepository defines the interface for the append-only audit trail.
// There are deliberately no update or delete operations.
type ActivityRepository interface {
	Append(ctx context.Context, record *models.ActivityRecord) error
	Query(ctx context.Context, filter ActivityFilter) ([]models.ActivityRecord, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, record *models.ActivityRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) Query(ctx context.Context, filter ActivityFilter) ([]models.ActivityRecord, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Preload("Actor").Order("id DESC").Limit(limit)
	if filter.DataRoomID != nil {
		query = query.Where("data_room_id = ?", *filter.DataRoomID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.BeforeID != nil {
		query = query.Where("id < ?", *filter.BeforeID)
	}

	var records []models.ActivityRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return records, nil
}
