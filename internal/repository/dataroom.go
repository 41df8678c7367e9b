package repository

import (
	"context"
	"errors"
	"time"

	"vaultroom/internal/models"

	"gorm.io/gorm"
)

// DataRoomRepository defines the interface for data room persistence.
type DataRoomRepository interface {
	Create(ctx context.Context, room *models.DataRoom) error
	GetByID(ctx context.Context, id uint) (*models.DataRoom, error)
	// ListForUser returns rooms the user owns or holds any grant on.
	ListForUser(ctx context.Context, userID uint) ([]models.DataRoom, error)
	UpdateExpiresAt(ctx context.Context, roomID uint, expiresAt *time.Time) error
	// Archive stamps the archived marker. It only touches rooms that are
	// not already archived, so repeated calls are harmless. A nil
	// archivedBy means the expiration sweep archived the room.
	Archive(ctx context.Context, roomID uint, archivedBy *uint, at time.Time) error
	Unarchive(ctx context.Context, roomID uint) error
	// ListExpiredBefore returns unarchived rooms whose expiration is
	// older than the cutoff. Used by the archive sweep.
	ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.DataRoom, error)
}

type dataRoomRepository struct {
	db *gorm.DB
}

// NewDataRoomRepository creates a new data room repository
func NewDataRoomRepository(db *gorm.DB) DataRoomRepository {
	return &dataRoomRepository{db: db}
}

func (r *dataRoomRepository) Create(ctx context.Context, room *models.DataRoom) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dataRoomRepository) GetByID(ctx context.Context, id uint) (*models.DataRoom, error) {
	var room models.DataRoom
	if err := r.db.WithContext(ctx).Preload("Owner").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Data room", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &room, nil
}

func (r *dataRoomRepository) ListForUser(ctx context.Context, userID uint) ([]models.DataRoom, error) {
	var rooms []models.DataRoom
	if err := r.db.WithContext(ctx).
		Distinct("data_rooms.*").
		Joins("LEFT JOIN grants g ON g.data_room_id = data_rooms.id AND g.user_id = ?", userID).
		Where("data_rooms.owner_id = ? OR g.id IS NOT NULL", userID).
		Order("data_rooms.name ASC").
		Find(&rooms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}

func (r *dataRoomRepository) UpdateExpiresAt(ctx context.Context, roomID uint, expiresAt *time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.DataRoom{}).
		Where("id = ?", roomID).
		Update("expires_at", expiresAt).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dataRoomRepository) Archive(ctx context.Context, roomID uint, archivedBy *uint, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.DataRoom{}).
		Where("id = ? AND archived_at IS NULL", roomID).
		Updates(map[string]interface{}{
			"archived_at":         at,
			"archived_by_user_id": archivedBy,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dataRoomRepository) Unarchive(ctx context.Context, roomID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.DataRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"archived_at":         nil,
			"archived_by_user_id": nil,
		}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *dataRoomRepository) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.DataRoom, error) {
	var rooms []models.DataRoom
	if err := r.db.WithContext(ctx).
		Where("archived_at IS NULL AND expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Find(&rooms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}
