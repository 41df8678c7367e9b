package repository

import (
	"context"
	"errors"
	"time"

	"vaultroom/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantRepository defines the interface for capability grant persistence.
type GrantRepository interface {
	// ListForUser returns every grant the user holds on the room,
	// regardless of folder scope.
	ListForUser(ctx context.Context, roomID, userID uint) ([]models.Grant, error)
	ListByRoom(ctx context.Context, roomID uint) ([]models.Grant, error)
	GetByID(ctx context.Context, id uint) (*models.Grant, error)
	// UpsertUnion creates a grant at the given scope or unions the
	// capabilities into an existing one. Re-granting already-held
	// capabilities is a no-op, never an error.
	UpsertUnion(ctx context.Context, roomID, userID uint, folderID *uint, caps models.CapabilitySet, grantedBy uint) (*models.Grant, error)
	Delete(ctx context.Context, id uint) error
}

type grantRepository struct {
	db *gorm.DB
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

func (r *grantRepository) ListForUser(ctx context.Context, roomID, userID uint) ([]models.Grant, error) {
	var grants []models.Grant
	if err := r.db.WithContext(ctx).
		Where("data_room_id = ? AND user_id = ?", roomID, userID).
		Find(&grants).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return grants, nil
}

func (r *grantRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Grant, error) {
	var grants []models.Grant
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("data_room_id = ?", roomID).
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return grants, nil
}

func (r *grantRepository) GetByID(ctx context.Context, id uint) (*models.Grant, error) {
	var grant models.Grant
	if err := r.db.WithContext(ctx).First(&grant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Grant", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &grant, nil
}

func (r *grantRepository) UpsertUnion(ctx context.Context, roomID, userID uint, folderID *uint, caps models.CapabilitySet, grantedBy uint) (*models.Grant, error) {
	var result models.Grant

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("data_room_id = ? AND user_id = ?", roomID, userID)
		if folderID == nil {
			query = query.Where("folder_id IS NULL")
		} else {
			query = query.Where("folder_id = ?", *folderID)
		}

		var existing models.Grant
		err := query.First(&existing).Error
		switch {
		case err == nil:
			union := existing.Capabilities.Union(caps)
			if union.Equal(existing.Capabilities) {
				result = existing
				return nil
			}
			existing.Capabilities = union
			existing.UpdatedAt = time.Now().UTC()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := models.Grant{
				DataRoomID:      roomID,
				UserID:          userID,
				FolderID:        folderID,
				Capabilities:    models.NewCapabilitySet(caps...),
				GrantedByUserID: grantedBy,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			result = created
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &result, nil
}

func (r *grantRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Grant{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
