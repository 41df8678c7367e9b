package repository

import (
	"context"
	"errors"

	"vaultroom/internal/models"

	"gorm.io/gorm"
)

// FolderRepository defines the interface for folder tree persistence.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id uint) (*models.Folder, error)
	ListByRoom(ctx context.Context, roomID uint) ([]models.Folder, error)
	// PathToRoot returns the folder and its ancestors, starting at the
	// folder itself and ending at a top-level folder.
	PathToRoot(ctx context.Context, folderID uint) ([]models.Folder, error)
	UpdateParent(ctx context.Context, folderID uint, parentID *uint) error
}

type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *folderRepository) GetByID(ctx context.Context, id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := r.db.WithContext(ctx).First(&folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Folder", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &folder, nil
}

func (r *folderRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Folder, error) {
	var folders []models.Folder
	if err := r.db.WithContext(ctx).
		Where("data_room_id = ?", roomID).
		Order("name ASC").
		Find(&folders).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return folders, nil
}

func (r *folderRepository) PathToRoot(ctx context.Context, folderID uint) ([]models.Folder, error) {
	var path []models.Folder
	nextID := &folderID
	// Folder trees are shallow; a bounded parent walk avoids recursive CTEs
	// and still guards against a corrupted cyclic chain.
	for depth := 0; nextID != nil && depth < 64; depth++ {
		folder, err := r.GetByID(ctx, *nextID)
		if err != nil {
			return nil, err
		}
		path = append(path, *folder)
		nextID = folder.ParentID
	}
	if nextID != nil {
		return nil, models.NewInternalError(errors.New("folder parent chain exceeds maximum depth"))
	}
	return path, nil
}

func (r *folderRepository) UpdateParent(ctx context.Context, folderID uint, parentID *uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Folder{}).
		Where("id = ?", folderID).
		Update("parent_id", parentID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
