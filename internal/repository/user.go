// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"vaultroom/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for principal lookups. Users are
// owned by the external identity subsystem; this service only reads
// them to confirm a token's subject still exists.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}
