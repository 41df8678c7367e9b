package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"vaultroom/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicatePending is returned by Create when the partial unique index
// on (requester, room, folder, status=pending) rejects the insert.
var ErrDuplicatePending = errors.New("pending access request already exists")

// AccessRequestRepository defines the interface for access request persistence.
type AccessRequestRepository interface {
	Create(ctx context.Context, request *models.AccessRequest) error
	GetByID(ctx context.Context, id uint) (*models.AccessRequest, error)
	// HasPending reports whether a PENDING request exists for the tuple.
	HasPending(ctx context.Context, requesterID, roomID uint, folderID *uint) (bool, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.AccessRequest, error)
	ListByRoom(ctx context.Context, roomID uint, status models.AccessRequestStatus) ([]models.AccessRequest, error)
	// Resolve atomically transitions the request out of PENDING. It is a
	// compare-and-set: the update applies only if the stored status is
	// still PENDING, and the boolean result reports whether this caller
	// won the transition.
	Resolve(ctx context.Context, id uint, to models.AccessRequestStatus, resolvedBy uint, note string, at time.Time) (bool, error)
}

type accessRequestRepository struct {
	db *gorm.DB
}

// NewAccessRequestRepository creates a new access request repository
func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &accessRequestRepository{db: db}
}

func (r *accessRequestRepository) Create(ctx context.Context, request *models.AccessRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePending
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueViolation detects unique-constraint failures from postgres
// (SQLSTATE 23505) and sqlite (used by tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *accessRequestRepository) GetByID(ctx context.Context, id uint) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("ResolvedByUser").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Access request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *accessRequestRepository) HasPending(ctx context.Context, requesterID, roomID uint, folderID *uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AccessRequest{}).
		Where("requester_id = ? AND data_room_id = ? AND status = ?",
			requesterID, roomID, models.AccessRequestStatusPending)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *accessRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	if err := r.db.WithContext(ctx).
		Preload("DataRoom").
		Preload("ResolvedByUser").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *accessRequestRepository) ListByRoom(ctx context.Context, roomID uint, status models.AccessRequestStatus) ([]models.AccessRequest, error) {
	var requests []models.AccessRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("data_room_id = ? AND status = ?", roomID, status).
		Order("created_at ASC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *accessRequestRepository) Resolve(ctx context.Context, id uint, to models.AccessRequestStatus, resolvedBy uint, note string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AccessRequest{}).
		Where("id = ? AND status = ?", id, models.AccessRequestStatusPending).
		Updates(map[string]interface{}{
			"status":              to,
			"resolved_by_user_id": resolvedBy,
			"resolution_note":     note,
			"resolved_at":         at,
		})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
