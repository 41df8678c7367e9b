package service

import (
	"context"
	"log/slog"

	"vaultroom/internal/access"
	"vaultroom/internal/models"
	"vaultroom/internal/repository"
)

// Recorder is the subset of ActivityService the other services depend
// on. Recording has no error return because it must never fail the
// operation being audited.
type Recorder interface {
	Record(ctx context.Context, actorID uint, action models.ActivityAction, resourceKind string, roomID *uint, description string)
}

// Notifier is the subset of notifications.Notifier the services use.
type Notifier interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// ActivityService records and queries the append-only audit trail.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	roomRepo     repository.DataRoomRepository
	evaluator    *access.Evaluator
}

// NewActivityService returns a new ActivityService.
func NewActivityService(
	activityRepo repository.ActivityRepository,
	roomRepo repository.DataRoomRepository,
	evaluator *access.Evaluator,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		roomRepo:     roomRepo,
		evaluator:    evaluator,
	}
}

// Record appends an audit entry. Failures are logged and swallowed:
// audit writes ride along with the primary operation and must not undo
// work that already committed.
func (s *ActivityService) Record(ctx context.Context, actorID uint, action models.ActivityAction, resourceKind string, roomID *uint, description string) {
	record := &models.ActivityRecord{
		ActorID:      actorID,
		Action:       action,
		ResourceKind: resourceKind,
		DataRoomID:   roomID,
		Description:  description,
	}
	if err := s.activityRepo.Append(ctx, record); err != nil {
		slog.ErrorContext(ctx, "Failed to append activity record",
			"action", string(action),
			"actor_id", actorID,
			"error", err,
		)
	}
}

// RecentForRoom returns the room's activity, newest first. Callers must
// be able to see the room; strangers get the same NOT_FOUND a missing
// room produces.
func (s *ActivityService) RecentForRoom(ctx context.Context, userID, roomID uint, limit int, beforeID *uint) ([]models.ActivityRecord, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	visible, err := s.evaluator.CanViewRoom(ctx, userID, room)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Data room", roomID)
	}

	return s.activityRepo.Query(ctx, repository.ActivityFilter{
		DataRoomID: &roomID,
		Limit:      limit,
		BeforeID:   beforeID,
	})
}

// RecentForActor returns the caller's own activity, newest first.
func (s *ActivityService) RecentForActor(ctx context.Context, actorID uint, limit int, beforeID *uint) ([]models.ActivityRecord, error) {
	return s.activityRepo.Query(ctx, repository.ActivityFilter{
		ActorID:  &actorID,
		Limit:    limit,
		BeforeID: beforeID,
	})
}
