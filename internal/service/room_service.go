package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vaultroom/internal/access"
	"vaultroom/internal/lifecycle"
	"vaultroom/internal/models"
	"vaultroom/internal/observability"
	"vaultroom/internal/repository"
)

// DefaultArchiveGraceDays is how long an expired room stays readable
// before the sweep archives it.
const DefaultArchiveGraceDays = 30

// RoomView pairs a room with its effective lifecycle status at the time
// of the call.
type RoomView struct {
	Room                *models.DataRoom  `json:"room"`
	Status              models.RoomStatus `json:"status"`
	DaysUntilExpiration *int              `json:"days_until_expiration,omitempty"`
}

// RoomService provides data room and folder business logic.
type RoomService struct {
	roomRepo   repository.DataRoomRepository
	folderRepo repository.FolderRepository
	evaluator  *access.Evaluator
	lifecycle  *lifecycle.Evaluator
	recorder   Recorder

	archiveGraceDays int
	now              func() time.Time
}

// NewRoomService returns a new RoomService. A non-positive grace falls
// back to DefaultArchiveGraceDays.
func NewRoomService(
	roomRepo repository.DataRoomRepository,
	folderRepo repository.FolderRepository,
	evaluator *access.Evaluator,
	lifecycleEval *lifecycle.Evaluator,
	recorder Recorder,
	archiveGraceDays int,
) *RoomService {
	if archiveGraceDays <= 0 {
		archiveGraceDays = DefaultArchiveGraceDays
	}
	return &RoomService{
		roomRepo:         roomRepo,
		folderRepo:       folderRepo,
		evaluator:        evaluator,
		lifecycle:        lifecycleEval,
		recorder:         recorder,
		archiveGraceDays: archiveGraceDays,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *RoomService) view(room *models.DataRoom) *RoomView {
	eval := s.lifecycle.Evaluate(room, s.now())
	return &RoomView{
		Room:                room,
		Status:              eval.Status,
		DaysUntilExpiration: eval.DaysUntilExpiration,
	}
}

// CreateRoom creates a data room owned by the caller.
func (s *RoomService) CreateRoom(ctx context.Context, ownerID uint, name string, expiresAt *time.Time) (*RoomView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Room name is required")
	}
	if len(name) > 120 {
		return nil, models.NewValidationError("Room name must be 120 characters or less")
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, models.NewValidationError("Expiration must be in the future")
	}

	room := &models.DataRoom{
		Name:      name,
		OwnerID:   ownerID,
		ExpiresAt: expiresAt,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, ownerID, models.ActivityActionCreate, "data_room", &room.ID,
		fmt.Sprintf("created room %q", room.Name))
	return s.view(room), nil
}

// GetRoom returns the room with its effective status. Callers who cannot
// see the room get the same NOT_FOUND a missing room produces, so the
// endpoint does not leak which room IDs exist.
func (s *RoomService) GetRoom(ctx context.Context, userID, roomID uint) (*RoomView, error) {
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

	s.recorder.Record(ctx, userID, models.ActivityActionView, "data_room", &room.ID,
		fmt.Sprintf("viewed room %q", room.Name))
	return s.view(room), nil
}

// ListRooms returns every room the caller owns or holds a grant on.
func (s *RoomService) ListRooms(ctx context.Context, userID uint) ([]RoomView, error) {
	rooms, err := s.roomRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		views = append(views, *s.view(&rooms[i]))
	}
	return views, nil
}

// ExtendExpiration pushes the room's expiration further out. Requires
// EDIT. The new instant must be in the future and later than the current
// expiration; shortening a room's life goes through archival instead.
func (s *RoomService) ExtendExpiration(ctx context.Context, userID, roomID uint, newExpiresAt time.Time) (*RoomView, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsArchived() {
		return nil, models.NewValidationError("Archived rooms cannot be extended")
	}

	allowed, err := s.evaluator.Can(ctx, userID, models.CapabilityEdit, room, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Extending a room requires the edit capability")
	}

	if !newExpiresAt.After(s.now()) {
		return nil, models.NewValidationError("New expiration must be in the future")
	}
	if room.ExpiresAt != nil && !newExpiresAt.After(*room.ExpiresAt) {
		return nil, models.NewValidationError("New expiration must be later than the current one")
	}

	if err := s.roomRepo.UpdateExpiresAt(ctx, roomID, &newExpiresAt); err != nil {
		return nil, err
	}
	room.ExpiresAt = &newExpiresAt

	s.recorder.Record(ctx, userID, models.ActivityActionExtend, "data_room", &room.ID,
		fmt.Sprintf("extended room %q to %s", room.Name, newExpiresAt.UTC().Format(time.RFC3339)))
	return s.view(room), nil
}

// ArchiveRoom moves the room to its terminal state. Requires ADMIN.
func (s *RoomService) ArchiveRoom(ctx context.Context, userID, roomID uint) (*RoomView, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsArchived() {
		return nil, models.NewValidationError("Room is already archived")
	}

	allowed, err := s.evaluator.Can(ctx, userID, models.CapabilityAdmin, room, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Archiving a room requires the admin capability")
	}

	at := s.now()
	if err := s.roomRepo.Archive(ctx, roomID, &userID, at); err != nil {
		return nil, err
	}
	room.ArchivedAt = &at
	room.ArchivedByUserID = &userID

	observability.RoomsArchived.WithLabelValues("user").Inc()
	s.recorder.Record(ctx, userID, models.ActivityActionArchive, "data_room", &room.ID,
		fmt.Sprintf("archived room %q", room.Name))
	return s.view(room), nil
}

// UnarchiveRoom reopens an archived room. Only the owner may do this.
func (s *RoomService) UnarchiveRoom(ctx context.Context, userID, roomID uint) (*RoomView, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != userID {
		return nil, models.NewForbiddenError("Only the room owner can unarchive a room")
	}
	if !room.IsArchived() {
		return nil, models.NewValidationError("Room is not archived")
	}

	if err := s.roomRepo.Unarchive(ctx, roomID); err != nil {
		return nil, err
	}
	room.ArchivedAt = nil
	room.ArchivedByUserID = nil

	s.recorder.Record(ctx, userID, models.ActivityActionCreate, "data_room", &room.ID,
		fmt.Sprintf("unarchived room %q", room.Name))
	return s.view(room), nil
}

// ListFolders returns the room's folder tree as a flat list.
func (s *RoomService) ListFolders(ctx context.Context, userID, roomID uint) ([]models.Folder, error) {
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
	return s.folderRepo.ListByRoom(ctx, roomID)
}

// CreateFolder adds a folder to the room's tree. Requires EDIT at the
// parent scope.
func (s *RoomService) CreateFolder(ctx context.Context, userID, roomID uint, parentID *uint, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Folder name is required")
	}

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

	if parentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.DataRoomID != roomID {
			return nil, models.NewValidationError("Parent folder does not belong to this room")
		}
	}

	allowed, err := s.evaluator.Can(ctx, userID, models.CapabilityEdit, room, parentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Creating a folder requires the edit capability")
	}

	folder := &models.Folder{
		DataRoomID:      roomID,
		ParentID:        parentID,
		Name:            name,
		CreatedByUserID: userID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID, models.ActivityActionCreate, "folder", &roomID,
		fmt.Sprintf("created folder %q", folder.Name))
	return folder, nil
}

// MoveFolder reparents a folder inside the same room. Requires EDIT on
// the room. A move that would place a folder under its own subtree is
// rejected, which keeps the tree acyclic.
func (s *RoomService) MoveFolder(ctx context.Context, userID, roomID, folderID uint, newParentID *uint) (*models.Folder, error) {
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

	allowed, err := s.evaluator.Can(ctx, userID, models.CapabilityEdit, room, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Moving a folder requires the edit capability")
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.DataRoomID != roomID {
		return nil, models.NewValidationError("Folder does not belong to this room")
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return nil, models.NewValidationError("A folder cannot be its own parent")
		}
		parent, err := s.folderRepo.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		if parent.DataRoomID != roomID {
			return nil, models.NewValidationError("Parent folder does not belong to this room")
		}
		path, err := s.folderRepo.PathToRoot(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		for _, ancestor := range path {
			if ancestor.ID == folderID {
				return nil, models.NewValidationError("Move would create a folder cycle")
			}
		}
	}

	if err := s.folderRepo.UpdateParent(ctx, folderID, newParentID); err != nil {
		return nil, err
	}
	folder.ParentID = newParentID
	return folder, nil
}

// ArchiveExpired archives rooms whose expiration passed more than the
// grace window ago. It returns the number of rooms archived. Intended to
// run from the sweep job; rooms it touches get a nil archived-by so the
// audit trail distinguishes sweeps from operator action.
func (s *RoomService) ArchiveExpired(ctx context.Context) (int, error) {
	span, ctx := observability.NewSpan(ctx, "room.archive_expired")
	defer span.End()

	at := s.now()
	cutoff := at.AddDate(0, 0, -s.archiveGraceDays)

	rooms, err := s.roomRepo.ListExpiredBefore(ctx, cutoff)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	archived := 0
	for i := range rooms {
		if err := s.roomRepo.Archive(ctx, rooms[i].ID, nil, at); err != nil {
			slog.ErrorContext(ctx, "Failed to archive expired room",
				"room_id", rooms[i].ID,
				"error", err,
			)
			continue
		}
		archived++
		observability.RoomsArchived.WithLabelValues("sweep").Inc()
		slog.InfoContext(ctx, "Archived expired room",
			"room_id", rooms[i].ID,
			"expired_at", rooms[i].ExpiresAt,
		)
	}
	observability.SweepLastArchived.Set(float64(archived))
	return archived, nil
}
