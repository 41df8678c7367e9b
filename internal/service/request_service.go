package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vaultroom/internal/access"
	"vaultroom/internal/lifecycle"
	"vaultroom/internal/models"
	"vaultroom/internal/notifications"
	"vaultroom/internal/observability"
	"vaultroom/internal/repository"
)

// RequestService drives the access request workflow: submission by a
// requester, resolution by a room admin, and withdrawal by the
// requester. Every path out of PENDING goes through the repository's
// compare-and-set so exactly one resolution wins under concurrency.
type RequestService struct {
	requestRepo repository.AccessRequestRepository
	roomRepo    repository.DataRoomRepository
	folderRepo  repository.FolderRepository
	grantRepo   repository.GrantRepository
	evaluator   *access.Evaluator
	lifecycle   *lifecycle.Evaluator
	notifier    Notifier
	recorder    Recorder

	// expiredBlocksRequests controls whether EXPIRED (but not yet
	// archived) rooms still accept submissions.
	expiredBlocksRequests bool
	now                   func() time.Time
}

// NewRequestService returns a new RequestService.
func NewRequestService(
	requestRepo repository.AccessRequestRepository,
	roomRepo repository.DataRoomRepository,
	folderRepo repository.FolderRepository,
	grantRepo repository.GrantRepository,
	evaluator *access.Evaluator,
	lifecycleEval *lifecycle.Evaluator,
	notifier Notifier,
	recorder Recorder,
	expiredBlocksRequests bool,
) *RequestService {
	return &RequestService{
		requestRepo:           requestRepo,
		roomRepo:              roomRepo,
		folderRepo:            folderRepo,
		grantRepo:             grantRepo,
		evaluator:             evaluator,
		lifecycle:             lifecycleEval,
		notifier:              notifier,
		recorder:              recorder,
		expiredBlocksRequests: expiredBlocksRequests,
	}
}

func (s *RequestService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Submit files an access request for a room, or for a folder subtree
// within it when folderID is set.
func (s *RequestService) Submit(ctx context.Context, requesterID, roomID uint, folderID *uint, reason string) (*models.AccessRequest, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID == requesterID {
		return nil, models.NewSelfRequestError()
	}

	eval := s.lifecycle.Evaluate(room, s.clock())
	switch {
	case eval.Status == models.RoomStatusArchived:
		return nil, models.NewRoomUnavailableError(eval.Status)
	case eval.Status == models.RoomStatusExpired && s.expiredBlocksRequests:
		return nil, models.NewRoomUnavailableError(eval.Status)
	}

	if folderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.DataRoomID != roomID {
			return nil, models.NewValidationError("Folder does not belong to this room")
		}
	}

	pending, err := s.requestRepo.HasPending(ctx, requesterID, roomID, folderID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.NewDuplicateRequestError()
	}

	request := &models.AccessRequest{
		DataRoomID:  roomID,
		FolderID:    folderID,
		RequesterID: requesterID,
		Reason:      reason,
		Status:      models.AccessRequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		// Two submissions can pass the HasPending check at once; the
		// partial unique index breaks the tie.
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, models.NewDuplicateRequestError()
		}
		return nil, err
	}

	observability.AccessRequestsSubmitted.Inc()
	s.recorder.Record(ctx, requesterID, models.ActivityActionRequest, "access_request", &roomID,
		fmt.Sprintf("requested access to room %q", room.Name))
	s.publish(ctx, room.OwnerID, notifications.EventRequestSubmitted, request)

	return s.requestRepo.GetByID(ctx, request.ID)
}

// Approve resolves a PENDING request in the requester's favor and issues
// the grant. Requires ADMIN on the room. An empty capability set grants
// VIEW; an explicit set always includes VIEW since a grant without it is
// unusable.
func (s *RequestService) Approve(ctx context.Context, adminID, requestID uint, caps models.CapabilitySet, note string) (*models.Grant, error) {
	span, ctx := observability.NewSpan(ctx, "request.approve")
	defer span.End()

	request, room, err := s.loadForResolution(ctx, adminID, requestID)
	if err != nil {
		return nil, err
	}

	if len(caps) == 0 {
		caps = models.NewCapabilitySet(models.CapabilityView)
	} else {
		for _, capability := range caps {
			if !models.ValidCapability(capability) {
				return nil, models.NewValidationError(fmt.Sprintf("Unknown capability %q", capability))
			}
		}
		caps = caps.Union(models.NewCapabilitySet(models.CapabilityView))
	}

	won, err := s.requestRepo.Resolve(ctx, requestID, models.AccessRequestStatusApproved, adminID, note, s.clock())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.alreadyResolved(ctx, requestID)
	}

	observability.AccessRequestTransitions.WithLabelValues(string(models.AccessRequestStatusApproved)).Inc()

	// The CAS above is the linearization point. The grant write after it
	// is an idempotent union, so a retry after a crash converges to the
	// same state.
	grant, err := s.grantRepo.UpsertUnion(ctx, room.ID, request.RequesterID, request.FolderID, caps, adminID)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, adminID, models.ActivityActionResolve, "access_request", &room.ID,
		fmt.Sprintf("approved access request %d", requestID))
	s.recorder.Record(ctx, adminID, models.ActivityActionInvite, "grant", &room.ID,
		fmt.Sprintf("granted %v to user %d", caps, request.RequesterID))
	s.publish(ctx, request.RequesterID, notifications.EventRequestApproved, request)

	return grant, nil
}

// Deny resolves a PENDING request against the requester. Requires ADMIN
// on the room.
func (s *RequestService) Deny(ctx context.Context, adminID, requestID uint, note string) (*models.AccessRequest, error) {
	request, room, err := s.loadForResolution(ctx, adminID, requestID)
	if err != nil {
		return nil, err
	}

	won, err := s.requestRepo.Resolve(ctx, requestID, models.AccessRequestStatusDenied, adminID, note, s.clock())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.alreadyResolved(ctx, requestID)
	}

	observability.AccessRequestTransitions.WithLabelValues(string(models.AccessRequestStatusDenied)).Inc()
	s.recorder.Record(ctx, adminID, models.ActivityActionResolve, "access_request", &room.ID,
		fmt.Sprintf("denied access request %d", requestID))
	s.publish(ctx, request.RequesterID, notifications.EventRequestDenied, request)

	return s.requestRepo.GetByID(ctx, requestID)
}

// Withdraw retracts the caller's own PENDING request.
func (s *RequestService) Withdraw(ctx context.Context, requesterID, requestID uint) (*models.AccessRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != requesterID {
		return nil, models.NewForbiddenError("You can only withdraw your own access requests")
	}

	won, err := s.requestRepo.Resolve(ctx, requestID, models.AccessRequestStatusWithdrawn, requesterID, "", s.clock())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.alreadyResolved(ctx, requestID)
	}

	observability.AccessRequestTransitions.WithLabelValues(string(models.AccessRequestStatusWithdrawn)).Inc()
	s.recorder.Record(ctx, requesterID, models.ActivityActionResolve, "access_request", &request.DataRoomID,
		fmt.Sprintf("withdrew access request %d", requestID))

	return s.requestRepo.GetByID(ctx, requestID)
}

// ListMine returns the caller's requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, requesterID uint) ([]models.AccessRequest, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID)
}

// ListPendingForRoom returns the room's PENDING requests for review.
// Requires ADMIN on the room. Callers who cannot see the room at all get
// the same NOT_FOUND a missing room produces.
func (s *RequestService) ListPendingForRoom(ctx context.Context, adminID, roomID uint) ([]models.AccessRequest, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	visible, err := s.evaluator.CanViewRoom(ctx, adminID, room)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Data room", roomID)
	}
	allowed, err := s.evaluator.Can(ctx, adminID, models.CapabilityAdmin, room, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Reviewing access requests requires the admin capability")
	}
	return s.requestRepo.ListByRoom(ctx, roomID, models.AccessRequestStatusPending)
}

// loadForResolution fetches the request and its room and verifies the
// caller holds ADMIN. It also fast-fails on already-terminal requests;
// the authoritative check remains the CAS in Resolve.
func (s *RequestService) loadForResolution(ctx context.Context, adminID, requestID uint) (*models.AccessRequest, *models.DataRoom, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, request.DataRoomID)
	if err != nil {
		return nil, nil, err
	}

	allowed, err := s.evaluator.Can(ctx, adminID, models.CapabilityAdmin, room, nil)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, models.NewForbiddenError("Resolving access requests requires the admin capability")
	}

	if request.Status.Terminal() {
		return nil, nil, models.NewAlreadyResolvedError(request.Status)
	}
	return request, room, nil
}

// alreadyResolved re-reads the request to report which terminal state
// won the race.
func (s *RequestService) alreadyResolved(ctx context.Context, requestID uint) error {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	return models.NewAlreadyResolvedError(current.Status)
}

// publish sends a request event to a user channel. Delivery is best
// effort; a Redis failure is logged and never fails the workflow.
func (s *RequestService) publish(ctx context.Context, userID uint, kind string, request *models.AccessRequest) {
	payload, err := notifications.EventPayload(kind, map[string]interface{}{
		"request_id":   request.ID,
		"data_room_id": request.DataRoomID,
		"requester_id": request.RequesterID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build event payload", "kind", kind, "error", err)
		return
	}
	if err := s.notifier.PublishUser(ctx, userID, payload); err != nil {
		slog.WarnContext(ctx, "Failed to publish request event",
			"kind", kind,
			"user_id", userID,
			"error", err,
		)
	}
}
