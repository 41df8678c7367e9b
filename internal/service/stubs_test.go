package service

import (
	"context"
	"sync"
	"time"

	"vaultroom/internal/access"
	"vaultroom/internal/lifecycle"
	"vaultroom/internal/models"
	"vaultroom/internal/repository"
)

type roomRepoStub struct {
	createFn            func(context.Context, *models.DataRoom) error
	getByIDFn           func(context.Context, uint) (*models.DataRoom, error)
	listForUserFn       func(context.Context, uint) ([]models.DataRoom, error)
	updateExpiresAtFn   func(context.Context, uint, *time.Time) error
	archiveFn           func(context.Context, uint, *uint, time.Time) error
	unarchiveFn         func(context.Context, uint) error
	listExpiredBeforeFn func(context.Context, time.Time) ([]models.DataRoom, error)
}

func (s *roomRepoStub) Create(ctx context.Context, room *models.DataRoom) error {
	return s.createFn(ctx, room)
}
func (s *roomRepoStub) GetByID(ctx context.Context, id uint) (*models.DataRoom, error) {
	return s.getByIDFn(ctx, id)
}
func (s *roomRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.DataRoom, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *roomRepoStub) UpdateExpiresAt(ctx context.Context, roomID uint, expiresAt *time.Time) error {
	return s.updateExpiresAtFn(ctx, roomID, expiresAt)
}
func (s *roomRepoStub) Archive(ctx context.Context, roomID uint, archivedBy *uint, at time.Time) error {
	return s.archiveFn(ctx, roomID, archivedBy, at)
}
func (s *roomRepoStub) Unarchive(ctx context.Context, roomID uint) error {
	return s.unarchiveFn(ctx, roomID)
}
func (s *roomRepoStub) ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.DataRoom, error) {
	return s.listExpiredBeforeFn(ctx, cutoff)
}

type folderRepoStub struct {
	createFn       func(context.Context, *models.Folder) error
	getByIDFn      func(context.Context, uint) (*models.Folder, error)
	listByRoomFn   func(context.Context, uint) ([]models.Folder, error)
	pathToRootFn   func(context.Context, uint) ([]models.Folder, error)
	updateParentFn func(context.Context, uint, *uint) error
}

func (s *folderRepoStub) Create(ctx context.Context, folder *models.Folder) error {
	return s.createFn(ctx, folder)
}
func (s *folderRepoStub) GetByID(ctx context.Context, id uint) (*models.Folder, error) {
	return s.getByIDFn(ctx, id)
}
func (s *folderRepoStub) ListByRoom(ctx context.Context, roomID uint) ([]models.Folder, error) {
	return s.listByRoomFn(ctx, roomID)
}
func (s *folderRepoStub) PathToRoot(ctx context.Context, folderID uint) ([]models.Folder, error) {
	return s.pathToRootFn(ctx, folderID)
}
func (s *folderRepoStub) UpdateParent(ctx context.Context, folderID uint, parentID *uint) error {
	return s.updateParentFn(ctx, folderID, parentID)
}

type grantRepoStub struct {
	listForUserFn func(context.Context, uint, uint) ([]models.Grant, error)
	listByRoomFn  func(context.Context, uint) ([]models.Grant, error)
	getByIDFn     func(context.Context, uint) (*models.Grant, error)
	upsertUnionFn func(context.Context, uint, uint, *uint, models.CapabilitySet, uint) (*models.Grant, error)
	deleteFn      func(context.Context, uint) error
}

func (s *grantRepoStub) ListForUser(ctx context.Context, roomID, userID uint) ([]models.Grant, error) {
	return s.listForUserFn(ctx, roomID, userID)
}
func (s *grantRepoStub) ListByRoom(ctx context.Context, roomID uint) ([]models.Grant, error) {
	return s.listByRoomFn(ctx, roomID)
}
func (s *grantRepoStub) GetByID(ctx context.Context, id uint) (*models.Grant, error) {
	return s.getByIDFn(ctx, id)
}
func (s *grantRepoStub) UpsertUnion(ctx context.Context, roomID, userID uint, folderID *uint, caps models.CapabilitySet, grantedBy uint) (*models.Grant, error) {
	return s.upsertUnionFn(ctx, roomID, userID, folderID, caps, grantedBy)
}
func (s *grantRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

type requestRepoStub struct {
	createFn          func(context.Context, *models.AccessRequest) error
	getByIDFn         func(context.Context, uint) (*models.AccessRequest, error)
	hasPendingFn      func(context.Context, uint, uint, *uint) (bool, error)
	listByRequesterFn func(context.Context, uint) ([]models.AccessRequest, error)
	listByRoomFn      func(context.Context, uint, models.AccessRequestStatus) ([]models.AccessRequest, error)
	resolveFn         func(context.Context, uint, models.AccessRequestStatus, uint, string, time.Time) (bool, error)
}

func (s *requestRepoStub) Create(ctx context.Context, request *models.AccessRequest) error {
	return s.createFn(ctx, request)
}
func (s *requestRepoStub) GetByID(ctx context.Context, id uint) (*models.AccessRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *requestRepoStub) HasPending(ctx context.Context, requesterID, roomID uint, folderID *uint) (bool, error) {
	return s.hasPendingFn(ctx, requesterID, roomID, folderID)
}
func (s *requestRepoStub) ListByRequester(ctx context.Context, requesterID uint) ([]models.AccessRequest, error) {
	return s.listByRequesterFn(ctx, requesterID)
}
func (s *requestRepoStub) ListByRoom(ctx context.Context, roomID uint, status models.AccessRequestStatus) ([]models.AccessRequest, error) {
	return s.listByRoomFn(ctx, roomID, status)
}
func (s *requestRepoStub) Resolve(ctx context.Context, id uint, to models.AccessRequestStatus, resolvedBy uint, note string, at time.Time) (bool, error) {
	return s.resolveFn(ctx, id, to, resolvedBy, note, at)
}

type activityRepoStub struct {
	mu      sync.Mutex
	records []models.ActivityRecord
	failFn  func() error
	queryFn func(context.Context, repository.ActivityFilter) ([]models.ActivityRecord, error)
}

func (s *activityRepoStub) Query(ctx context.Context, filter repository.ActivityFilter) ([]models.ActivityRecord, error) {
	if s.queryFn != nil {
		return s.queryFn(ctx, filter)
	}
	return s.all(), nil
}

func (s *activityRepoStub) Append(_ context.Context, record *models.ActivityRecord) error {
	if s.failFn != nil {
		if err := s.failFn(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = uint(len(s.records) + 1)
	s.records = append(s.records, *record)
	return nil
}

func (s *activityRepoStub) all() []models.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActivityRecord, len(s.records))
	copy(out, s.records)
	return out
}

type recorderStub struct {
	mu      sync.Mutex
	actions []models.ActivityAction
}

func (s *recorderStub) Record(_ context.Context, _ uint, action models.ActivityAction, _ string, _ *uint, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

func (s *recorderStub) recorded() []models.ActivityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActivityAction, len(s.actions))
	copy(out, s.actions)
	return out
}

type notifierStub struct {
	mu       sync.Mutex
	payloads []string
	err      error
}

func (s *notifierStub) PublishUser(_ context.Context, _ uint, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return s.err
}

func (s *notifierStub) published() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.payloads))
	copy(out, s.payloads)
	return out
}

// memRequestStore backs requestRepoStub with a mutex-guarded request so
// concurrency tests get real compare-and-set semantics.
type memRequestStore struct {
	mu      sync.Mutex
	request models.AccessRequest
}

func (m *memRequestStore) get(uint) (*models.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.request
	return &snapshot, nil
}

func (m *memRequestStore) resolve(_ context.Context, _ uint, to models.AccessRequestStatus, resolvedBy uint, note string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.request.Status != models.AccessRequestStatusPending {
		return false, nil
	}
	m.request.Status = to
	m.request.ResolvedByUserID = &resolvedBy
	m.request.ResolutionNote = note
	m.request.ResolvedAt = &at
	return true, nil
}

func noGrants() *grantRepoStub {
	return &grantRepoStub{
		listForUserFn: func(context.Context, uint, uint) ([]models.Grant, error) { return nil, nil },
		upsertUnionFn: func(_ context.Context, roomID, userID uint, folderID *uint, caps models.CapabilitySet, grantedBy uint) (*models.Grant, error) {
			return &models.Grant{
				DataRoomID:      roomID,
				UserID:          userID,
				FolderID:        folderID,
				Capabilities:    caps,
				GrantedByUserID: grantedBy,
			}, nil
		},
	}
}

func flatFolders() *folderRepoStub {
	return &folderRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Folder, error) {
			return &models.Folder{ID: id, DataRoomID: 1}, nil
		},
		pathToRootFn: func(_ context.Context, id uint) ([]models.Folder, error) {
			return []models.Folder{{ID: id, DataRoomID: 1}}, nil
		},
	}
}

func fixedRoom(room *models.DataRoom) *roomRepoStub {
	return &roomRepoStub{
		getByIDFn: func(context.Context, uint) (*models.DataRoom, error) { return room, nil },
	}
}

func defaultEvaluator(grants *grantRepoStub, folders *folderRepoStub) *access.Evaluator {
	return access.NewEvaluator(grants, folders)
}

func defaultLifecycle() *lifecycle.Evaluator {
	return lifecycle.NewEvaluator(lifecycle.DefaultExpiringWindowDays)
}

func uintPtr(v uint) *uint { return &v }
