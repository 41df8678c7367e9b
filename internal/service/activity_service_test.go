package service

import (
	"context"
	"errors"
	"testing"

	"vaultroom/internal/models"
	"vaultroom/internal/repository"
)

func TestRecordSwallowsAppendFailure(t *testing.T) {
	repo := &activityRepoStub{failFn: func() error { return errors.New("disk full") }}
	svc := NewActivityService(repo, &roomRepoStub{}, defaultEvaluator(noGrants(), flatFolders()))

	// Must not panic or surface the error in any way.
	svc.Record(context.Background(), 7, models.ActivityActionView, "data_room", uintPtr(1), "viewed room")

	if len(repo.all()) != 0 {
		t.Fatal("failed append still stored a record")
	}
}

func TestRecordAppendsEntry(t *testing.T) {
	repo := &activityRepoStub{}
	svc := NewActivityService(repo, &roomRepoStub{}, defaultEvaluator(noGrants(), flatFolders()))

	svc.Record(context.Background(), 7, models.ActivityActionUpload, "document", uintPtr(1), "uploaded prospectus.pdf")

	records := repo.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Action != models.ActivityActionUpload || records[0].ActorID != 7 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestRecentForRoomHidesExistenceFromStrangers(t *testing.T) {
	room := &models.DataRoom{ID: 1, OwnerID: 7}
	svc := NewActivityService(&activityRepoStub{}, fixedRoom(room), defaultEvaluator(noGrants(), flatFolders()))

	_, err := svc.RecentForRoom(context.Background(), 3, 1, 20, nil)

	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRecentForRoomFiltersByRoom(t *testing.T) {
	room := &models.DataRoom{ID: 1, OwnerID: 7}
	var captured repository.ActivityFilter
	repo := &activityRepoStub{
		queryFn: func(_ context.Context, filter repository.ActivityFilter) ([]models.ActivityRecord, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewActivityService(repo, fixedRoom(room), defaultEvaluator(noGrants(), flatFolders()))

	if _, err := svc.RecentForRoom(context.Background(), 7, 1, 50, uintPtr(900)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.DataRoomID == nil || *captured.DataRoomID != 1 {
		t.Fatalf("room filter lost: %+v", captured)
	}
	if captured.Limit != 50 || captured.BeforeID == nil || *captured.BeforeID != 900 {
		t.Fatalf("pagination lost: %+v", captured)
	}
}

func TestRecentForActorScopesToCaller(t *testing.T) {
	var captured repository.ActivityFilter
	repo := &activityRepoStub{
		queryFn: func(_ context.Context, filter repository.ActivityFilter) ([]models.ActivityRecord, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewActivityService(repo, &roomRepoStub{}, defaultEvaluator(noGrants(), flatFolders()))

	if _, err := svc.RecentForActor(context.Background(), 9, 20, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.ActorID == nil || *captured.ActorID != 9 {
		t.Fatalf("actor filter lost: %+v", captured)
	}
}
