package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"vaultroom/internal/database"
	"vaultroom/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestAccessRequestRepository_Resolve_CAS(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		rowsAffected int64
		expectedWon  bool
	}{
		{"wins when still pending", 1, true},
		{"loses when already terminal", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewAccessRequestRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "access_requests" SET`).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			mock.ExpectCommit()

			won, err := repo.Resolve(ctx, 7, models.AccessRequestStatusApproved, 1, "ok", time.Now())
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedWon, won)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccessRequestRepository_Resolve_OnlyTouchesPendingRows(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	// The WHERE clause must pin the stored status to pending; that guard
	// is what makes Resolve a compare-and-set.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "access_requests" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	won, err := repo.Resolve(ctx, 7, models.AccessRequestStatusDenied, 2, "", time.Now())
	assert.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_Create_DuplicatePending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "access_requests"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_requests_one_pending" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.AccessRequest{
		DataRoomID:  1,
		RequesterID: 2,
		Status:      models.AccessRequestStatusPending,
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "access_requests"`)).
		WillReturnError(gorm.ErrRecordNotFound)

	request, err := repo.GetByID(ctx, 99)
	assert.Nil(t, request)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessRequestRepository_PendingIndexBreaksTies(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewAccessRequestRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Username: "owner", Email: "owner@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{Username: "requester", Email: "requester@example.com"}).Error)
	require.NoError(t, db.Create(&models.DataRoom{Name: "Falcon", OwnerID: 1}).Error)

	first := &models.AccessRequest{DataRoomID: 1, RequesterID: 2, Status: models.AccessRequestStatusPending}
	require.NoError(t, repo.Create(ctx, first))

	// A second PENDING request for the same scope hits the partial index.
	second := &models.AccessRequest{DataRoomID: 1, RequesterID: 2, Status: models.AccessRequestStatusPending}
	assert.ErrorIs(t, repo.Create(ctx, second), ErrDuplicatePending)

	// Resolving the first frees the slot.
	won, err := repo.Resolve(ctx, first.ID, models.AccessRequestStatusWithdrawn, 2, "", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, won)

	third := &models.AccessRequest{DataRoomID: 1, RequesterID: 2, Status: models.AccessRequestStatusPending}
	assert.NoError(t, repo.Create(ctx, third))

	// Folder-scoped requests occupy their own slot.
	require.NoError(t, db.Create(&models.Folder{DataRoomID: 1, Name: "Financials", CreatedByUserID: 1}).Error)
	folderID := uint(1)
	scoped := &models.AccessRequest{DataRoomID: 1, FolderID: &folderID, RequesterID: 2, Status: models.AccessRequestStatusPending}
	assert.NoError(t, repo.Create(ctx, scoped))

	pending, err := repo.HasPending(ctx, 2, 1, nil)
	require.NoError(t, err)
	assert.True(t, pending)
}
