package server

import (
	"net/http"
	"testing"
	"time"

	"vaultroom/internal/models"
)

func TestCreateRoomAndVisibility(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)

	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")
	ownerToken := mintToken(t, owner.ID)
	strangerToken := mintToken(t, stranger.ID)

	expires := time.Now().UTC().Add(90 * 24 * time.Hour)
	resp := doJSON(t, app, http.MethodPost, "/api/rooms", ownerToken, map[string]interface{}{
		"name":       "Project Falcon",
		"expires_at": expires.Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Room   models.DataRoom   `json:"room"`
		Status models.RoomStatus `json:"status"`
	}
	decodeBody(t, resp, &created)
	if created.Status != models.RoomStatusActive {
		t.Fatalf("expected active room, got %s", created.Status)
	}
	if created.Room.OwnerID != owner.ID {
		t.Fatalf("expected owner %d, got %d", owner.ID, created.Room.OwnerID)
	}

	roomPath := "/api/rooms/1"
	ownerGet := doJSON(t, app, http.MethodGet, roomPath, ownerToken, nil)
	defer func() { _ = ownerGet.Body.Close() }()
	if ownerGet.StatusCode != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", ownerGet.StatusCode)
	}

	// Strangers must not be able to distinguish a hidden room from a
	// missing one.
	strangerGet := doJSON(t, app, http.MethodGet, roomPath, strangerToken, nil)
	if strangerGet.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger get: expected 404, got %d", strangerGet.StatusCode)
	}
	if code := errorCode(t, strangerGet); code != models.CodeNotFound {
		t.Fatalf("expected NOT_FOUND code, got %s", code)
	}

	var strangerRooms []struct{}
	strangerList := doJSON(t, app, http.MethodGet, "/api/rooms", strangerToken, nil)
	decodeBody(t, strangerList, &strangerRooms)
	if len(strangerRooms) != 0 {
		t.Fatalf("expected empty room list for stranger, got %d", len(strangerRooms))
	}
}

func TestCreateRoomValidatesBody(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	owner := seedUser(t, db, "owner")
	token := mintToken(t, owner.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/rooms", token, map[string]interface{}{
		"name": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != models.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR code, got %s", code)
	}
}

func TestArchiveAndUnarchiveRoomEndpoints(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	owner := seedUser(t, db, "owner")
	token := mintToken(t, owner.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/rooms", token, map[string]interface{}{"name": "Deal Room"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d", resp.StatusCode)
	}

	archived := doJSON(t, app, http.MethodPost, "/api/rooms/1/archive", token, nil)
	var view struct {
		Status models.RoomStatus `json:"status"`
	}
	decodeBody(t, archived, &view)
	if view.Status != models.RoomStatusArchived {
		t.Fatalf("expected archived status, got %s", view.Status)
	}

	// Archiving twice is a validation error, not a crash.
	again := doJSON(t, app, http.MethodPost, "/api/rooms/1/archive", token, nil)
	defer func() { _ = again.Body.Close() }()
	if again.StatusCode != http.StatusBadRequest {
		t.Fatalf("double archive: expected 400, got %d", again.StatusCode)
	}

	restored := doJSON(t, app, http.MethodPost, "/api/rooms/1/unarchive", token, nil)
	decodeBody(t, restored, &view)
	if view.Status != models.RoomStatusActive {
		t.Fatalf("expected active after unarchive, got %s", view.Status)
	}
}

func TestExtendRoomEndpoint(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	owner := seedUser(t, db, "owner")
	token := mintToken(t, owner.ID)

	expires := time.Now().UTC().Add(24 * time.Hour)
	resp := doJSON(t, app, http.MethodPost, "/api/rooms", token, map[string]interface{}{
		"name":       "Short Lived",
		"expires_at": expires.Format(time.RFC3339),
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d", resp.StatusCode)
	}

	// Moving the expiration backwards is rejected.
	earlier := time.Now().UTC().Add(time.Hour)
	rejected := doJSON(t, app, http.MethodPost, "/api/rooms/1/extend", token, map[string]interface{}{
		"expires_at": earlier.Format(time.RFC3339),
	})
	defer func() { _ = rejected.Body.Close() }()
	if rejected.StatusCode != http.StatusBadRequest {
		t.Fatalf("backwards extend: expected 400, got %d", rejected.StatusCode)
	}

	later := time.Now().UTC().Add(60 * 24 * time.Hour)
	extended := doJSON(t, app, http.MethodPost, "/api/rooms/1/extend", token, map[string]interface{}{
		"expires_at": later.Format(time.RFC3339),
	})
	var view struct {
		Status models.RoomStatus `json:"status"`
	}
	decodeBody(t, extended, &view)
	if view.Status != models.RoomStatusActive {
		t.Fatalf("expected active after extend, got %s", view.Status)
	}
}

func TestFolderEndpoints(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	owner := seedUser(t, db, "owner")
	token := mintToken(t, owner.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/rooms", token, map[string]interface{}{"name": "Diligence"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d", resp.StatusCode)
	}

	parent := doJSON(t, app, http.MethodPost, "/api/rooms/1/folders", token, map[string]interface{}{"name": "Financials"})
	var parentFolder models.Folder
	decodeBody(t, parent, &parentFolder)

	child := doJSON(t, app, http.MethodPost, "/api/rooms/1/folders", token, map[string]interface{}{
		"name":      "Q3",
		"parent_id": parentFolder.ID,
	})
	var childFolder models.Folder
	decodeBody(t, child, &childFolder)
	if childFolder.ParentID == nil || *childFolder.ParentID != parentFolder.ID {
		t.Fatalf("expected child under %d, got %v", parentFolder.ID, childFolder.ParentID)
	}

	// Reparenting the parent under its own child would create a cycle.
	cycle := doJSON(t, app, http.MethodPut,
		"/api/rooms/1/folders/1/parent", token,
		map[string]interface{}{"parent_id": childFolder.ID})
	defer func() { _ = cycle.Body.Close() }()
	if cycle.StatusCode != http.StatusBadRequest {
		t.Fatalf("cycle move: expected 400, got %d", cycle.StatusCode)
	}

	var folders []models.Folder
	list := doJSON(t, app, http.MethodGet, "/api/rooms/1/folders", token, nil)
	decodeBody(t, list, &folders)
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
}

func TestActivityEndpoints(t *testing.T) {
	t.Parallel()
	_, app, db := setupTestServer(t)
	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")
	ownerToken := mintToken(t, owner.ID)
	strangerToken := mintToken(t, stranger.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/rooms", ownerToken, map[string]interface{}{"name": "Audit Trail"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d", resp.StatusCode)
	}

	var records []models.ActivityRecord
	mine := doJSON(t, app, http.MethodGet, "/api/activity/me", ownerToken, nil)
	decodeBody(t, mine, &records)
	if len(records) == 0 {
		t.Fatal("expected at least one activity record for the owner")
	}
	if records[0].Action != models.ActivityActionCreate {
		t.Fatalf("expected create action, got %s", records[0].Action)
	}

	roomActivity := doJSON(t, app, http.MethodGet, "/api/rooms/1/activity", ownerToken, nil)
	decodeBody(t, roomActivity, &records)
	if len(records) == 0 {
		t.Fatal("expected room activity for the owner")
	}

	// Strangers get the anti-enumeration NOT_FOUND, not an empty list.
	hidden := doJSON(t, app, http.MethodGet, "/api/rooms/1/activity", strangerToken, nil)
	defer func() { _ = hidden.Body.Close() }()
	if hidden.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger activity: expected 404, got %d", hidden.StatusCode)
	}
}
