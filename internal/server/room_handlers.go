package server

import (
	"time"

	"vaultroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRooms handles GET /api/rooms
func (s *Server) GetRooms(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	views, err := s.roomService.ListRooms(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// CreateRoom handles POST /api/rooms
func (s *Server) CreateRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name      string     `json:"name"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.roomService.CreateRoom(c.Context(), userID, req.Name, req.ExpiresAt)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetRoom handles GET /api/rooms/:id
func (s *Server) GetRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.roomService.GetRoom(c.Context(), userID, roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// ExtendRoom handles POST /api/rooms/:id/extend
func (s *Server) ExtendRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil || req.ExpiresAt == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("expires_at is required"))
	}

	view, err := s.roomService.ExtendExpiration(c.Context(), userID, roomID, *req.ExpiresAt)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// ArchiveRoom handles POST /api/rooms/:id/archive
func (s *Server) ArchiveRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.roomService.ArchiveRoom(c.Context(), userID, roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// UnarchiveRoom handles POST /api/rooms/:id/unarchive
func (s *Server) UnarchiveRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.roomService.UnarchiveRoom(c.Context(), userID, roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// GetRoomFolders handles GET /api/rooms/:id/folders
func (s *Server) GetRoomFolders(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	folders, err := s.roomService.ListFolders(c.Context(), userID, roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(folders)
}

// CreateFolder handles POST /api/rooms/:id/folders
func (s *Server) CreateFolder(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	folder, err := s.roomService.CreateFolder(c.Context(), userID, roomID, req.ParentID, req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(folder)
}

// MoveFolder handles PUT /api/rooms/:id/folders/:folderId/parent
func (s *Server) MoveFolder(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	folderID, err := s.parseID(c, "folderId")
	if err != nil {
		return nil
	}

	var req struct {
		ParentID *uint `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	folder, err := s.roomService.MoveFolder(c.Context(), userID, roomID, folderID, req.ParentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(folder)
}
