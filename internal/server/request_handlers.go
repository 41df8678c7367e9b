package server

import (
	"strings"

	"vaultroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubmitAccessRequest handles POST /api/rooms/:id/requests
func (s *Server) SubmitAccessRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		FolderID *uint  `json:"folder_id"`
		Reason   string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Reason = strings.TrimSpace(req.Reason)

	request, err := s.requestService.Submit(c.Context(), userID, roomID, req.FolderID, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetRoomRequests handles GET /api/rooms/:id/requests
func (s *Server) GetRoomRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requests, err := s.requestService.ListPendingForRoom(c.Context(), userID, roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// GetMyRequests handles GET /api/requests/me
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	requests, err := s.requestService.ListMine(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(requests)
}

// ApproveRequest handles POST /api/requests/:id/approve
func (s *Server) ApproveRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Capabilities []models.Capability `json:"capabilities"`
		Note         string              `json:"note"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	grant, err := s.requestService.Approve(c.Context(), userID, requestID,
		models.CapabilitySet(req.Capabilities), strings.TrimSpace(req.Note))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(grant)
}

// DenyRequest handles POST /api/requests/:id/deny
func (s *Server) DenyRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Note string `json:"note"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	request, err := s.requestService.Deny(c.Context(), userID, requestID, strings.TrimSpace(req.Note))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}

// WithdrawRequest handles POST /api/requests/:id/withdraw
func (s *Server) WithdrawRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.requestService.Withdraw(c.Context(), userID, requestID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(request)
}
