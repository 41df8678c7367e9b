package server

import (
	"fmt"

	"vaultroom/internal/models"

	"github.com/gofiber/fiber/v2"
)

// roomForGrantAdmin loads the room and verifies the caller holds ADMIN.
// Callers who cannot see the room at all get the same NOT_FOUND a missing
// room produces.
func (s *Server) roomForGrantAdmin(c *fiber.Ctx, userID, roomID uint) (*models.DataRoom, error) {
	room, err := s.roomRepo.GetByID(c.Context(), roomID)
	if err != nil {
		return nil, err
	}
	visible, err := s.evaluator.CanViewRoom(c.Context(), userID, room)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Data room", roomID)
	}
	allowed, err := s.evaluator.Can(c.Context(), userID, models.CapabilityAdmin, room, nil)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError("Managing grants requires the admin capability")
	}
	return room, nil
}

// GetRoomGrants handles GET /api/rooms/:id/grants
func (s *Server) GetRoomGrants(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.roomForGrantAdmin(c, userID, roomID); err != nil {
		return respondServiceError(c, err)
	}

	grants, err := s.grantRepo.ListByRoom(c.Context(), roomID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(grants)
}

// RevokeGrant handles DELETE /api/rooms/:id/grants/:grantId
func (s *Server) RevokeGrant(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	grantID, err := s.parseID(c, "grantId")
	if err != nil {
		return nil
	}

	if _, err := s.roomForGrantAdmin(c, userID, roomID); err != nil {
		return respondServiceError(c, err)
	}

	grant, err := s.grantRepo.GetByID(c.Context(), grantID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if grant.DataRoomID != roomID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Grant", grantID))
	}

	if err := s.grantRepo.Delete(c.Context(), grantID); err != nil {
		return respondServiceError(c, err)
	}

	s.activityService.Record(c.Context(), userID, models.ActivityActionRevoke, "grant", &roomID,
		fmt.Sprintf("revoked grant %d from user %d", grantID, grant.UserID))

	return c.SendStatus(fiber.StatusNoContent)
}
