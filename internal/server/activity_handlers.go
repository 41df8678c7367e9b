package server

import (
	"github.com/gofiber/fiber/v2"
)

// activityPage reads the limit/before pagination query parameters.
func activityPage(c *fiber.Ctx) (int, *uint) {
	limit := c.QueryInt("limit", 0)

	var beforeID *uint
	if before := c.QueryInt("before", 0); before > 0 {
		id := uint(before)
		beforeID = &id
	}
	return limit, beforeID
}

// GetRoomActivity handles GET /api/rooms/:id/activity
func (s *Server) GetRoomActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	limit, beforeID := activityPage(c)
	records, err := s.activityService.RecentForRoom(c.Context(), userID, roomID, limit, beforeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(records)
}

// GetMyActivity handles GET /api/activity/me
func (s *Server) GetMyActivity(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	limit, beforeID := activityPage(c)
	records, err := s.activityService.RecentForActor(c.Context(), userID, limit, beforeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(records)
}
