package server

import (
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /features with the configured flag names and
// their state for the current user. Anonymous callers see partial rollouts off.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := session.Current(c).UserID()

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"flags":     []string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Names(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
