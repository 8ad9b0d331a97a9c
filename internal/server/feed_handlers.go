package server

import (
	"log/slog"

	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localFeedUser = "feedUserID"

// FeedUpgrade authorizes GET /ws/feed before the websocket handshake.
// @Summary Live feed
// @Description WebSocket stream of new_message events from followed users
// @Tags feed
// @Success 101 "Switching protocols"
// @Failure 302 "Redirect to / when signed out"
// @Failure 404 {object} models.ErrorResponse "live_feed flag off"
// @Failure 426 {object} models.ErrorResponse
// @Router /ws/feed [get]
func (s *Server) FeedUpgrade(c *fiber.Ctx) error {
	userID, err := policy.RequireUser(c.UserContext(), session.Current(c), policy.ViewFeed)
	if err != nil {
		return s.respond(c, err)
	}
	if !s.featureFlags.Enabled(featureflags.LiveFeed, userID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feature", featureflags.LiveFeed))
	}
	if s.hub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "Live feed unavailable"})
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(localFeedUser, userID)
	return c.Next()
}

// FeedSocket registers the connection with the hub and runs its pumps.
func (s *Server) FeedSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(localFeedUser).(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("feed registration refused",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
