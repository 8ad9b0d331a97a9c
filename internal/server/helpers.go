package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respond renders a service error. A policy denial becomes the
// "Access unauthorized." flash and a redirect home; every other AppError maps
// to its status code.
func (s *Server) respond(c *fiber.Ctx, err error) error {
	appErr, ok := models.AsAppError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(models.ErrorResponse{Error: "Request timeout"})
		}
		appErr = models.NewInternalError(err)
	}

	switch appErr.Code {
	case models.CodeUnauthorized:
		s.sessions.AddFlash(c, session.FlashDanger, policy.UnauthorizedMessage)
		return c.Redirect("/", fiber.StatusFound)
	case models.CodeNotFound:
		return models.RespondWithError(c, fiber.StatusNotFound, appErr)
	case models.CodeValidation:
		return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
	case models.CodeConflict:
		return models.RespondWithError(c, fiber.StatusConflict, appErr)
	default:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", slog.String("error", err.Error()))
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	}
}

// requireUser rejects anonymous callers before the handler parses ids or
// bodies, so a denial always renders as the unauthorized flash-redirect.
func (s *Server) requireUser(action policy.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := policy.RequireUser(c.UserContext(), session.Current(c), action); err != nil {
			return s.respond(c, err)
		}
		return c.Next()
	}
}

// redirectToUser sends the current user to one of their own pages.
func (s *Server) redirectToUser(c *fiber.Ctx, suffix string) error {
	userID, _ := session.Current(c).UserID()
	return c.Redirect(fmt.Sprintf("/users/%d%s", userID, suffix), fiber.StatusFound)
}

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

func likedIDs(msgs []models.Message) []uint {
	ids := make([]uint, 0)
	for _, m := range msgs {
		if m.Liked {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
