package server

import (
	"warbler/internal/models"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

type messageRequest struct {
	Text string `json:"text" form:"text"`
}

// CreateMessage handles POST /messages/new
// @Summary Post a message
// @Tags messages
// @Accept x-www-form-urlencoded,json
// @Param request body messageRequest true "Message text, at most 140 characters"
// @Success 302 "Redirect to the author's profile"
// @Failure 302 "Redirect to / with \"Access unauthorized.\" when signed out"
// @Failure 400 {object} models.ErrorResponse
// @Router /messages/new [post]
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if _, err := s.messages.Create(c.UserContext(), session.Current(c), req.Text); err != nil {
		return s.respond(c, err)
	}
	return s.redirectToUser(c, "")
}

// ShowMessage handles GET /messages/:id
// @Summary Show a message
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} models.Message
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id} [get]
func (s *Server) ShowMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	msg, err := s.messages.Get(c.UserContext(), session.Current(c), id)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage handles POST /messages/:id/delete
// @Summary Delete an owned message
// @Tags messages
// @Param id path int true "Message ID"
// @Success 302 "Redirect to the author's profile"
// @Failure 302 "Redirect to / with \"Access unauthorized.\" for anyone but the author"
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/{id}/delete [post]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messages.Delete(c.UserContext(), session.Current(c), id); err != nil {
		return s.respond(c, err)
	}
	return s.redirectToUser(c, "")
}
