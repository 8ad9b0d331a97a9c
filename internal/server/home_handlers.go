package server

import (
	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// homePage is the landing document. Signed-in users also get their timeline.
type homePage struct {
	Flashes  []session.Flash     `json:"flashes"`
	User     *models.UserSummary `json:"user,omitempty"`
	Messages []models.Message    `json:"messages,omitempty"`
	LikedIDs []uint              `json:"liked_ids,omitempty"`
}

// Home handles GET /
// @Summary Home page
// @Description Pending flashes, plus the timeline of the signed-in user and everyone they follow
// @Tags pages
// @Produce json
// @Success 200 {object} homePage
// @Router / [get]
func (s *Server) Home(c *fiber.Ctx) error {
	page := homePage{Flashes: s.sessions.TakeFlashes(c)}

	current := session.Current(c)
	if current.IsAnonymous() {
		return c.JSON(page)
	}

	userID, _ := current.UserID()
	user, err := s.identity.GetUser(c.UserContext(), current, userID)
	if err != nil {
		return s.respond(c, err)
	}
	msgs, err := s.messages.Timeline(c.UserContext(), current, service.TimelineLimit)
	if err != nil {
		return s.respond(c, err)
	}

	summary := user.Summary()
	page.User = &summary
	page.Messages = msgs
	page.LikedIDs = likedIDs(msgs)
	return c.JSON(page)
}
