package server

import (
	"errors"
	"strings"

	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

const profileMessageLimit = 100

type userPage struct {
	User      *models.User      `json:"user"`
	Stats     service.UserStats `json:"stats"`
	Messages  []models.Message  `json:"messages"`
	Following bool              `json:"following"`
}

type userListPage struct {
	User  models.UserSummary   `json:"user"`
	Users []models.UserSummary `json:"users"`
}

type likesPage struct {
	User     models.UserSummary `json:"user"`
	Messages []models.Message   `json:"messages"`
}

type profileRequest struct {
	Username       string `json:"username" form:"username"`
	Email          string `json:"email" form:"email"`
	ImageURL       string `json:"image_url" form:"image_url"`
	HeaderImageURL string `json:"header_image_url" form:"header_image_url"`
	Bio            string `json:"bio" form:"bio"`
	Location       string `json:"location" form:"location"`
	Password       string `json:"password" form:"password"`
}

// ListUsers handles GET /users?q=
// @Summary List users
// @Description Lists users, filtered by a case-insensitive username substring
// @Tags users
// @Produce json
// @Param q query string false "Username search"
// @Success 200 {array} models.UserSummary
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.identity.ListUsers(c.UserContext(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(summaries(users))
}

// ShowUser handles GET /users/:id
// @Summary User profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} userPage
// @Failure 302 "Redirect to / when signed out"
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) ShowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	current := session.Current(c)

	user, err := s.identity.GetUser(ctx, current, id)
	if err != nil {
		return s.respond(c, err)
	}
	msgs, err := s.messages.UserMessages(ctx, current, id, profileMessageLimit)
	if err != nil {
		return s.respond(c, err)
	}
	stats, err := s.graph.Stats(ctx, id)
	if err != nil {
		return s.respond(c, err)
	}
	viewer, _ := current.UserID()
	following, err := s.graph.IsFollowing(ctx, viewer, id)
	if err != nil {
		return s.respond(c, err)
	}

	return c.JSON(userPage{User: user, Stats: stats, Messages: msgs, Following: following})
}

// ShowFollowing handles GET /users/:id/following
func (s *Server) ShowFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.graph.FollowingOf(c.UserContext(), session.Current(c), id)
	if err != nil {
		return s.respond(c, err)
	}
	return s.renderUserList(c, id, users)
}

// ShowFollowers handles GET /users/:id/followers
func (s *Server) ShowFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.graph.FollowersOf(c.UserContext(), session.Current(c), id)
	if err != nil {
		return s.respond(c, err)
	}
	return s.renderUserList(c, id, users)
}

func (s *Server) renderUserList(c *fiber.Ctx, ownerID uint, users []models.User) error {
	owner, err := s.userRepo.GetByID(c.UserContext(), ownerID)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(userListPage{User: owner.Summary(), Users: summaries(users)})
}

// ShowLikes handles GET /users/:id/likes
func (s *Server) ShowLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	msgs, err := s.graph.LikesOf(c.UserContext(), session.Current(c), id)
	if err != nil {
		return s.respond(c, err)
	}
	owner, err := s.userRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(likesPage{User: owner.Summary(), Messages: msgs})
}

// FollowUser handles POST /users/follow/:id
// @Summary Follow a user
// @Tags users
// @Param id path int true "User to follow"
// @Success 302 "Redirect to the caller's following page"
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/follow/{id} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.graph.Follow(c.UserContext(), session.Current(c), id); err != nil {
		return s.respond(c, err)
	}
	return s.redirectToUser(c, "/following")
}

// StopFollowing handles POST /users/stop-following/:id
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.graph.Unfollow(c.UserContext(), session.Current(c), id); err != nil {
		return s.respond(c, err)
	}
	return s.redirectToUser(c, "/following")
}

// ToggleLike handles POST /users/add_like/:id
// @Summary Like or unlike a message
// @Tags messages
// @Param id path int true "Message ID"
// @Success 302 "Redirect to the caller's likes page"
// @Failure 404 {object} models.ErrorResponse
// @Router /users/add_like/{id} [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.graph.ToggleLike(c.UserContext(), session.Current(c), id); err != nil {
		return s.respond(c, err)
	}
	return s.redirectToUser(c, "/likes")
}

// UpdateProfile handles POST /users/profile
// @Summary Edit the caller's profile
// @Description Requires the current password
// @Tags users
// @Accept x-www-form-urlencoded,json
// @Param request body profileRequest true "Profile fields and current password"
// @Success 302 "Redirect to the caller's profile"
// @Failure 409 {object} models.ErrorResponse
// @Router /users/profile [post]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	current := session.Current(c)
	userID, _ := current.UserID()
	_, err := s.identity.UpdateProfile(c.UserContext(), current, userID, service.ProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Bio:            req.Bio,
		Location:       req.Location,
		Password:       req.Password,
	})
	if errors.Is(err, service.ErrWrongPassword) {
		s.sessions.AddFlash(c, session.FlashDanger, "Wrong password, please try again.")
		return c.Redirect("/", fiber.StatusFound)
	}
	if err != nil {
		return s.respond(c, err)
	}

	s.sessions.AddFlash(c, session.FlashSuccess, "Profile updated.")
	return s.redirectToUser(c, "")
}
