package server

import (
	"warbler/internal/models"
	"warbler/internal/service"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
)

// formPage is rendered by the signup and login pages.
type formPage struct {
	Form    string          `json:"form"`
	Flashes []session.Flash `json:"flashes"`
}

type signupRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	ImageURL string `json:"image_url" form:"image_url"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SignupForm handles GET /signup
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return c.JSON(formPage{Form: "signup", Flashes: s.sessions.TakeFlashes(c)})
}

// Signup handles POST /signup
// @Summary Sign up
// @Description Create an account and sign it in
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Param request body signupRequest true "Signup request"
// @Success 302 "Redirect to /"
// @Failure 302 "Redirect to /signup with a flash on invalid or taken credentials"
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok &&
			(appErr.Code == models.CodeValidation || appErr.Code == models.CodeConflict) {
			s.sessions.AddFlash(c, session.FlashDanger, appErr.Message)
			return c.Redirect("/signup", fiber.StatusFound)
		}
		return s.respond(c, err)
	}

	if err := s.sessions.Bind(c, user.ID); err != nil {
		return s.respond(c, err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginForm handles GET /login
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(formPage{Form: "login", Flashes: s.sessions.TakeFlashes(c)})
}

// Login handles POST /login
// @Summary Log in
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Param request body loginRequest true "Credentials"
// @Success 302 "Redirect to / with a greeting flash"
// @Failure 302 "Redirect to /login with \"Invalid credentials.\""
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respond(c, err)
	}
	if user == nil {
		s.sessions.AddFlash(c, session.FlashDanger, "Invalid credentials.")
		return c.Redirect("/login", fiber.StatusFound)
	}

	if err := s.sessions.Bind(c, user.ID); err != nil {
		return s.respond(c, err)
	}
	s.sessions.AddFlash(c, session.FlashSuccess, "Hello, "+user.Username+"!")
	return c.Redirect("/", fiber.StatusFound)
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Clear(c)
	s.sessions.AddFlash(c, session.FlashSuccess, "You have successfully logged out.")
	return c.Redirect("/login", fiber.StatusFound)
}
