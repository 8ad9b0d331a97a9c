// Package service holds the business operations. Every operation that acts
// on behalf of a user takes the caller's policy.Identity explicitly.
package service

import (
	"context"
	"errors"
	"strings"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPassword is returned when a profile edit is not confirmed by the
// current password.
var ErrWrongPassword = errors.New("wrong password")

// IdentityService owns signup, login and profile edits.
type IdentityService struct {
	users   repository.UserRepository
	hash    func(password []byte) ([]byte, error)
	compare func(hash, password []byte) error
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// ProfileInput is a profile edit confirmed by the current password.
type ProfileInput struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
}

func NewIdentityService(users repository.UserRepository) *IdentityService {
	return &IdentityService{
		users: users,
		hash: func(pw []byte) ([]byte, error) {
			return bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
		},
		compare: bcrypt.CompareHashAndPassword,
	}
}

// Signup validates the input, hashes the password and stores the user.
// Duplicate usernames or emails surface as a CONFLICT from the store.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "IdentityService", "Signup")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	username := strings.TrimSpace(in.Username)
	if err = validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email := strings.TrimSpace(in.Email)
	if err = validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := s.hash([]byte(in.Password))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		Password:       string(hashed),
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	if err = s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))
	return user, nil
}

// Authenticate returns the user when the password verifies, and nil, nil
// for an unknown username or a wrong password.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, nil
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if err := s.compare([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// GetUser returns a user profile to a signed-in caller.
func (s *IdentityService) GetUser(ctx context.Context, current policy.Identity, id uint) (*models.User, error) {
	if err := policy.AuthorizeContext(ctx, current, policy.ViewProfile, id); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers lists users, optionally filtered by a username substring.
func (s *IdentityService) ListUsers(ctx context.Context, query string) ([]models.User, error) {
	return s.users.Search(ctx, query, 100)
}

// UpdateProfile edits targetID's profile. Only the owner may edit it, and
// only after re-entering the current password.
func (s *IdentityService) UpdateProfile(ctx context.Context, current policy.Identity, targetID uint, in ProfileInput) (*models.User, error) {
	if err := policy.AuthorizeContext(ctx, current, policy.EditProfile, targetID); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	verified, err := s.Authenticate(ctx, existing.Username, in.Password)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		return nil, ErrWrongPassword
	}

	update := repository.ProfileUpdate{
		Username:       strings.TrimSpace(in.Username),
		Email:          strings.TrimSpace(in.Email),
		ImageURL:       strings.TrimSpace(in.ImageURL),
		HeaderImageURL: strings.TrimSpace(in.HeaderImageURL),
		Bio:            in.Bio,
		Location:       in.Location,
	}
	if update.Username == "" {
		update.Username = existing.Username
	}
	if update.Email == "" {
		update.Email = existing.Email
	}
	if err := validation.ValidateUsername(update.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(update.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if update.ImageURL == "" {
		update.ImageURL = models.DefaultImageURL
	}
	if update.HeaderImageURL == "" {
		update.HeaderImageURL = models.DefaultHeaderImageURL
	}

	return s.users.UpdateProfile(ctx, targetID, update)
}
