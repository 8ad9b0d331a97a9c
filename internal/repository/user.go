package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// ProfileUpdate carries the editable profile columns.
type ProfileUpdate struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID reads through the user cache. The cached copy never carries the
// password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		defer observability.TrackQuery("get_by_id", "users")()
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateProfile writes only the profile columns so a stale or cached struct
// can never clobber the password hash.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).
		Select("username", "email", "image_url", "header_image_url", "bio", "location", "updated_at").
		Updates(models.User{
			Username:       update.Username,
			Email:          update.Email,
			ImageURL:       update.ImageURL,
			HeaderImageURL: update.HeaderImageURL,
			Bio:            update.Bio,
			Location:       update.Location,
			UpdatedAt:      time.Now(),
		})
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return nil, models.NewConflictError("Username or email already taken", res.Error)
		}
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}

	cache.InvalidateUser(ctx, id)
	return r.GetByID(ctx, id)
}

// Search lists users ordered by username. A non-empty query filters by a
// case-insensitive username substring.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Order("username ASC").Limit(limit)
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(`LOWER(username) LIKE ? ESCAPE '\'`, likePattern(query))
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
