package service

import (
	"context"
	"errors"
	"testing"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateProfileFn func(context.Context, uint, repository.ProfileUpdate) (*models.User, error)
	searchFn        func(context.Context, string, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, update repository.ProfileUpdate) (*models.User, error) {
	return s.updateProfileFn(ctx, id, update)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateProfileFn: func(_ context.Context, id uint, _ repository.ProfileUpdate) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		searchFn: func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn          func(context.Context, *models.Message) error
	getByIDFn         func(context.Context, uint) (*models.Message, error)
	listByUserFn      func(context.Context, uint, int) ([]models.Message, error)
	listByUsersFn     func(context.Context, []uint, int) ([]models.Message, error)
	countByUserFn     func(context.Context, uint) (int64, error)
	deleteWithLikesFn func(context.Context, uint) error
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	return s.listByUserFn(ctx, userID, limit)
}
func (s *messageRepoStub) ListByUsers(ctx context.Context, userIDs []uint, limit int) ([]models.Message, error) {
	return s.listByUsersFn(ctx, userIDs, limit)
}
func (s *messageRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *messageRepoStub) DeleteWithLikes(ctx context.Context, id uint) error {
	return s.deleteWithLikesFn(ctx, id)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:          func(_ context.Context, _ *models.Message) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Message, error) { return &models.Message{ID: id}, nil },
		listByUserFn:      func(_ context.Context, _ uint, _ int) ([]models.Message, error) { return nil, nil },
		listByUsersFn:     func(_ context.Context, _ []uint, _ int) ([]models.Message, error) { return nil, nil },
		countByUserFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteWithLikesFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn       func(context.Context, uint, uint) error
	deleteFn       func(context.Context, uint, uint) (bool, error)
	existsFn       func(context.Context, uint, uint) (bool, error)
	followersFn    func(context.Context, uint) ([]models.User, error)
	followingFn    func(context.Context, uint) ([]models.User, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	followerIDsFn  func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followeeID uint) error {
	return s.createFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID)
}

// memoryFollows returns a follow stub backed by an in-memory edge set.
func memoryFollows() *followRepoStub {
	edges := map[[2]uint]bool{}
	return &followRepoStub{
		createFn: func(_ context.Context, a, b uint) error {
			if edges[[2]uint{a, b}] {
				return models.NewConflictError("Already following this user", errors.New("duplicate key"))
			}
			edges[[2]uint{a, b}] = true
			return nil
		},
		deleteFn: func(_ context.Context, a, b uint) (bool, error) {
			existed := edges[[2]uint{a, b}]
			delete(edges, [2]uint{a, b})
			return existed, nil
		},
		existsFn: func(_ context.Context, a, b uint) (bool, error) {
			return edges[[2]uint{a, b}], nil
		},
		followersFn: func(_ context.Context, _ uint) ([]models.User, error) { return nil, nil },
		followingFn: func(_ context.Context, _ uint) ([]models.User, error) { return nil, nil },
		followingIDsFn: func(_ context.Context, id uint) ([]uint, error) {
			var out []uint
			for e := range edges {
				if e[0] == id {
					out = append(out, e[1])
				}
			}
			return out, nil
		},
		followerIDsFn: func(_ context.Context, id uint) ([]uint, error) {
			var out []uint
			for e := range edges {
				if e[1] == id {
					out = append(out, e[0])
				}
			}
			return out, nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn          func(context.Context, uint, uint) (bool, error)
	likedMessageIDsFn func(context.Context, uint) ([]uint, error)
	likedMessagesFn   func(context.Context, uint) ([]models.Message, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.toggleFn(ctx, userID, messageID)
}
func (s *likeRepoStub) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.likedMessageIDsFn(ctx, userID)
}
func (s *likeRepoStub) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.likedMessagesFn(ctx, userID)
}

// memoryLikes returns a like stub backed by an in-memory edge set.
func memoryLikes() *likeRepoStub {
	edges := map[[2]uint]bool{}
	return &likeRepoStub{
		toggleFn: func(_ context.Context, u, m uint) (bool, error) {
			key := [2]uint{u, m}
			if edges[key] {
				delete(edges, key)
				return false, nil
			}
			edges[key] = true
			return true, nil
		},
		likedMessageIDsFn: func(_ context.Context, u uint) ([]uint, error) {
			var out []uint
			for e := range edges {
				if e[0] == u {
					out = append(out, e[1])
				}
			}
			return out, nil
		},
		likedMessagesFn: func(_ context.Context, u uint) ([]models.Message, error) {
			var out []models.Message
			for e := range edges {
				if e[0] == u {
					out = append(out, models.Message{ID: e[1]})
				}
			}
			return out, nil
		},
	}
}

// publisherStub records published messages.
type publisherStub struct {
	published  []*models.Message
	recipients [][]uint
	err        error
}

func (p *publisherStub) PublishMessage(_ context.Context, msg *models.Message, recipientIDs []uint) error {
	p.published = append(p.published, msg)
	p.recipients = append(p.recipients, recipientIDs)
	return p.err
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := models.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeUnauthorized)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeNotFound)
}
