package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// GraphService owns follow and like edges.
type GraphService struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	messages repository.MessageRepository
}

// UserStats are the counters shown on a profile.
type UserStats struct {
	Messages  int64 `json:"messages"`
	Following int   `json:"following"`
	Followers int   `json:"followers"`
	Likes     int   `json:"likes"`
}

func NewGraphService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	messages repository.MessageRepository,
) *GraphService {
	return &GraphService{
		users:    users,
		follows:  follows,
		likes:    likes,
		messages: messages,
	}
}

// IsFollowing reports whether a follows b. The relation is not symmetric.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.follows.Exists(ctx, a, b)
}

// FollowersOf lists the users following userID.
func (s *GraphService) FollowersOf(ctx context.Context, current policy.Identity, userID uint) ([]models.User, error) {
	if err := policy.AuthorizeContext(ctx, current, policy.ViewFollowers, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

// FollowingOf lists the users userID follows.
func (s *GraphService) FollowingOf(ctx context.Context, current policy.Identity, userID uint) ([]models.User, error) {
	if err := policy.AuthorizeContext(ctx, current, policy.ViewFollowing, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

// Follow makes the caller follow targetID.
func (s *GraphService) Follow(ctx context.Context, current policy.Identity, targetID uint) error {
	followerID, err := policy.RequireUser(ctx, current, policy.Follow)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	return s.follows.Create(ctx, followerID, targetID)
}

// Unfollow removes the caller's edge to targetID. Removing a missing edge is a no-op.
// The edge is always keyed by the current identity, so presence is the whole check.
func (s *GraphService) Unfollow(ctx context.Context, current policy.Identity, targetID uint) error {
	followerID, err := policy.RequireUser(ctx, current, policy.Unfollow)
	if err != nil {
		return err
	}
	_, err = s.follows.Delete(ctx, followerID, targetID)
	return err
}

// ToggleLike likes messageID for the caller, or unlikes it if already liked.
// It reports the state after the toggle.
func (s *GraphService) ToggleLike(ctx context.Context, current policy.Identity, messageID uint) (bool, error) {
	ctx, span := observability.StartSpan(ctx, "GraphService", "ToggleLike", attribute.Int("message.id", int(messageID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	userID, err := policy.RequireUser(ctx, current, policy.ToggleLike)
	if err != nil {
		return false, err
	}
	if _, err = s.messages.GetByID(ctx, messageID); err != nil {
		return false, err
	}

	liked, err := s.likes.Toggle(ctx, userID, messageID)
	if err != nil {
		return false, err
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues(state).Inc()
	return liked, nil
}

// LikesOf lists the messages userID has liked.
func (s *GraphService) LikesOf(ctx context.Context, current policy.Identity, userID uint) ([]models.Message, error) {
	viewer, err := policy.RequireUser(ctx, current, policy.ViewLikes)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	msgs, err := s.likes.LikedMessages(ctx, userID)
	if err != nil {
		return nil, err
	}

	mine, err := s.likes.LikedMessageIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(mine))
	for _, id := range mine {
		set[id] = true
	}
	for i := range msgs {
		msgs[i].Liked = set[msgs[i].ID]
	}
	return msgs, nil
}

// FollowingIDs returns the ids the caller follows, for rendering follow buttons.
func (s *GraphService) FollowingIDs(ctx context.Context, current policy.Identity) ([]uint, error) {
	userID, err := policy.RequireUser(ctx, current, policy.ViewFollowing)
	if err != nil {
		return nil, err
	}
	return s.follows.FollowingIDs(ctx, userID)
}

// Stats counts userID's messages, follow edges and likes.
func (s *GraphService) Stats(ctx context.Context, userID uint) (UserStats, error) {
	var stats UserStats
	var err error

	if stats.Messages, err = s.messages.CountByUser(ctx, userID); err != nil {
		return stats, err
	}
	following, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return stats, err
	}
	followers, err := s.follows.FollowerIDs(ctx, userID)
	if err != nil {
		return stats, err
	}
	likes, err := s.likes.LikedMessageIDs(ctx, userID)
	if err != nil {
		return stats, err
	}

	stats.Following = len(following)
	stats.Followers = len(followers)
	stats.Likes = len(likes)
	return stats, nil
}
