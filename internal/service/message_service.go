package service

import (
	"context"
	"log/slog"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// TimelineLimit is how many messages the home timeline shows.
const TimelineLimit = 100

// MessagePublisher fans a new message out to live subscribers.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, msg *models.Message, recipientIDs []uint) error
}

// MessageService owns message creation, reads and deletion.
type MessageService struct {
	messages  repository.MessageRepository
	likes     repository.LikeRepository
	follows   repository.FollowRepository
	publisher MessagePublisher
}

func NewMessageService(
	messages repository.MessageRepository,
	likes repository.LikeRepository,
	follows repository.FollowRepository,
	publisher MessagePublisher,
) *MessageService {
	return &MessageService{
		messages:  messages,
		likes:     likes,
		follows:   follows,
		publisher: publisher,
	}
}

// Create posts text as the current user.
func (s *MessageService) Create(ctx context.Context, current policy.Identity, text string) (*models.Message, error) {
	userID, err := policy.RequireUser(ctx, current, policy.CreateMessage)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.Message{Text: text, UserID: userID}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesPosted.Inc()

	// The insert skips the association, so load the author for the feed event.
	if stored, err := s.messages.GetByID(ctx, msg.ID); err == nil {
		msg.User = stored.User
	}

	s.publish(ctx, msg)
	return msg, nil
}

// publish notifies the author's followers. Delivery is best effort.
func (s *MessageService) publish(ctx context.Context, msg *models.Message) {
	if s.publisher == nil {
		return
	}
	followers, err := s.follows.FollowerIDs(ctx, msg.UserID)
	if err != nil || len(followers) == 0 {
		return
	}
	if err := s.publisher.PublishMessage(ctx, msg, followers); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish message",
			slog.Uint64("message_id", uint64(msg.ID)), slog.String("error", err.Error()))
	}
}

// Get returns one message, with Liked set for the caller.
func (s *MessageService) Get(ctx context.Context, current policy.Identity, id uint) (*models.Message, error) {
	userID, err := policy.RequireUser(ctx, current, policy.ViewMessage)
	if err != nil {
		return nil, err
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	msg.Liked = liked[msg.ID]
	return msg, nil
}

// Delete removes a message the caller owns, together with its likes.
// Anonymous callers are denied before the lookup; a missing id is NOT_FOUND.
func (s *MessageService) Delete(ctx context.Context, current policy.Identity, id uint) error {
	ctx, span := observability.StartSpan(ctx, "MessageService", "Delete", attribute.Int("message.id", int(id)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if _, err = policy.RequireUser(ctx, current, policy.DeleteMessage); err != nil {
		return err
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = policy.AuthorizeContext(ctx, current, policy.DeleteMessage, msg.UserID); err != nil {
		return err
	}
	err = s.messages.DeleteWithLikes(ctx, id)
	return err
}

// UserMessages returns userID's most recent messages to a signed-in caller.
func (s *MessageService) UserMessages(ctx context.Context, current policy.Identity, userID uint, limit int) ([]models.Message, error) {
	viewer, err := policy.RequireUser(ctx, current, policy.ViewProfile)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.markLiked(ctx, viewer, msgs)
}

// Timeline returns the newest messages by the caller and everyone they follow.
func (s *MessageService) Timeline(ctx context.Context, current policy.Identity, limit int) ([]models.Message, error) {
	userID, err := policy.RequireUser(ctx, current, policy.ViewTimeline)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = TimelineLimit
	}

	authors, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors = append(authors, userID)

	msgs, err := s.messages.ListByUsers(ctx, authors, limit)
	if err != nil {
		return nil, err
	}
	return s.markLiked(ctx, userID, msgs)
}

func (s *MessageService) likedSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	ids, err := s.likes.LikedMessageIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *MessageService) markLiked(ctx context.Context, viewer uint, msgs []models.Message) ([]models.Message, error) {
	liked, err := s.likedSet(ctx, viewer)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].Liked = liked[msgs[i].ID]
	}
	return msgs, nil
}
