package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"warbler/internal/models"
	"warbler/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messageStore backs a messageRepoStub with a map keyed by id.
func messageStore() (*messageRepoStub, map[uint]*models.Message) {
	store := map[uint]*models.Message{}
	var next uint
	repo := noopMessageRepo()
	repo.createFn = func(_ context.Context, m *models.Message) error {
		next++
		m.ID = next
		store[m.ID] = m
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
		m, ok := store[id]
		if !ok {
			return nil, models.NewNotFoundError("Message", id)
		}
		cp := *m
		return &cp, nil
	}
	repo.listByUsersFn = func(_ context.Context, ids []uint, _ int) ([]models.Message, error) {
		var out []models.Message
		for _, m := range store {
			for _, id := range ids {
				if m.UserID == id {
					out = append(out, *m)
				}
			}
		}
		return out, nil
	}
	repo.deleteWithLikesFn = func(_ context.Context, id uint) error {
		if _, ok := store[id]; !ok {
			return models.NewNotFoundError("Message", id)
		}
		delete(store, id)
		return nil
	}
	return repo, store
}

func TestCreateMessage(t *testing.T) {
	repo, store := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)

	msg, err := svc.Create(context.Background(), policy.As(1234), "Hello")
	require.NoError(t, err)
	assert.Equal(t, uint(1234), msg.UserID)
	assert.Equal(t, "Hello", store[msg.ID].Text)
}

func TestCreateMessage_AnonymousDenied(t *testing.T) {
	repo, store := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)

	_, err := svc.Create(context.Background(), policy.Anonymous(), "Hello")
	assertUnauthorizedError(t, err)
	assert.Empty(t, store)
}

func TestCreateMessage_Validation(t *testing.T) {
	repo, store := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)

	for _, text := range []string{"", "   ", strings.Repeat("a", models.MaxMessageLength+1)} {
		_, err := svc.Create(context.Background(), policy.As(1), text)
		assertValidationError(t, err)
	}
	assert.Empty(t, store)

	_, err := svc.Create(context.Background(), policy.As(1), strings.Repeat("a", models.MaxMessageLength))
	assert.NoError(t, err)
}

func TestCreateMessage_PublishesToFollowers(t *testing.T) {
	repo, _ := messageStore()
	follows := memoryFollows()
	ctx := context.Background()
	require.NoError(t, follows.Create(ctx, 2, 1))
	require.NoError(t, follows.Create(ctx, 3, 1))

	pub := &publisherStub{}
	svc := NewMessageService(repo, memoryLikes(), follows, pub)

	msg, err := svc.Create(ctx, policy.As(1), "hi followers")
	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, msg.ID, pub.published[0].ID)
	assert.ElementsMatch(t, []uint{2, 3}, pub.recipients[0])
}

func TestCreateMessage_PublishFailureIsNotFatal(t *testing.T) {
	repo, store := messageStore()
	follows := memoryFollows()
	require.NoError(t, follows.Create(context.Background(), 2, 1))
	pub := &publisherStub{err: errors.New("redis down")}

	_, err := NewMessageService(repo, memoryLikes(), follows, pub).Create(context.Background(), policy.As(1), "still saved")
	require.NoError(t, err)
	assert.Len(t, store, 1)
}

func TestCreateMessage_NoFollowersNoPublish(t *testing.T) {
	repo, _ := messageStore()
	pub := &publisherStub{}

	_, err := NewMessageService(repo, memoryLikes(), memoryFollows(), pub).Create(context.Background(), policy.As(1), "alone")
	require.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestGetMessage_MarksLiked(t *testing.T) {
	repo, _ := messageStore()
	likes := memoryLikes()
	svc := NewMessageService(repo, likes, memoryFollows(), nil)
	ctx := context.Background()

	msg, err := svc.Create(ctx, policy.As(1), "like me")
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, 2, msg.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, policy.As(2), msg.ID)
	require.NoError(t, err)
	assert.True(t, got.Liked)

	got, err = svc.Get(ctx, policy.As(3), msg.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	_, err = svc.Get(ctx, policy.Anonymous(), msg.ID)
	assertUnauthorizedError(t, err)
}

func TestDeleteMessage_Owner(t *testing.T) {
	repo, store := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)
	ctx := context.Background()

	msg, err := svc.Create(ctx, policy.As(1), "bye")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, policy.As(1), msg.ID))
	assert.Empty(t, store)
}

func TestDeleteMessage_NonOwnerDenied(t *testing.T) {
	repo, store := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)
	ctx := context.Background()

	msg, err := svc.Create(ctx, policy.As(1), "mine")
	require.NoError(t, err)

	assertUnauthorizedError(t, svc.Delete(ctx, policy.As(2), msg.ID))
	assert.Len(t, store, 1)
}

func TestDeleteMessage_AnonymousDeniedBeforeLookup(t *testing.T) {
	repo := noopMessageRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Message, error) {
		t.Fatal("lookup must not happen for anonymous callers")
		return nil, nil
	}
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)

	assertUnauthorizedError(t, svc.Delete(context.Background(), policy.Anonymous(), 99999))
}

func TestDeleteMessage_Missing(t *testing.T) {
	repo, _ := messageStore()
	svc := NewMessageService(repo, memoryLikes(), memoryFollows(), nil)

	assertNotFoundError(t, svc.Delete(context.Background(), policy.As(1), 99999))
}

func TestTimeline_IncludesSelfAndFollowed(t *testing.T) {
	repo, _ := messageStore()
	follows := memoryFollows()
	svc := NewMessageService(repo, memoryLikes(), follows, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, policy.As(1), "own")
	require.NoError(t, err)
	_, err = svc.Create(ctx, policy.As(2), "followed")
	require.NoError(t, err)
	_, err = svc.Create(ctx, policy.As(3), "stranger")
	require.NoError(t, err)
	require.NoError(t, follows.Create(ctx, 1, 2))

	msgs, err := svc.Timeline(ctx, policy.As(1), 0)
	require.NoError(t, err)

	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	assert.ElementsMatch(t, []string{"own", "followed"}, texts)

	_, err = svc.Timeline(ctx, policy.Anonymous(), 0)
	assertUnauthorizedError(t, err)
}

func TestTimeline_DefaultLimit(t *testing.T) {
	repo := noopMessageRepo()
	repo.listByUsersFn = func(_ context.Context, ids []uint, limit int) ([]models.Message, error) {
		assert.Equal(t, TimelineLimit, limit)
		assert.Equal(t, []uint{7}, ids)
		return nil, nil
	}

	_, err := NewMessageService(repo, memoryLikes(), memoryFollows(), nil).Timeline(context.Background(), policy.As(7), 0)
	require.NoError(t, err)
}

func TestUserMessages(t *testing.T) {
	repo := noopMessageRepo()
	repo.listByUserFn = func(_ context.Context, userID uint, limit int) ([]models.Message, error) {
		assert.Equal(t, uint(2), userID)
		assert.Equal(t, 10, limit)
		return []models.Message{{ID: 4, UserID: 2}}, nil
	}
	likes := memoryLikes()
	_, err := likes.Toggle(context.Background(), 1, 4)
	require.NoError(t, err)
	svc := NewMessageService(repo, likes, memoryFollows(), nil)

	msgs, err := svc.UserMessages(context.Background(), policy.As(1), 2, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Liked)

	_, err = svc.UserMessages(context.Background(), policy.Anonymous(), 2, 10)
	assertUnauthorizedError(t, err)
}
