package repository

import (
	"context"
	"testing"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleIsAnInvolution(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, 0, "alice")
	msg := testutil.CreateMessage(t, db, alice.ID, "hi")

	liked, err := repo.Toggle(ctx, alice.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.Like{}))

	liked, err = repo.Toggle(ctx, alice.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.Like{}))
}

func TestLikeRepository_LikedMessages(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, 0, "alice")
	bob := testutil.CreateUser(t, db, 0, "bob")
	first := testutil.CreateMessage(t, db, alice.ID, "first")
	second := testutil.CreateMessage(t, db, alice.ID, "second")
	testutil.CreateMessage(t, db, alice.ID, "ignored")

	for _, id := range []uint{first.ID, second.ID} {
		_, err := repo.Toggle(ctx, bob.ID, id)
		require.NoError(t, err)
	}

	msgs, err := repo.LikedMessages(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Text)
	assert.Equal(t, "alice", msgs[0].User.Username)

	ids, err := repo.LikedMessageIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	none, err := repo.LikedMessageIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
