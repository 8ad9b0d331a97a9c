// Package testutil provides shared fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SQLiteConfig returns a test config backed by an in-memory SQLite database.
func SQLiteConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		DBDriver:        config.DriverSQLite,
		DBSQLitePath:    ":memory:",
		SessionSecret:   "test-session-secret-with-enough-length",
		SessionTTLHours: 1,
		FeatureFlags:    "live_feed=on",
	}
}

// NewDB opens a fresh in-memory database with the full schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Connect(context.Background(), SQLiteConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewRedis starts a miniredis server and installs it as the shared cache client.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { _ = cache.Close() })
	return mr, rdb
}

// CreateUser inserts a user with a placeholder password hash. A zero id lets
// the database assign one.
func CreateUser(t testing.TB, db *gorm.DB, id uint, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       id,
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "not-a-real-hash",
		ImageURL: models.DefaultImageURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMessage inserts a message owned by userID.
func CreateMessage(t testing.TB, db *gorm.DB, userID uint, text string) *models.Message {
	t.Helper()
	msg := &models.Message{Text: text, UserID: userID}
	require.NoError(t, db.Omit("User").Create(msg).Error)
	return msg
}

// Follow inserts the edge follower -> followee.
func Follow(t testing.TB, db *gorm.DB, followerID, followeeID uint) {
	t.Helper()
	require.NoError(t, db.Omit("Follower", "Followee").Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error)
}

// Count returns the number of rows of model.
func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
