package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/policy"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usersStub struct {
	getByIDFn func(ctx context.Context, id uint) (*models.User, error)
}

func (s usersStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func existingUsers(ids ...uint) usersStub {
	known := make(map[uint]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return usersStub{getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
		if !known[id] {
			return nil, models.NewNotFoundError("User", id)
		}
		return &models.User{ID: id}, nil
	}}
}

func newTestManager(users UserLookup) *Manager {
	return NewManager(Options{Secret: "test-secret-test-secret-test-secret", TTL: time.Hour}, users)
}

// newApp exposes login/logout/whoami routes over m.
func newApp(m *Manager) *fiber.App {
	app := fiber.New()
	app.Use(m.Middleware())
	app.Post("/login/:id", func(c *fiber.Ctx) error {
		id, _ := c.ParamsInt("id")
		return m.Bind(c, uint(id))
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		m.Clear(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(Current(c).String())
	})
	return app
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func whoami(t *testing.T, app *fiber.App, ck *http.Cookie) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	return string(buf[:n])
}

func TestManager_BindAndResolve(t *testing.T) {
	m := newTestManager(existingUsers(1234))
	app := newApp(m)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/1234", nil))
	require.NoError(t, err)
	ck := sessionCookie(t, resp)
	assert.True(t, ck.HttpOnly)

	assert.Equal(t, "user:1234", whoami(t, app, ck))
	assert.Equal(t, "anonymous", whoami(t, app, nil))
}

func TestManager_ResolveRejectsBadTokens(t *testing.T) {
	m := newTestManager(existingUsers(1))
	app := newApp(m)

	other := NewManager(Options{Secret: "a-different-secret-a-different-secret"}, existingUsers(1))
	forged, _, err := other.issue(1)
	require.NoError(t, err)

	expired := newTestManager(existingUsers(1))
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.issue(1)
	require.NoError(t, err)

	dangling, _, err := m.issue(99)
	require.NoError(t, err)

	for name, value := range map[string]string{
		"garbage":  "not-a-jwt",
		"forged":   forged,
		"expired":  stale,
		"dangling": dangling,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "anonymous", whoami(t, app, &http.Cookie{Name: CookieName, Value: value}))
		})
	}
}

func TestManager_ClearRevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	m := newTestManager(existingUsers(7))
	app := newApp(m)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/7", nil))
	require.NoError(t, err)
	ck := sessionCookie(t, resp)
	require.Equal(t, "user:7", whoami(t, app, ck))

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(ck)
	resp, err = app.Test(req)
	require.NoError(t, err)
	cleared := sessionCookie(t, resp)
	assert.Empty(t, cleared.Value)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "session:revoked:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))

	// The old cookie no longer resolves.
	assert.Equal(t, "anonymous", whoami(t, app, ck))
}

func TestCurrent_DefaultsToAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, policy.Anonymous(), Current(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
}
