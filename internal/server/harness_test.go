package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"warbler/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

// newHarness builds a server on in-memory SQLite and miniredis. Tests sign in
// through an extra route that binds the session for any user id, existing or not.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)

	srv, err := NewServerWithDeps(testutil.SQLiteConfig(), db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.shutdownFn()
		if srv.hub != nil {
			_ = srv.hub.Shutdown(context.Background())
		}
	})

	app := srv.App()
	app.Post("/_test/session/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return err
		}
		if err := srv.sessions.Bind(c, uint(id)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	return &harness{srv: srv, app: app, db: db, mr: mr}
}

// browser is a cookie-keeping client that can follow redirects.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (h *harness) browser(t *testing.T) *browser {
	return &browser{t: t, app: h.app, cookies: map[string]string{}}
}

// signIn binds the session cookie to userID.
func (b *browser) signIn(userID uint) {
	b.t.Helper()
	resp := b.do(http.MethodPost, fmt.Sprintf("/_test/session/%d", userID), nil)
	require.Equal(b.t, http.StatusNoContent, resp.StatusCode)
}

// do sends one request without following redirects.
func (b *browser) do(method, path string, form url.Values) *http.Response {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)

	for _, c := range resp.Cookies() {
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now()))
		if c.Value == "" || expired {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

// follow sends a request and follows redirects with GET, returning the final
// response and its body.
func (b *browser) follow(method, path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp := b.do(method, path, form)
	for i := 0; i < 10 && isRedirect(resp.StatusCode); i++ {
		location := resp.Header.Get(fiber.HeaderLocation)
		require.NotEmpty(b.t, location)
		resp = b.do(http.MethodGet, location, nil)
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(data)
}

func isRedirect(status int) bool {
	return status == http.StatusFound || status == http.StatusSeeOther
}
