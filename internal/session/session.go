// Package session binds a browser cookie to the signed-in user.
//
// The cookie carries a signed JWT naming the user. Logging out revokes the
// token id in Redis so a copied cookie stops working before it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"warbler/internal/cache"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie holding the session token.
	CookieName = "curr_user"

	issuer   = "warbler"
	audience = "warbler-web"

	localIdentity = "identity"
)

// UserLookup is the slice of the user store the session needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Manager issues, resolves and revokes session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	users  UserLookup
	now    func() time.Time
}

// Options configures a Manager.
type Options struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// NewManager returns a Manager. A zero TTL means seven days.
func NewManager(opts Options, users UserLookup) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		secret: []byte(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		users:  users,
		now:    time.Now,
	}
}

func newJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// issue signs a token naming userID.
func (m *Manager) issue(userID uint) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("session secret not configured")
	}

	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        newJTI(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// parse validates a token and returns its claims.
func (m *Manager) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Bind signs userID in and sets the session cookie.
func (m *Manager) Bind(c *fiber.Ctx, userID uint) error {
	token, exp, err := m.issue(userID)
	if err != nil {
		return models.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	setIdentity(c, policy.As(userID))
	return nil
}

// Clear revokes the current token (when Redis is available) and expires the cookie.
func (m *Manager) Clear(c *fiber.Ctx) {
	if raw := c.Cookies(CookieName); raw != "" {
		if claims, err := m.parse(raw); err == nil {
			m.revoke(c.UserContext(), claims)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	setIdentity(c, policy.Anonymous())
}

func (m *Manager) revoke(ctx context.Context, claims *jwt.RegisteredClaims) {
	rdb := cache.GetClient()
	if rdb == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return
	}
	if err := rdb.Set(ctx, cache.RevokedKey(claims.ID), 1, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke session token", slog.String("error", err.Error()))
	}
}

func (m *Manager) revoked(ctx context.Context, jti string) bool {
	rdb := cache.GetClient()
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, cache.RevokedKey(jti)).Result()
	return err == nil && n > 0
}

// Resolve maps the request's cookie to an identity. Any missing, invalid,
// revoked or dangling token resolves to Anonymous.
func (m *Manager) Resolve(c *fiber.Ctx) policy.Identity {
	raw := c.Cookies(CookieName)
	if raw == "" {
		return policy.Anonymous()
	}

	claims, err := m.parse(raw)
	if err != nil {
		return policy.Anonymous()
	}
	if m.revoked(c.UserContext(), claims.ID) {
		return policy.Anonymous()
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return policy.Anonymous()
	}

	if _, err := m.users.GetByID(c.UserContext(), uint(id)); err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			middleware.Logger.WarnContext(c.UserContext(), "session user lookup failed",
				slog.Uint64("user_id", id), slog.String("error", err.Error()))
		}
		return policy.Anonymous()
	}
	return policy.As(uint(id))
}

// Middleware resolves the identity once per request and stores it for handlers.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setIdentity(c, m.Resolve(c))
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, id policy.Identity) {
	c.Locals(localIdentity, id)
	if uid, ok := id.UserID(); ok {
		c.Locals(middleware.LocalUserID, uid)
	} else {
		c.Locals(middleware.LocalUserID, nil)
	}
}

// Current returns the identity resolved by Middleware, or Anonymous.
func Current(c *fiber.Ctx) policy.Identity {
	if id, ok := c.Locals(localIdentity).(policy.Identity); ok {
		return id
	}
	return policy.Anonymous()
}
