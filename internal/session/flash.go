package session

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FlashCookieName is the cookie carrying pending one-shot messages.
const FlashCookieName = "flashes"

const localFlashes = "flashes"

// Flash categories.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func decodeFlashes(raw string) []Flash {
	if raw == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

func (m *Manager) writeFlashes(c *fiber.Ctx, flashes []Flash) {
	cookie := &fiber.Cookie{
		Name:     FlashCookieName,
		Path:     "/",
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if len(flashes) == 0 {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	} else {
		b, _ := json.Marshal(flashes)
		cookie.Value = base64.RawURLEncoding.EncodeToString(b)
	}
	c.Cookie(cookie)
}

// AddFlash queues a message for the next page that renders flashes.
func (m *Manager) AddFlash(c *fiber.Ctx, category, message string) {
	pending, ok := c.Locals(localFlashes).([]Flash)
	if !ok {
		pending = decodeFlashes(c.Cookies(FlashCookieName))
	}
	pending = append(pending, Flash{Category: category, Message: message})
	c.Locals(localFlashes, pending)
	m.writeFlashes(c, pending)
}

// TakeFlashes returns the pending messages and clears them.
func (m *Manager) TakeFlashes(c *fiber.Ctx) []Flash {
	flashes := decodeFlashes(c.Cookies(FlashCookieName))
	if len(flashes) > 0 {
		m.writeFlashes(c, nil)
	}
	c.Locals(localFlashes, []Flash{})
	if flashes == nil {
		flashes = []Flash{}
	}
	return flashes
}
