package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AnonymousIDCookie holds the client-side pseudo-identity for visitors that
// have not authenticated. The server stores nothing; the id rides on action
// events and survives reloads within the same browser profile.
const AnonymousIDCookie = "pl_anon_id"

const anonymousIDPrefix = "anon-"

// GetOrCreateAnonymousID returns the visitor's stable anonymous identity,
// issuing and persisting a fresh one when none is held yet. Clients may also
// carry the id in the X-Anonymous-ID header when cookies are unavailable.
func GetOrCreateAnonymousID(c *fiber.Ctx) string {
	if id := c.Get("X-Anonymous-ID"); isAnonymousID(id) {
		return id
	}
	if id := c.Cookies(AnonymousIDCookie); isAnonymousID(id) {
		return id
	}

	id := anonymousIDPrefix + uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     AnonymousIDCookie,
		Value:    id,
		Expires:  time.Now().AddDate(1, 0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return id
}

// ClearAnonymousID discards the anonymous identity after a successful
// authentication so further actions attribute to the real user id.
func ClearAnonymousID(c *fiber.Ctx) {
	if c.Cookies(AnonymousIDCookie) == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     AnonymousIDCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func isAnonymousID(id string) bool {
	return strings.HasPrefix(id, anonymousIDPrefix) && len(id) > len(anonymousIDPrefix)
}
