// internal/middleware/anonymous.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AnonymousCookie names the browser cookie carrying the anonymous token.
	AnonymousCookie = "anon_id"
	// AnonymousHeader lets non-browser clients pass the token explicitly.
	AnonymousHeader = "X-Anonymous-Id"

	anonymousCookieMaxAge = 60 * 60 * 24 * 90 // 90 days
)

// AnonymousIdentity guarantees every request carries an anonymous token so
// guests can hold carts and favorites before signing in. An existing cookie
// or header wins; otherwise a fresh token is minted and set as a cookie.
// The token must parse as a UUID, which blocks cookie-stuffing arbitrary
// identifiers into the identity tables.
func AnonymousIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AnonymousHeader)
		if token == "" {
			if cookie, err := c.Cookie(AnonymousCookie); err == nil {
				token = cookie
			}
		}

		if _, err := uuid.Parse(token); err != nil {
			token = uuid.New().String()
			c.SetCookie(AnonymousCookie, token, anonymousCookieMaxAge, "/", "", false, true)
		}

		c.Set("anonymous_id", token)
		c.Next()
	}
}
