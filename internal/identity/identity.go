// Package identity gives each browser an anonymous, cookie-backed client id.
// Chat sessions are scoped to it.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	CookieName      = "autolynx_client"
	cookieMaxAge    = 365 * 24 * time.Hour
	clientIDContext = "autolynx.client_id"
)

var clientIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

func generateClientID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func ValidClientID(id string) bool {
	return clientIDPattern.MatchString(id)
}

// Middleware reads the client cookie, issuing a new id when it is missing or
// malformed, and refreshes its expiry on every request.
func Middleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || !ValidClientID(id) {
			id, err = generateClientID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client identity"})
				return
			}
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cookieMaxAge.Seconds()),
			Expires:  time.Now().Add(cookieMaxAge),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   secure,
		})
		c.Set(clientIDContext, id)
		c.Next()
	}
}

// ClientID returns the id set by Middleware.
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDContext)
}
