package middleware

import (
	"net/http"
	"strings"

	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return v
	}
	return ""
}

// JWT resolves the session to a user id and stores it under "user_id".
func JWT(sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessions.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			abort(c, http.StatusUnauthorized, service.Classify(err))
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
