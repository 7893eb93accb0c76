package ws

import (
	"net/http"

	"kodbank/internal/http/middleware"
	"kodbank/internal/logger"
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleMarket upgrades an authenticated request to the market feed.
// Browsers cannot set headers on websocket requests, so the token may also
// come from the "token" query parameter.
func HandleMarket(hub *Hub, sessions *service.SessionManager, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = middleware.TokenFromRequest(c)
		}
		userID, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			e := service.Classify(err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": e.Msg, "code": e.Code, "kind": e.Kind})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		go NewClient(userID, conn, hub).Run()
	}
}
