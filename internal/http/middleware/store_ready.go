package middleware

import (
	"net/http"

	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

// Readiness is satisfied by service.StoreMonitor.
type Readiness interface {
	Ready() bool
}

// StoreReady rejects requests with 503 while storage is known to be down.
func StoreReady(r Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r != nil && !r.Ready() {
			abort(c, http.StatusServiceUnavailable, service.ErrStorageUnavailable)
			return
		}
		c.Next()
	}
}
