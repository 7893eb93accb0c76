package middleware

import (
	"net/http"
	"strconv"
	"time"

	"kodbank/internal/metrics"
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

// ActionRateLimit limits state-changing actions per user (not per IP).
// Requires JWT middleware to run before this.
func ActionRateLimit(action string, maxActions int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter(maxActions, window)
	label := "action:" + action

	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		userID, ok := userIDVal.(int64)
		if !exists || !ok {
			abort(c, http.StatusUnauthorized, service.ErrAuthRequired)
			return
		}
		uid := strconv.FormatInt(userID, 10)

		blocked := false
		if redisClient == nil {
			blocked = !local.allow(uid)
		} else {
			key := "action_rl:" + action + ":" + uid + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
			val, err := fixedWindow(c.Request.Context(), key, window)
			if err != nil {
				c.Header("X-ActionRateLimit-Error", "redis-error")
				c.Next()
				return
			}
			c.Header("X-ActionRateLimit-Limit", strconv.Itoa(maxActions))
			c.Header("X-ActionRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxActions)-val), 10))
			blocked = val > int64(maxActions)
		}

		if blocked {
			metrics.RLBlocked.WithLabelValues(label).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       action + " rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		metrics.RLRequests.WithLabelValues(label).Inc()
		c.Next()
	}
}
