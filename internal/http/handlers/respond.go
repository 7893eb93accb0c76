package handlers

import (
	"net/http"

	"kodbank/internal/logger"
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor picks the HTTP status for a classified error.
func statusFor(e *service.AppError) int {
	switch e {
	case service.ErrRecipientNotFound, service.ErrUserNotFound, service.ErrRewardNotFound:
		return http.StatusNotFound
	case service.ErrAccountInactive:
		return http.StatusForbidden
	case service.ErrUsernameTaken, service.ErrEmailTaken:
		return http.StatusConflict
	case service.ErrInternal:
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

func respondError(c *gin.Context, err error) {
	e := service.Classify(err)
	status := statusFor(e)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e.Msg, "code": e.Code, "kind": e.Kind})
}

// bindJSON decodes the body and answers 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, service.ErrMalformedBody)
		return false
	}
	return true
}

// userID reads the authenticated user or answers 401.
func userID(c *gin.Context) (int64, bool) {
	id, ok := getUserID(c)
	if !ok {
		respondError(c, service.ErrAuthRequired)
	}
	return id, ok
}
