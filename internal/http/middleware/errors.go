package middleware

import (
	"kodbank/internal/service"

	"github.com/gin-gonic/gin"
)

func abort(c *gin.Context, status int, e *service.AppError) {
	c.AbortWithStatusJSON(status, gin.H{"error": e.Msg, "code": e.Code, "kind": e.Kind})
}
