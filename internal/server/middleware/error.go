package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/pkg/api"
)

// ErrorHandler converts errors attached by handlers into the standard wire
// error shape. Classified errors map to their taxonomy status; anything else
// is a 500 with the detail kept server-side.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var derr *domain.Error
		if errors.As(err, &derr) {
			if derr.Log != nil {
				logger.Error("request error",
					zap.String("path", c.Request.URL.Path),
					zap.String("kind", string(derr.Kind)),
					zap.Error(derr.Log))
			}
			c.JSON(derr.Code, api.ErrorResponse{
				Kind:    string(derr.Kind),
				Message: derr.Message,
			})
			c.Abort()
			return
		}

		logger.Error("unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Kind:    string(domain.KindInternal),
			Message: "An unexpected error occurred.",
		})
		c.Abort()
	}
}
