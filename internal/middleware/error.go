package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
)

// ErrorHandler renders the last error a handler recorded with c.Error as
// {"error":{"code","message"}}. Errors that are not AppErrors are logged and
// reported as INTERNAL_ERROR. Nothing is written if the handler already
// produced a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	appErr := apperrors.ErrInternalServer
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	} else if appErr.Internal != nil {
		logger.Get().Errorw("request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
		)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
