package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "ronin/internal/errors"
	"ronin/internal/logger"
)

// ErrorHandler converts errors attached to the Gin context (c.Error) into the
// {"error":{"code","message"}} envelope. Unknown errors are logged and
// reported as INTERNAL_ERROR so storage details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", c.GetString(requestIDKey),
			)
			abortWithError(c, apperrors.ErrInternalServer)
			return
		}

		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
		}
		abortWithError(c, appErr)
	}
}
