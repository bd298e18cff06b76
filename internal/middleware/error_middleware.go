package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "cv-analyzer/pkg/errors"
)

// ErrorMiddleware turns errors attached to the gin context into the common
// error response shape. AppErrors keep their status and code, anything else
// becomes a 500.
func ErrorMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.Status, apperrors.ErrorResponse{
				Error:   appErr.Code,
				Message: appErr.Message,
			})
			return
		}

		log.Error("unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, apperrors.ErrorResponse{
			Error:   apperrors.ErrInternalServer.Code,
			Message: "Internal server error",
		})
	}
}
