// Package middleware provides the gin middleware chain of managerh.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error().
// AppErrors render as {code, message, params, field_errors}; anything else
// becomes a generic INTERNAL_ERROR so causes never leak.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context())

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fields := []zap.Field{
				zap.String("code", appErr.Code),
				zap.Int("status", appErr.HTTPStatus),
			}
			if appErr.Err != nil {
				fields = append(fields, zap.Error(appErr.Err))
			}
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				log.Error("Request failed", fields...)
			} else {
				log.Info("Request rejected", fields...)
			}
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if errors.Is(err, context.Canceled) {
			log.Debug("Request canceled by client")
			c.Status(499)
			return
		}

		log.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, apperrors.Internal(apperrors.CodeInternal, "an internal error occurred"))
	}
}

// Abort attaches err for ErrorHandler and stops the chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
