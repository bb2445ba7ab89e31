package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/service"
	"managerh.io/managerh/internal/session"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "managerh_session"

// IdentityResolver turns a session token into the caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

// SessionAuth requires a valid session and stores the identity in the request context.
// The token is read from "Authorization: Bearer" first, then from SessionCookie.
func SessionAuth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			Abort(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, "missing session token"))
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), token)
		switch {
		case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrRevoked):
			logger.FromContext(c.Request.Context()).Debug("session rejected", zap.Error(err))
			Abort(c, apperrors.Unauthorized(apperrors.CodeUnauthorized, "session is invalid or expired"))
			return
		case err != nil:
			// the token may be fine; the revocation store could not answer
			Abort(c, service.StorageError(c.Request.Context(), "resolve session", err))
			return
		}

		ctx := WithIdentity(c.Request.Context(), id)
		ctx = logger.WithFields(ctx, zap.String(logger.FieldTenantID, id.TenantID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom returns the identity stored by SessionAuth.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(domain.Identity)
	return id, ok
}
