package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/session"
)

type fakeResolver map[string]domain.Identity

func (f fakeResolver) Resolve(_ context.Context, token string) (domain.Identity, error) {
	id, ok := f[token]
	if !ok {
		return domain.Identity{}, session.ErrInvalidToken
	}
	return id, nil
}

func TestSessionAuth(t *testing.T) {
	resolver := fakeResolver{
		"good": {TenantID: "t-1", TenantName: "Acme", TokenID: "j-1", ExpiresAt: time.Now().Add(time.Hour)},
	}

	router := gin.New()
	router.Use(ErrorHandler(), SessionAuth(resolver))
	router.GET("/me", func(c *gin.Context) {
		id, ok := IdentityFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, id.TenantID)
	})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "t-1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantBody: "t-1"},
		{name: "cookie", cookie: "good", wantStatus: http.StatusOK, wantBody: "t-1"},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "header wins over cookie", header: "Bearer nope", cookie: "good", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w, body := serve(t, router, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Equal(t, apperrors.CodeUnauthorized, body.Code)
			}
		})
	}
}

type resolverFunc func(ctx context.Context, token string) (domain.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	return f(ctx, token)
}

func TestSessionAuth_ResolveFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"revoked", session.ErrRevoked, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"wrapped invalid", fmt.Errorf("%w: token is expired", session.ErrInvalidToken), http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"revocation store down", fmt.Errorf("check session revocation: %w", errors.New("dial tcp 10.0.0.5:6379: connect: connection refused")),
			http.StatusServiceUnavailable, apperrors.CodeStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(), SessionAuth(resolverFunc(func(context.Context, string) (domain.Identity, error) {
				return domain.Identity{}, tt.err
			})))
			router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			w, body := serve(t, router, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}
