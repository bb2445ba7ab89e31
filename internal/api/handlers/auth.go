package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"managerh.io/managerh/internal/api/middleware"
	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/observability"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/service"
)

type registerRequest struct {
	BusinessID   string  `json:"business_id"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	DirectorName *string `json:"director_name"`
}

type loginRequest struct {
	BusinessID string `json:"business_id"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
	Identity  domain.Identity `json:"identity"`
}

// Register handles POST /auth/register.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := s.credentials.Register(c.Request.Context(), service.RegisterInput{
		BusinessID:   req.BusinessID,
		Password:     req.Password,
		Name:         req.Name,
		DirectorName: req.DirectorName,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

// Login handles POST /auth/login.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	tenant, err := s.credentials.Authenticate(ctx, req.BusinessID, req.Password)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeAuthFailed) {
			observability.ObserveAuthAttempt(observability.AuthResultFailed)
			logger.FromContext(ctx).Info("login failed")
		} else {
			observability.ObserveAuthAttempt(observability.AuthResultError)
		}
		_ = c.Error(err)
		return
	}

	token, id, err := s.sessions.Issue(tenant)
	if err != nil {
		observability.ObserveAuthAttempt(observability.AuthResultError)
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeInternal, "could not open a session", http.StatusInternalServerError))
		return
	}
	observability.ObserveAuthAttempt(observability.AuthResultSuccess)
	logger.FromContext(ctx).Info("login succeeded", zap.String(logger.FieldTenantID, tenant.ID))

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(time.Until(id.ExpiresAt).Seconds()), "/", "", s.secureCookies, true)
	c.JSON(http.StatusOK, sessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: id.ExpiresAt,
		Identity:  id,
	})
}

// Logout handles POST /auth/logout. The presented session stops resolving at once.
func (s *Server) Logout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := s.sessions.Destroy(c.Request.Context(), id); err != nil {
		_ = c.Error(service.StorageError(c.Request.Context(), "destroy session", err))
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.secureCookies, true)
	noContent(c)
}

// CurrentIdentity handles GET /auth/me.
func (s *Server) CurrentIdentity(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, id)
}

// Dashboard handles GET /dashboard.
func (s *Server) Dashboard(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	d, err := s.dashboard.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if d.Employees == nil {
		d.Employees = []*domain.Employee{}
	}
	if d.Computers == nil {
		d.Computers = []*domain.Computer{}
	}
	c.JSON(http.StatusOK, d)
}
