// Package handlers implements the managerh HTTP surface on gin.
//
// Handlers translate JSON to service calls and attach failures with c.Error;
// middleware.ErrorHandler renders them.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"managerh.io/managerh/internal/api/middleware"
	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/service"
	"managerh.io/managerh/internal/session"
	"managerh.io/managerh/internal/usecase"
)

// Server holds the dependencies of every handler.
type Server struct {
	store         repository.Store
	credentials   *service.CredentialStore
	sessions      *session.Manager
	employees     *service.EmployeeService
	computers     *service.ComputerService
	dashboard     *service.DashboardService
	engine        *usecase.AssignmentEngine
	secureCookies bool
}

// ServerDeps holds all dependencies for creating a Server.
// Manual DI, no Wire/Dig.
type ServerDeps struct {
	Store       repository.Store
	Credentials *service.CredentialStore
	Sessions    *session.Manager
	Employees   *service.EmployeeService
	Computers   *service.ComputerService
	Dashboard   *service.DashboardService
	Engine      *usecase.AssignmentEngine
	// SecureCookies marks the session cookie Secure (HTTPS deployments).
	SecureCookies bool
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		store:         deps.Store,
		credentials:   deps.Credentials,
		sessions:      deps.Sessions,
		employees:     deps.Employees,
		computers:     deps.Computers,
		dashboard:     deps.Dashboard,
		engine:        deps.Engine,
		secureCookies: deps.SecureCookies,
	}
}

// RegisterRoutes mounts every endpoint on api. auth guards the tenant-scoped
// routes; loginLimit runs before credential checks.
func (s *Server) RegisterRoutes(api *gin.RouterGroup, auth, loginLimit gin.HandlerFunc) {
	api.GET("/health/live", s.Liveness)
	api.GET("/health/ready", s.Readiness)

	api.POST("/auth/register", s.Register)
	api.POST("/auth/login", loginLimit, s.Login)

	private := api.Group("", auth)
	private.POST("/auth/logout", s.Logout)
	private.GET("/auth/me", s.CurrentIdentity)
	private.GET("/dashboard", s.Dashboard)

	private.GET("/employees", s.ListEmployees)
	private.POST("/employees", s.CreateEmployee)
	private.GET("/employees/:id", s.GetEmployee)
	private.PUT("/employees/:id", s.UpdateEmployee)
	private.DELETE("/employees/:id", s.DeleteEmployee)

	private.GET("/computers", s.ListComputers)
	private.POST("/computers", s.CreateComputer)
	private.GET("/computers/:id", s.GetComputer)
	private.PUT("/computers/:id", s.UpdateComputer)
	private.DELETE("/computers/:id", s.DeleteComputer)
	private.PUT("/computers/:id/holder", s.ReassignComputer)
}

// identity returns the caller resolved by SessionAuth. A missing identity
// means the route was mounted without auth, which is a wiring bug.
func identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(c.Request.Context())
	if !ok {
		_ = c.Error(apperrors.Unauthorized(apperrors.CodeUnauthorized, "no session"))
		return domain.Identity{}, false
	}
	return id, true
}

// bindJSON decodes the body into req, attaching INVALID_REQUEST on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		appErr := apperrors.BadRequest(apperrors.CodeInvalidRequest, "request body is not valid JSON for this operation")
		appErr.Err = err
		_ = c.Error(appErr)
		return false
	}
	return true
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items}
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
