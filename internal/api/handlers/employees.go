package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"managerh.io/managerh/internal/domain"
)

type employeeRequest struct {
	LastName  string  `json:"last_name"`
	FirstName string  `json:"first_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Age       *int    `json:"age"`
	Category  *string `json:"category"`
}

func (r employeeRequest) input() domain.EmployeeInput {
	return domain.EmployeeInput{
		LastName:  r.LastName,
		FirstName: r.FirstName,
		Email:     r.Email,
		Password:  r.Password,
		Age:       r.Age,
		Category:  r.Category,
	}
}

// ListEmployees handles GET /employees.
func (s *Server) ListEmployees(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	items, err := s.employees.List(c.Request.Context(), id.TenantID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list(items))
}

// GetEmployee handles GET /employees/{id}.
func (s *Server) GetEmployee(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	e, err := s.employees.Get(c.Request.Context(), id.TenantID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// CreateEmployee handles POST /employees.
func (s *Server) CreateEmployee(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req employeeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := s.employees.Create(c.Request.Context(), id.TenantID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// UpdateEmployee handles PUT /employees/{id}. An empty password keeps the current one.
func (s *Server) UpdateEmployee(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req employeeRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := s.employees.Update(c.Request.Context(), id.TenantID, c.Param("id"), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeleteEmployee handles DELETE /employees/{id}. A held computer is released first.
func (s *Server) DeleteEmployee(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := s.engine.DeleteEmployee(c.Request.Context(), id.TenantID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	noContent(c)
}
