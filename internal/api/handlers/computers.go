package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"managerh.io/managerh/internal/domain"
)

// holderField is the three-state holder of a request body: absent keeps the
// holder, null or "" unassigns, anything else names the new holder.
type holderField struct {
	set bool
	id  *string
}

func (h *holderField) UnmarshalJSON(data []byte) error {
	h.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		h.id = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v = strings.TrimSpace(v); v != "" {
		h.id = &v
	}
	return nil
}

func (h holderField) selection() domain.HolderSelection {
	switch {
	case !h.set:
		return domain.KeepHolder()
	case h.id == nil:
		return domain.Unassign()
	default:
		return domain.AssignTo(*h.id)
	}
}

type computerCreateRequest struct {
	HardwareAddress string `json:"hardware_address"`
}

type computerUpdateRequest struct {
	HardwareAddress string      `json:"hardware_address"`
	Status          *string     `json:"status"`
	Holder          holderField `json:"holder_employee_id"`
}

type holderRequest struct {
	EmployeeID holderField `json:"employee_id"`
}

// ListComputers handles GET /computers.
func (s *Server) ListComputers(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	items, err := s.computers.List(c.Request.Context(), id.TenantID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list(items))
}

// GetComputer handles GET /computers/{id}.
func (s *Server) GetComputer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	comp, err := s.computers.Get(c.Request.Context(), id.TenantID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// CreateComputer handles POST /computers. New computers are available and unheld.
func (s *Server) CreateComputer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req computerCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	comp, err := s.computers.Create(c.Request.Context(), id.TenantID, req.HardwareAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

// UpdateComputer handles PUT /computers/{id}, including a holder change.
func (s *Server) UpdateComputer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req computerUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	upd := domain.ComputerUpdate{
		HardwareAddress: req.HardwareAddress,
		Holder:          req.Holder.selection(),
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		st := domain.ComputerStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		upd.Status = &st
	}

	comp, err := s.engine.UpdateComputer(c.Request.Context(), id.TenantID, c.Param("id"), upd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// ReassignComputer handles PUT /computers/{id}/holder.
func (s *Server) ReassignComputer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req holderRequest
	if !bindJSON(c, &req) {
		return
	}
	comp, err := s.engine.ReassignComputer(c.Request.Context(), id.TenantID, c.Param("id"), req.EmployeeID.id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// DeleteComputer handles DELETE /computers/{id}.
func (s *Server) DeleteComputer(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := s.engine.DeleteComputer(c.Request.Context(), id.TenantID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	noContent(c)
}
