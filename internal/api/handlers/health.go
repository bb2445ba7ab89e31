package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness handles GET /health/live.
func (s *Server) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// Readiness handles GET /health/ready.
func (s *Server) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"storage": "ok"}
	if err := s.store.Ping(ctx); err != nil {
		checks["storage"] = "error"
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
