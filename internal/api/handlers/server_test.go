package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"managerh.io/managerh/internal/api/middleware"
	"managerh.io/managerh/internal/domain"
	"managerh.io/managerh/internal/pkg/worker"
	"managerh.io/managerh/internal/repository/memory"
	"managerh.io/managerh/internal/service"
	"managerh.io/managerh/internal/session"
	"managerh.io/managerh/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 4, CryptoPoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)

	store := memory.NewStore()
	dispatcher := domain.NewEventDispatcher()
	creds, err := service.NewCredentialStore(store, pools.Crypto, bcrypt.MinCost, dispatcher)
	require.NoError(t, err)
	sessions, err := session.NewManager(session.Config{
		SigningKey: []byte("handler-test-signing-key"),
		Issuer:     "managerh-test",
		Lifetime:   time.Hour,
	}, session.NewMemoryRevoker())
	require.NoError(t, err)

	employees := service.NewEmployeeService(store, creds)
	computers := service.NewComputerService(store)
	srv := NewServer(ServerDeps{
		Store:       store,
		Credentials: creds,
		Sessions:    sessions,
		Employees:   employees,
		Computers:   computers,
		Dashboard:   service.NewDashboardService(employees, computers, pools.General),
		Engine:      usecase.NewAssignmentEngine(store, dispatcher),
	})

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.MustOpenAPIValidator("/api/v1", true),
		middleware.ErrorHandler(),
	)
	limiter := middleware.NewLoginLimiter(middleware.LoginLimiterConfig{PerMinute: 600, Burst: 100})
	srv.RegisterRoutes(router.Group("/api/v1"), middleware.SessionAuth(sessions), limiter.Middleware())

	return &harness{t: t, router: router, store: store}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (h *harness) do(method, path, token string, body any, out any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

type apiError struct {
	Code        string         `json:"code"`
	Params      map[string]any `json:"params"`
	FieldErrors []struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	} `json:"field_errors"`
}

// tenant registers a company and logs in, returning the session token.
func (h *harness) tenant(businessID, name string) string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/auth/register", "", map[string]any{
		"business_id": businessID, "password": "secret123", "name": name,
	}, nil)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())

	var sess sessionResponse
	w = h.do(http.MethodPost, "/auth/login", "", map[string]any{
		"business_id": businessID, "password": "secret123",
	}, &sess)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	return sess.Token
}

func (h *harness) employee(token, last, first, email string) *domain.Employee {
	h.t.Helper()
	var e domain.Employee
	w := h.do(http.MethodPost, "/employees", token, map[string]any{
		"last_name": last, "first_name": first, "email": email, "password": "secret123",
	}, &e)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return &e
}

func (h *harness) computer(token, addr string) *domain.Computer {
	h.t.Helper()
	var c domain.Computer
	w := h.do(http.MethodPost, "/computers", token, map[string]any{"hardware_address": addr}, &c)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return &c
}
