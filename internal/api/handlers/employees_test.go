package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
)

func TestEmployeeCRUD(t *testing.T) {
	h := newHarness(t)
	token := h.tenant("12345678901234", "Acme")

	jane := h.employee(token, "Doe", "Jane", "jane@example.com")
	assert.NotEmpty(t, jane.ID)

	var got domain.Employee
	w := h.do(http.MethodGet, "/employees/"+jane.ID, token, nil, &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.NotContains(t, w.Body.String(), "password")

	got = domain.Employee{}
	w = h.do(http.MethodPut, "/employees/"+jane.ID, token, map[string]any{
		"last_name": "Doe", "first_name": "Janet", "email": "janet@example.com", "age": 31,
	}, &got)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Janet", got.FirstName)
	require.NotNil(t, got.Age)
	assert.Equal(t, 31, *got.Age)

	var e apiError
	w = h.do(http.MethodPost, "/employees", token, map[string]any{"last_name": "X"}, &e)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, e.Code)
	assert.GreaterOrEqual(t, len(e.FieldErrors), 3)
}

func TestDeleteEmployeeReleasesComputer(t *testing.T) {
	h := newHarness(t)
	token := h.tenant("12345678901234", "Acme")
	jane := h.employee(token, "Doe", "Jane", "jane@example.com")
	c := h.computer(token, "AA:BB:CC:DD:EE:01")

	w := h.do(http.MethodPut, "/computers/"+c.ID+"/holder", token, map[string]any{"employee_id": jane.ID}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Items []domain.Employee `json:"items"`
	}
	w = h.do(http.MethodGet, "/employees", token, nil, &listed)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, listed.Items, 1)
	require.NotNil(t, listed.Items[0].Computer)
	assert.Equal(t, c.ID, listed.Items[0].Computer.ID)

	w = h.do(http.MethodDelete, "/employees/"+jane.ID, token, nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var after domain.Computer
	w = h.do(http.MethodGet, "/computers/"+c.ID, token, nil, &after)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, after.HolderEmployeeID)
	assert.Equal(t, domain.ComputerStatusAvailable, after.Status)

	var e apiError
	w = h.do(http.MethodDelete, "/employees/"+jane.ID, token, nil, &e)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeEmployeeNotFound, e.Code)
}
