package handlers

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
)

func TestComputerLifecycle(t *testing.T) {
	h := newHarness(t)
	token := h.tenant("12345678901234", "Acme")
	jane := h.employee(token, "Doe", "Jane", "jane@example.com")
	john := h.employee(token, "Roe", "John", "john@example.com")
	c := h.computer(token, "aa-bb-cc-dd-ee-01")
	assert.Equal(t, "AA:BB:CC:DD:EE:01", c.HardwareAddress)
	assert.Equal(t, domain.ComputerStatusAvailable, c.Status)

	var got domain.Computer
	w := h.do(http.MethodPut, "/computers/"+c.ID+"/holder", token, map[string]any{"employee_id": jane.ID}, &got)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.ComputerStatusAssigned, got.Status)
	require.NotNil(t, got.HolderEmployeeID)
	assert.Equal(t, jane.ID, *got.HolderEmployeeID)

	// A second computer cannot go to Jane.
	other := h.computer(token, "AA:BB:CC:DD:EE:02")
	var e apiError
	w = h.do(http.MethodPut, "/computers/"+other.ID+"/holder", token, map[string]any{"employee_id": jane.ID}, &e)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.CodeEmployeeAlreadyAssigned, e.Code)

	// Update keeping the holder (field absent) changes only the address.
	got = domain.Computer{}
	w = h.do(http.MethodPut, "/computers/"+c.ID, token, map[string]any{"hardware_address": "AA:BB:CC:DD:EE:03"}, &got)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "AA:BB:CC:DD:EE:03", got.HardwareAddress)
	require.NotNil(t, got.HolderEmployeeID)
	assert.Equal(t, jane.ID, *got.HolderEmployeeID)

	// Update moving the computer to John.
	got = domain.Computer{}
	w = h.do(http.MethodPut, "/computers/"+c.ID, token, map[string]any{
		"hardware_address": "AA:BB:CC:DD:EE:03", "holder_employee_id": john.ID,
	}, &got)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, john.ID, *got.HolderEmployeeID)

	// Empty string unassigns.
	got = domain.Computer{}
	w = h.do(http.MethodPut, "/computers/"+c.ID, token, map[string]any{
		"hardware_address": "AA:BB:CC:DD:EE:03", "holder_employee_id": "",
	}, &got)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, got.HolderEmployeeID)
	assert.Equal(t, domain.ComputerStatusAvailable, got.Status)

	// Listing embeds the holder.
	w = h.do(http.MethodPut, "/computers/"+other.ID+"/holder", token, map[string]any{"employee_id": jane.ID}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Items []domain.Computer `json:"items"`
	}
	w = h.do(http.MethodGet, "/computers", token, nil, &listed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, listed.Items, 2)
	for _, item := range listed.Items {
		if item.ID == other.ID {
			require.NotNil(t, item.Holder)
			assert.Equal(t, "Doe", item.Holder.LastName)
		}
	}

	w = h.do(http.MethodDelete, "/computers/"+c.ID, token, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	e = apiError{}
	w = h.do(http.MethodGet, "/computers/"+c.ID, token, nil, &e)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeComputerNotFound, e.Code)
}

func TestComputerValidation(t *testing.T) {
	h := newHarness(t)
	token := h.tenant("12345678901234", "Acme")
	c := h.computer(token, "AA:BB:CC:DD:EE:01")

	tests := []struct {
		name     string
		path     string
		body     map[string]any
		status   int
		code     string
		field    string
		wantRule string
	}{
		{"bad address on create", "/computers", map[string]any{"hardware_address": "nope"}, http.StatusBadRequest, apperrors.CodeValidationFailed, "hardware_address", apperrors.RuleHardwareAddressFormat},
		{"duplicate address", "/computers", map[string]any{"hardware_address": "aa:bb:cc:dd:ee:01"}, http.StatusConflict, apperrors.CodeHardwareAddressTaken, "", ""},
		{"unknown status", "/computers/" + c.ID, map[string]any{"hardware_address": "AA:BB:CC:DD:EE:01", "status": "lost"}, http.StatusBadRequest, apperrors.CodeValidationFailed, "status", apperrors.RuleStatusUnknown},
		{"holder wrong type", "/computers/" + c.ID + "/holder", map[string]any{"employee_id": 7}, http.StatusBadRequest, apperrors.CodeInvalidRequest, "", ""},
		{"unknown holder", "/computers/" + c.ID + "/holder", map[string]any{"employee_id": "ghost"}, http.StatusNotFound, apperrors.CodeEmployeeNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPut
			if tt.path == "/computers" {
				method = http.MethodPost
			}
			var e apiError
			w := h.do(method, tt.path, token, tt.body, &e)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, e.Code)
			if tt.field != "" {
				found := false
				for _, fe := range e.FieldErrors {
					if fe.Field == tt.field {
						found = true
						assert.Equal(t, tt.wantRule, fe.Code)
					}
				}
				assert.True(t, found, "field error for %s", tt.field)
			}
		})
	}
}

func TestTenantIsolation(t *testing.T) {
	h := newHarness(t)
	acme := h.tenant("12345678901234", "Acme")
	globex := h.tenant("43210987654321", "Globex")

	jane := h.employee(acme, "Doe", "Jane", "jane@example.com")
	c := h.computer(acme, "AA:BB:CC:DD:EE:01")
	globexPC := h.computer(globex, "AA:BB:CC:DD:EE:01")

	for _, path := range []string{"/employees/" + jane.ID, "/computers/" + c.ID} {
		var e apiError
		w := h.do(http.MethodGet, path, globex, nil, &e)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	var e apiError
	w := h.do(http.MethodPut, "/computers/"+globexPC.ID+"/holder", globex, map[string]any{"employee_id": jane.ID}, &e)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeEmployeeNotFound, e.Code)

	w = h.do(http.MethodDelete, "/employees/"+jane.ID, globex, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var listed struct {
		Items []domain.Employee `json:"items"`
	}
	w = h.do(http.MethodGet, "/employees", globex, nil, &listed)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listed.Items)
}

func TestConcurrentReassignment(t *testing.T) {
	h := newHarness(t)
	token := h.tenant("12345678901234", "Acme")
	jane := h.employee(token, "Doe", "Jane", "jane@example.com")

	const n = 6
	ids := make([]string, n)
	for i := range n {
		ids[i] = h.computer(token, "AA:BB:CC:DD:EE:1"+string(rune('0'+i))).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := h.do(http.MethodPut, "/computers/"+id+"/holder", token, map[string]any{"employee_id": jane.ID}, nil)
			mu.Lock()
			defer mu.Unlock()
			switch w.Code {
			case http.StatusOK:
				ok++
			case http.StatusConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}
