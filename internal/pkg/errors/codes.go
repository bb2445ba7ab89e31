package errors

import (
	"net/http"
	"strings"
)

// Error codes are stable identifiers consumed by clients to pick a message.
// Backend logs are always in English; messages here are defaults only.

// Validation error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

// Field rule codes carried in FieldError.Code.
const (
	RuleRequired              = "REQUIRED"
	RuleBusinessIDFormat      = "BUSINESS_ID_FORMAT"
	RulePasswordTooShort      = "PASSWORD_TOO_SHORT"
	RulePasswordMissingDigit  = "PASSWORD_MISSING_DIGIT"
	RuleHardwareAddressFormat = "HARDWARE_ADDRESS_FORMAT"
	RuleStatusUnknown         = "STATUS_UNKNOWN"
	RuleHolderRequired        = "HOLDER_REQUIRED"
	RuleEmailFormat           = "EMAIL_FORMAT"
	RuleAgeRange              = "AGE_RANGE"
	RuleTooLong               = "TOO_LONG"
)

// Entity error codes.
const (
	CodeTenantNotFound   = "TENANT_NOT_FOUND"
	CodeEmployeeNotFound = "EMPLOYEE_NOT_FOUND"
	CodeComputerNotFound = "COMPUTER_NOT_FOUND"

	CodeEmployeeAlreadyAssigned = "EMPLOYEE_ALREADY_ASSIGNED"
	CodeBusinessIDRegistered    = "BUSINESS_ID_ALREADY_REGISTERED"
	CodeHardwareAddressTaken    = "HARDWARE_ADDRESS_ALREADY_REGISTERED"
)

// Auth error codes.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
)

// Infrastructure error codes.
const (
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Entity kinds used in NotFound params.
const (
	KindTenant   = "tenant"
	KindEmployee = "employee"
	KindComputer = "computer"
)

// Validation returns a VALIDATION_FAILED error carrying field-level rule codes.
func Validation(fieldErrors ...FieldError) *AppError {
	return BadRequest(CodeValidationFailed, "request failed validation").WithFieldErrors(fieldErrors)
}

// ErrEntityNotFound creates a NotFound error for the given entity kind.
// The same error is returned for an id outside the caller's tenant.
func ErrEntityNotFound(kind, id string) *AppError {
	code := strings.ToUpper(kind) + "_NOT_FOUND"
	return NotFound(code, kind+" not found").WithParams(map[string]interface{}{
		"entity_kind": kind,
		"id":          id,
	})
}

// ErrAlreadyAssigned reports that the employee already holds another computer.
func ErrAlreadyAssigned(employeeID string) *AppError {
	return Conflict(CodeEmployeeAlreadyAssigned, "employee already holds a computer").
		WithParams(map[string]interface{}{"employee_id": employeeID})
}

// ErrDuplicateIdentifier reports a business identifier that is already registered.
func ErrDuplicateIdentifier(businessID string) *AppError {
	return Conflict(CodeBusinessIDRegistered, "business identifier is already registered").
		WithParams(map[string]interface{}{"business_id": businessID})
}

// ErrHardwareAddressTaken reports a hardware address already used in the tenant.
func ErrHardwareAddressTaken(address string) *AppError {
	return Conflict(CodeHardwareAddressTaken, "hardware address is already registered").
		WithParams(map[string]interface{}{"hardware_address": address})
}

// ErrAuthFailed is the single failure returned for unknown identifier and wrong secret.
func ErrAuthFailed() *AppError {
	return Unauthorized(CodeAuthFailed, "invalid business identifier or password")
}

// ErrStorageUnavailable wraps a persistence failure. The cause is logged, never rendered.
func ErrStorageUnavailable(err error) *AppError {
	return Wrap(err, CodeStorageUnavailable, "storage is temporarily unavailable", http.StatusServiceUnavailable)
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	return HasCode(err, CodeStorageUnavailable)
}
