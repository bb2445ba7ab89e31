// Package validation holds the pure format and business-rule checks applied
// to every payload before it reaches storage. Nothing here performs I/O.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
)

const (
	businessIDLength  = 14
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores bytes past 72
	maxNameLength     = 100
	maxEmailLength    = 254
	maxCategoryLength = 50
	maxAge            = 150
)

var (
	businessIDPattern = regexp.MustCompile(`^[0-9]{14}$`)
	// RE2 has no backreferences; separator uniformity is checked in HardwareAddress.
	hardwareAddressPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}([:-][0-9A-Fa-f]{2}){5}$`)

	validate = validator.New()
)

// Field names used in FieldError.Field.
const (
	FieldBusinessID      = "business_id"
	FieldPassword        = "password"
	FieldName            = "name"
	FieldDirectorName    = "director_name"
	FieldLastName        = "last_name"
	FieldFirstName       = "first_name"
	FieldEmail           = "email"
	FieldAge             = "age"
	FieldCategory        = "category"
	FieldHardwareAddress = "hardware_address"
	FieldStatus          = "status"
	FieldHolder          = "holder_employee_id"
)

func fieldErr(field, rule, msg string) *apperrors.FieldError {
	return &apperrors.FieldError{Field: field, Code: rule, Message: msg}
}

// Collect turns the non-nil field errors into a single VALIDATION_FAILED error.
// Returns nil when every check passed.
func Collect(checks ...*apperrors.FieldError) error {
	var fes []apperrors.FieldError
	for _, fe := range checks {
		if fe != nil {
			fes = append(fes, *fe)
		}
	}
	if len(fes) == 0 {
		return nil
	}
	return apperrors.Validation(fes...)
}

// BusinessID checks a 14-digit business registration number.
// Only ASCII digits are accepted, so full-width digits fail.
func BusinessID(id string) *apperrors.FieldError {
	if id == "" {
		return fieldErr(FieldBusinessID, apperrors.RuleRequired, "business identifier is required")
	}
	if len(id) != businessIDLength || !businessIDPattern.MatchString(id) {
		return fieldErr(FieldBusinessID, apperrors.RuleBusinessIDFormat, "business identifier must be exactly 14 digits")
	}
	return nil
}

// Password checks the secret strength rule: at least 8 characters, one of them a digit.
func Password(secret string) *apperrors.FieldError {
	if secret == "" {
		return fieldErr(FieldPassword, apperrors.RuleRequired, "password is required")
	}
	if utf8.RuneCountInString(secret) < minPasswordLength {
		return fieldErr(FieldPassword, apperrors.RulePasswordTooShort, "password must be at least 8 characters")
	}
	if len(secret) > maxPasswordLength {
		return fieldErr(FieldPassword, apperrors.RuleTooLong, "password must be at most 72 bytes")
	}
	if !strings.ContainsAny(secret, "0123456789") {
		return fieldErr(FieldPassword, apperrors.RulePasswordMissingDigit, "password must contain a digit")
	}
	return nil
}

// HardwareAddress checks six two-hex-digit groups joined by one separator kind.
func HardwareAddress(addr string) *apperrors.FieldError {
	if addr == "" {
		return fieldErr(FieldHardwareAddress, apperrors.RuleRequired, "hardware address is required")
	}
	if !hardwareAddressPattern.MatchString(addr) {
		return fieldErr(FieldHardwareAddress, apperrors.RuleHardwareAddressFormat, "hardware address must be six hex pairs")
	}
	// mixed separators like AA:BB-CC:DD:EE:FF
	if strings.Contains(addr, ":") && strings.Contains(addr, "-") {
		return fieldErr(FieldHardwareAddress, apperrors.RuleHardwareAddressFormat, "hardware address separators must be uniform")
	}
	return nil
}

// NormalizeHardwareAddress returns the canonical upper-case colon form.
// The input must already have passed HardwareAddress.
func NormalizeHardwareAddress(addr string) string {
	return strings.ToUpper(strings.ReplaceAll(addr, "-", ":"))
}

// Status checks that s names a known computer status.
func Status(s domain.ComputerStatus) *apperrors.FieldError {
	if !s.Valid() {
		return fieldErr(FieldStatus, apperrors.RuleStatusUnknown, "status must be available, assigned or broken")
	}
	return nil
}

// StatusHolder checks edge coherence: an explicit "assigned" status needs a holder selection.
// holderSelected is true when the payload names an employee.
func StatusHolder(status *domain.ComputerStatus, holderSelected bool) *apperrors.FieldError {
	if status != nil && *status == domain.ComputerStatusAssigned && !holderSelected {
		return fieldErr(FieldHolder, apperrors.RuleHolderRequired, "an assigned computer needs a holder")
	}
	return nil
}

// RequiredText checks a required free-text field and its length.
func RequiredText(field, value string) *apperrors.FieldError {
	if strings.TrimSpace(value) == "" {
		return fieldErr(field, apperrors.RuleRequired, field+" is required")
	}
	return OptionalText(field, &value, maxNameLength)
}

// OptionalText checks the length of an optional free-text field.
func OptionalText(field string, value *string, max int) *apperrors.FieldError {
	if value != nil && utf8.RuneCountInString(*value) > max {
		return fieldErr(field, apperrors.RuleTooLong, field+" is too long")
	}
	return nil
}

// Email checks the contact identifier of an employee.
func Email(email string) *apperrors.FieldError {
	if email == "" {
		return fieldErr(FieldEmail, apperrors.RuleRequired, "email is required")
	}
	if len(email) > maxEmailLength || validate.Var(email, "email") != nil {
		return fieldErr(FieldEmail, apperrors.RuleEmailFormat, "email is not a valid address")
	}
	return nil
}

// Age checks an optional employee age.
func Age(age *int) *apperrors.FieldError {
	if age != nil && (*age < 0 || *age > maxAge) {
		return fieldErr(FieldAge, apperrors.RuleAgeRange, "age must be between 0 and 150")
	}
	return nil
}

// Registration validates a tenant registration payload.
func Registration(businessID, password, name string, directorName *string) error {
	return Collect(
		BusinessID(businessID),
		Password(password),
		RequiredText(FieldName, name),
		OptionalText(FieldDirectorName, directorName, maxNameLength),
	)
}

// Employee validates an employee payload. The password is required on
// create and optional on update (empty keeps the current hash).
func Employee(in domain.EmployeeInput, passwordRequired bool) error {
	var pw *apperrors.FieldError
	if passwordRequired || in.Password != "" {
		pw = Password(in.Password)
	}
	return Collect(
		RequiredText(FieldLastName, in.LastName),
		RequiredText(FieldFirstName, in.FirstName),
		Email(in.Email),
		pw,
		Age(in.Age),
		OptionalText(FieldCategory, in.Category, maxCategoryLength),
	)
}

// ComputerUpdate validates a full computer edit at the edge.
func ComputerUpdate(u domain.ComputerUpdate) error {
	var st *apperrors.FieldError
	if u.Status != nil {
		st = Status(*u.Status)
	}
	holderSelected := u.Holder.EmployeeID != nil
	if !u.Holder.Set {
		// keeping the current holder; the engine checks coherence against stored state
		holderSelected = true
	}
	return Collect(
		HardwareAddress(u.HardwareAddress),
		st,
		StatusHolder(u.Status, holderSelected),
	)
}
