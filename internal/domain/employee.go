package domain

import "time"

// Employee belongs to exactly one tenant for its whole life.
type Employee struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	LastName     string    `json:"last_name"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          *int      `json:"age,omitempty"`
	Category     *string   `json:"category,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Computer is the computer currently held, populated by list queries only.
	Computer *ComputerRef `json:"computer,omitempty"`
}

// EmployeeRef is the summary of an employee embedded in a computer listing.
type EmployeeRef struct {
	ID        string `json:"id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// Ref returns the summary form of e.
func (e *Employee) Ref() *EmployeeRef {
	return &EmployeeRef{ID: e.ID, LastName: e.LastName, FirstName: e.FirstName, Email: e.Email}
}

// EmployeeInput carries the mutable fields of an employee.
// Password is plaintext here and is hashed by the service before storage.
type EmployeeInput struct {
	LastName  string
	FirstName string
	Email     string
	Password  string
	Age       *int
	Category  *string
}
