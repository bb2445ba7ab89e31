package domain

import "time"

// ComputerStatus is the lifecycle state of a computer.
type ComputerStatus string

const (
	ComputerStatusAvailable ComputerStatus = "available"
	ComputerStatusAssigned  ComputerStatus = "assigned"
	ComputerStatusBroken    ComputerStatus = "broken"
)

// Valid reports whether s is a known status.
func (s ComputerStatus) Valid() bool {
	switch s {
	case ComputerStatusAvailable, ComputerStatusAssigned, ComputerStatusBroken:
		return true
	}
	return false
}

// Computer belongs to exactly one tenant and has at most one holder.
type Computer struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	// HardwareAddress is stored normalized: upper-case, colon separated.
	HardwareAddress  string         `json:"hardware_address"`
	Status           ComputerStatus `json:"status"`
	HolderEmployeeID *string        `json:"holder_employee_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Holder is populated by list queries only.
	Holder *EmployeeRef `json:"holder,omitempty"`
}

// ComputerRef is the summary of a computer embedded in an employee listing.
type ComputerRef struct {
	ID              string         `json:"id"`
	HardwareAddress string         `json:"hardware_address"`
	Status          ComputerStatus `json:"status"`
}

// Ref returns the summary form of c.
func (c *Computer) Ref() *ComputerRef {
	return &ComputerRef{ID: c.ID, HardwareAddress: c.HardwareAddress, Status: c.Status}
}

// HeldBy reports whether employeeID is the current holder.
func (c *Computer) HeldBy(employeeID string) bool {
	return c.HolderEmployeeID != nil && *c.HolderEmployeeID == employeeID
}

// HolderSelection is the three-state holder field of a computer update.
type HolderSelection struct {
	// Set is false when the caller left the holder untouched.
	Set bool
	// EmployeeID is nil to unassign.
	EmployeeID *string
}

// KeepHolder leaves the current holder unchanged.
func KeepHolder() HolderSelection { return HolderSelection{} }

// Unassign clears the holder.
func Unassign() HolderSelection { return HolderSelection{Set: true} }

// AssignTo selects employeeID as the holder.
func AssignTo(employeeID string) HolderSelection {
	return HolderSelection{Set: true, EmployeeID: &employeeID}
}

// ComputerUpdate is a full computer edit. Status nil means "derive from holder".
type ComputerUpdate struct {
	HardwareAddress string
	Status          *ComputerStatus
	Holder          HolderSelection
}

// StatusAfterUnassign is the status a computer takes once its holder is cleared.
// An assigned computer becomes available; other statuses are kept.
func StatusAfterUnassign(current ComputerStatus) ComputerStatus {
	if current == ComputerStatusAssigned {
		return ComputerStatusAvailable
	}
	return current
}
