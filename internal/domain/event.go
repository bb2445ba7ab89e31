package domain

import (
	"encoding/json"
	"time"
)

// EventType defines the type of domain event.
type EventType string

const (
	EventTenantRegistered   EventType = "TENANT_REGISTERED"
	EventComputerAssigned   EventType = "COMPUTER_ASSIGNED"
	EventComputerUnassigned EventType = "COMPUTER_UNASSIGNED"
	EventAssignmentRejected EventType = "ASSIGNMENT_REJECTED"
	EventEmployeeDeleted    EventType = "EMPLOYEE_DELETED"
	EventComputerDeleted    EventType = "COMPUTER_DELETED"
)

// DomainEvent is an in-process notification raised after a committed change.
type DomainEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	TenantID      string    `json:"tenant_id"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	Payload       []byte    `json:"payload,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssignmentPayload describes a holder change on a computer.
type AssignmentPayload struct {
	ComputerID       string         `json:"computer_id"`
	PreviousHolderID *string        `json:"previous_holder_id,omitempty"`
	HolderID         *string        `json:"holder_id,omitempty"`
	Status           ComputerStatus `json:"status"`
}

// ToJSON converts payload to JSON bytes.
func (p AssignmentPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// EmployeeDeletedPayload records the cascade effect of an employee deletion.
type EmployeeDeletedPayload struct {
	EmployeeID         string  `json:"employee_id"`
	ReleasedComputerID *string `json:"released_computer_id,omitempty"`
}

// ToJSON converts payload to JSON bytes.
func (p EmployeeDeletedPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
