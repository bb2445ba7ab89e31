// Package domain provides the managerh domain model.
//
// Storage implementations and services return these types; transport concerns
// (JSON tags aside) stay in the api packages.
package domain

import "time"

// Tenant is a registered company. All employees and computers belong to exactly one tenant.
type Tenant struct {
	ID string `json:"id"`
	// BusinessID is the 14-digit business registration number. Immutable.
	BusinessID   string    `json:"business_id"`
	Name         string    `json:"name"`
	DirectorName *string   `json:"director_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the resolved caller of a request: which tenant it acts for.
type Identity struct {
	TenantID   string    `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	TokenID    string    `json:"-"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the identity is no longer valid at now.
func (i Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
