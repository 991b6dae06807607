package domain

import "time"

type Tenant struct {
	ID        string
	Name      string
	Slug      string // unique, URL-safe
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership binds a user to a tenant with a role. (TenantID, UserID) is unique.
type Membership struct {
	ID        string
	TenantID  string
	UserID    string
	Role      Role
	CreatedAt time.Time
}
