package users

import "time"

// RoleType represents the account role a user operates under on the platform.
type RoleType string

const (
	// RoleDeveloper is the paying, entitlement-bearing role. Daily login
	// credits are deducted for developers only.
	RoleDeveloper RoleType = "developer"

	// RoleServiceProvider accounts respond to tenders and never carry a
	// credit balance.
	RoleServiceProvider RoleType = "service_provider"
)

// Valid reports whether r is one of the roles an account can commit to.
func (r RoleType) Valid() bool {
	return r == RoleDeveloper || r == RoleServiceProvider
}

// User mirrors the remote identity record. The local copy is a cache and is
// never authoritative; it is replaced wholesale on login and patched only
// through role selection.
type User struct {
	ID           string    `json:"id,omitempty"`            // Unique identifier for the user
	Email        string    `json:"email,omitempty"`         // User's email address
	FirstName    string    `json:"first_name,omitempty"`    // First name of the user
	LastName     string    `json:"last_name,omitempty"`     // Last name of the user
	Company      string    `json:"company,omitempty"`       // Company the account belongs to
	DateJoined   time.Time `json:"date_joined,omitempty"`   // Date and time when the user registered
	Role         RoleType  `json:"role,omitempty"`          // Committed role, empty until selected
	RoleSelected bool      `json:"role_selected,omitempty"` // RoleSelected, has the account committed to a role
	Plan         string    `json:"plan,omitempty"`          // Billing plan identifier
	PlanStatus   string    `json:"plan_status,omitempty"`   // Remote-reported plan state (active, trialing, ...)
}

// EntitledToDailyCredit reports whether logging in consumes a daily credit
// for this account.
func (u *User) EntitledToDailyCredit() bool {
	return u != nil && u.Role == RoleDeveloper
}

// WellFormed reports whether a cached record is usable as a reconciliation
// fallback. A record that lost its identity fields is treated as absent.
func (u *User) WellFormed() bool {
	return u != nil && u.ID != "" && u.Email != ""
}
