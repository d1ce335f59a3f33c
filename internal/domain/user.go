package domain

// Role represents a staff role.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	switch r {
	case RoleCashier, RoleManager, RoleOwner:
		return true
	}
	return false
}

// User represents a staff account. Email is the login identity.
// The password hash never leaves the process in responses.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email,omitempty"`
	Role           Role     `json:"role"`
	Permissions    []string `json:"permissions"`
	IsActive       bool     `json:"is_active"`
	HashedPassword string   `json:"-"`
}
