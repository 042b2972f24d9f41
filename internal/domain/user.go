package domain

// Role is the flat access class of a user.
type Role string

const (
	RoleClient  Role = "Client"
	RoleSupport Role = "Support"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleSupport
}

// User is the domain model for registered accounts.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
}
