package domain

// UserRole defines what a tenant user may do.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is a staff member or administrator of a tenant.
type User struct {
	Username string   `json:"username"`
	Password string   `json:"password"` // Stored in the clear, credentials are not a goal here
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
