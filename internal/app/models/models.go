package models

// RoleType defines the account role type
type RoleType string

const (
	RoleTeacher RoleType = "teacher"
	RoleAdmin   RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleTeacher || r == RoleAdmin
}
