// internal/domain/models/roles.go
package models

// Actor roles. Role checks live in system/authz, transition role gates in
// system/transitions; these constants are the only place role strings are
// defined.
const (
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
	RoleStudent = "student"
)
