package models

import "time"

// Role is the academy role carried in access tokens.
type Role string

const (
	RoleStudent       Role = "student"
	RoleTeacher       Role = "teacher"
	RoleParent        Role = "parent"
	RoleBranchAdmin   Role = "branch-admin"
	RoleCountryMaster Role = "country-master"
	RoleSuperMaster   Role = "super-master"
)

// Roles lists every known role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleParent, RoleBranchAdmin, RoleCountryMaster, RoleSuperMaster}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}
