package domain

import (
	"errors"
	"time"
)

// Role enumerates the three account kinds.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleDepartment Role = "Department"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleAdmin, RoleDepartment:
		return Role(raw), true
	}
	return "", false
}

// CitizenProfile carries the fields required only for citizen accounts.
type CitizenProfile struct {
	Address      string
	Sex          string
	VoterID      *string
	NationalID   *string
	Constituency string
	Contact      *string
}

// Account is the identity record for all three roles. Role-conditional
// fields live behind pointers: Profile is set iff Role==RoleUser, Department
// is set iff Role==RoleDepartment.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Department   *string
	Profile      *CitizenProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the role-conditional field requirements.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.PasswordHash == "" {
		return errors.New("password is required")
	}
	switch a.Role {
	case RoleUser:
		if a.Profile == nil {
			return errors.New("citizen profile is required")
		}
		if a.Profile.Address == "" {
			return errors.New("address is required")
		}
		if a.Profile.Sex == "" {
			return errors.New("sex is required")
		}
		if a.Profile.Constituency == "" {
			return errors.New("constituency is required")
		}
		if a.Profile.NationalID == nil && a.Profile.VoterID == nil {
			return errors.New("national id or voter id is required")
		}
	case RoleDepartment:
		if a.Department == nil || *a.Department == "" {
			return errors.New("department name is required")
		}
	case RoleAdmin:
	default:
		return errors.New("unknown role")
	}
	return nil
}
