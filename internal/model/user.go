package model

import (
	"strings"
	"time"
)

// User role constants
const (
	UserRolePatient = "Patient"
	UserRoleDoctor  = "Doctor"
	UserRoleAdmin   = "Admin"
)

// User represents a system user. Doctors carry a specialization, patients a
// date of birth; both are optional at the storage level.
type User struct {
	Base
	Email          string     `json:"email" db:"email"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	Role           string     `json:"role" db:"role"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Specialization string     `json:"specialization,omitempty" db:"specialization"`
	LicenseNumber  string     `json:"license_number,omitempty" db:"license_number"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

// FullName returns the display name used in report sections.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
