package model

import (
	"fmt"
	"time"
)

// Role is a caller's fixed classification. It is assigned at registration
// and there is no path anywhere in the system that changes it afterwards.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// ParseRole validates a raw role string against the closed set of roles.
// An empty string defaults to patient (the registration form default).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor:
		return Role(s), nil
	case "":
		return RolePatient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// DashboardPath returns the dashboard route a caller with this role is
// redirected to after login.
func (r Role) DashboardPath() string {
	if r == RoleDoctor {
		return "/accounts/doctor-dashboard/"
	}
	return "/accounts/patient-dashboard/"
}

// SeesAllDocuments reports whether the role's document visibility scope is
// unrestricted. Doctors see every patient's documents; patients see only
// their own.
func (r Role) SeesAllDocuments() bool {
	return r == RoleDoctor
}

// User represents an account in the portal.
// This is a pure domain model with no database-specific dependencies or tags.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
