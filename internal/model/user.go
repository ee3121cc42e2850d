package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty,omitempty"` // doctors only
	CreatedAt time.Time `json:"created_at"`
}
