package models

import (
	"time"
)

// ProfileRole is the clinic role attached to a user's profile.
type ProfileRole string

const (
	RoleDoctor    ProfileRole = "doctor"
	RolePatient   ProfileRole = "patient"
	RoleAttendant ProfileRole = "attendant"
)

// Valid reports whether the role is one of the three recognized values.
// The same set is enforced at the schema level by the CHECK constraint on
// Profile.Role, so an out-of-set value can neither be stored nor read back.
func (r ProfileRole) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient, RoleAttendant:
		return true
	}
	return false
}

// Profile extends a User with the clinic role and demographic fields.
// There is at most one profile per user; it is created at signup with the
// patient role, or lazily by the role-management action.
type Profile struct {
	BaseModel
	UserID     string      `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Role       ProfileRole `gorm:"size:20;not null;check:role IN ('doctor','patient','attendant')" json:"role"`
	BirthDate  *time.Time  `json:"birthDate,omitempty"`
	NationalID string      `gorm:"size:20" json:"nationalId,omitempty"`
	Address    string      `gorm:"size:255" json:"address,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
