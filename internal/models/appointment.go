package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled visit between a patient and a doctor.
// Status transitions are one-directional: scheduled becomes completed when
// the doctor files the report, or cancelled by an administrator; nothing
// moves a completed or cancelled appointment back to scheduled.
type Appointment struct {
	BaseModel
	PatientID   string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID    string            `gorm:"size:36;index;not null" json:"doctorId"`
	ScheduledAt time.Time         `json:"scheduledAt"`
	Status      AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Report      string            `gorm:"type:text" json:"report,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Doctor  User `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"doctor,omitempty"`
}
