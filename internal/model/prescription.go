package model

import (
	"time"

	"github.com/google/uuid"
)

// Prescription issued by a doctor, optionally tied to an appointment.
// IsActive=false means historically superseded, not deleted.
type Prescription struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	MedicineName  string     `db:"medicine_name" json:"medicine_name"`
	Dosage        string     `db:"dosage" json:"dosage"`
	Frequency     string     `db:"frequency" json:"frequency"`
	Duration      string     `db:"duration" json:"duration"`
	Instructions  string     `db:"instructions" json:"instructions,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
}

// PrescriptionQuery narrows prescription reads. Zero-value fields are ignored.
type PrescriptionQuery struct {
	DoctorID   *uuid.UUID
	PatientID  *uuid.UUID
	ActiveOnly bool
	From       *time.Time
	To         *time.Time
}
