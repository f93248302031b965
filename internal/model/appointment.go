package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "NoShow"
)

// Appointment is a booking between a patient and a doctor. Status transitions
// are owned by the booking subsystem; analytics treats status as a fact at
// query time.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	Duration        int               `db:"duration" json:"duration"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Reason          string            `db:"reason" json:"reason"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
}

// AppointmentQuery narrows appointment reads. Zero-value fields are ignored.
type AppointmentQuery struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    AppointmentStatus
	From      *time.Time
	To        *time.Time
}
