package model

import (
	"time"

	"github.com/google/uuid"
)

// VitalSigns is a point-in-time clinical measurement set. Every measurement is
// optional; analytics only emits metric rows for fields that are present.
type VitalSigns struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	PatientID              uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID          *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	RecordedBy             uuid.UUID  `db:"recorded_by" json:"recorded_by"`
	BloodPressureSystolic  *float64   `db:"bp_systolic" json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *float64   `db:"bp_diastolic" json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *float64   `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature            *float64   `db:"temperature" json:"temperature,omitempty"`
	Weight                 *float64   `db:"weight" json:"weight,omitempty"`
	Height                 *float64   `db:"height" json:"height,omitempty"`
	OxygenSaturation       *float64   `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	RespiratoryRate        *float64   `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	Notes                  string     `db:"notes" json:"notes,omitempty"`
	RecordedAt             time.Time  `db:"recorded_at" json:"recorded_at"`
}

// VitalSignsQuery narrows vital-sign reads. Zero-value fields are ignored.
type VitalSignsQuery struct {
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Limit     int
}
