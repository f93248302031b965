package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

func (r *appointmentRepository) List(ctx context.Context, q *model.AppointmentQuery) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_date, duration,
			   status, reason, notes, created_at, updated_at
		FROM appointments
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if q.DoctorID != nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, *q.DoctorID)
		argCount++
	}
	if q.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, *q.PatientID)
		argCount++
	}
	if q.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, q.Status)
		argCount++
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND appointment_date >= $%d", argCount)
		args = append(args, *q.From)
		argCount++
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND appointment_date < $%d", argCount)
		args = append(args, *q.To)
		argCount++
	}

	query += " ORDER BY appointment_date"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
