package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

func (r *prescriptionRepository) List(ctx context.Context, q *model.PrescriptionQuery) ([]*model.Prescription, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_id, medicine_name,
			   dosage, frequency, duration, instructions, is_active,
			   created_at, updated_at
		FROM prescriptions
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
	if q.ActiveOnly {
		query += " AND is_active = true"
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *q.From)
		argCount++
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argCount)
		args = append(args, *q.To)
		argCount++
	}

	query += " ORDER BY created_at"

	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
