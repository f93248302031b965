package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

func (r *vitalSignsRepository) List(ctx context.Context, q *model.VitalSignsQuery) ([]*model.VitalSigns, error) {
	query := `
		SELECT id, patient_id, appointment_id, recorded_by,
			   bp_systolic, bp_diastolic, heart_rate, temperature,
			   weight, height, oxygen_saturation, respiratory_rate,
			   notes, recorded_at
		FROM vital_signs
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if q.PatientID != nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, *q.PatientID)
		argCount++
	}
	if q.From != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", argCount)
		args = append(args, *q.From)
		argCount++
	}
	if q.To != nil {
		query += fmt.Sprintf(" AND recorded_at < $%d", argCount)
		args = append(args, *q.To)
		argCount++
	}

	query += " ORDER BY recorded_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, q.Limit)
	}

	var vitals []*model.VitalSigns
	if err := r.db.SelectContext(ctx, &vitals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vital signs: %w", err)
	}
	return vitals, nil
}
