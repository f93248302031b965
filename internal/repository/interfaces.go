package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

// Read-only repository interfaces consumed by the analytics engine. The
// owning CRUD services live elsewhere; nothing here mutates records.
type (
	AppointmentRepository interface {
		List(ctx context.Context, q *model.AppointmentQuery) ([]*model.Appointment, error)
	}

	PrescriptionRepository interface {
		List(ctx context.Context, q *model.PrescriptionQuery) ([]*model.Prescription, error)
	}

	VitalSignsRepository interface {
		List(ctx context.Context, q *model.VitalSignsQuery) ([]*model.VitalSigns, error)
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
	}
)
