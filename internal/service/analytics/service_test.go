package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-analytics-api/internal/model"
	"github.com/jwalitptl/health-analytics-api/pkg/logger"
	"github.com/jwalitptl/health-analytics-api/pkg/metrics"
)

// In-memory repositories mirroring the SQL predicates: From is inclusive,
// To exclusive.

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
	err          error
}

func (f *fakeAppointmentRepo) List(_ context.Context, q *model.AppointmentQuery) ([]*model.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if q.DoctorID != nil && apt.DoctorID != *q.DoctorID {
			continue
		}
		if q.PatientID != nil && apt.PatientID != *q.PatientID {
			continue
		}
		if q.From != nil && apt.AppointmentDate.Before(*q.From) {
			continue
		}
		if q.To != nil && !apt.AppointmentDate.Before(*q.To) {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

type fakePrescriptionRepo struct {
	prescriptions []*model.Prescription
	err           error
}

func (f *fakePrescriptionRepo) List(_ context.Context, q *model.PrescriptionQuery) ([]*model.Prescription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Prescription
	for _, p := range f.prescriptions {
		if q.DoctorID != nil && p.DoctorID != *q.DoctorID {
			continue
		}
		if q.PatientID != nil && p.PatientID != *q.PatientID {
			continue
		}
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		if q.From != nil && p.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !p.CreatedAt.Before(*q.To) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeVitalsRepo struct {
	vitals []*model.VitalSigns
}

func (f *fakeVitalsRepo) List(_ context.Context, q *model.VitalSignsQuery) ([]*model.VitalSigns, error) {
	var out []*model.VitalSigns
	for _, v := range f.vitals {
		if q.PatientID != nil && v.PatientID != *q.PatientID {
			continue
		}
		if q.From != nil && v.RecordedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !v.RecordedAt.Before(*q.To) {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fixture struct {
	service       *Service
	appointments  *fakeAppointmentRepo
	prescriptions *fakePrescriptionRepo
	vitals        *fakeVitalsRepo
	users         *fakeUserRepo
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		appointments:  &fakeAppointmentRepo{},
		prescriptions: &fakePrescriptionRepo{},
		vitals:        &fakeVitalsRepo{},
		users:         &fakeUserRepo{users: make(map[uuid.UUID]*model.User)},
		now:           time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(
		f.appointments,
		f.prescriptions,
		f.vitals,
		f.users,
		logger.NewLogger(nil),
		metrics.NewMetrics(prometheus.NewRegistry(), "test"),
	)
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addUser(u *model.User) {
	f.users.users[u.ID] = u
}

func TestGetReportDoctor(t *testing.T) {
	f := newFixture(t)

	doctor := namedDoctor("Jane", "Smith", "Cardiology")
	f.addUser(doctor)

	patient := uuid.New()
	f.appointments.appointments = []*model.Appointment{
		doctorAppt(doctor.ID, patient, f.now.AddDate(0, 0, -5), model.AppointmentStatusCompleted, 30),
	}

	report, err := f.service.GetReport(context.Background(), doctor.ID, model.UserRoleDoctor, nil)
	require.NoError(t, err)
	require.NotNil(t, report.Doctor)
	assert.Nil(t, report.Patient)
	assert.Equal(t, model.UserRoleDoctor, report.UserRole)
	assert.Equal(t, f.now.UTC(), report.GeneratedAt)
	assert.Equal(t, 1, report.Doctor.Overview.TotalAppointments)
	assert.Equal(t, 100.0, report.Doctor.Overview.CompletionRate)
}

func TestGetReportPatient(t *testing.T) {
	f := newFixture(t)

	doctor := namedDoctor("Jane", "Smith", "Cardiology")
	f.addUser(doctor)

	patient := &model.User{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Pat",
		LastName:  "Doe",
		Role:      model.UserRolePatient,
	}
	f.addUser(patient)

	f.appointments.appointments = []*model.Appointment{
		doctorAppt(doctor.ID, patient.ID, f.now.AddDate(0, 0, -10), model.AppointmentStatusCompleted, 30),
	}

	report, err := f.service.GetReport(context.Background(), patient.ID, model.UserRolePatient, nil)
	require.NoError(t, err)
	require.NotNil(t, report.Patient)
	assert.Nil(t, report.Doctor)
	assert.Equal(t, 1, report.Patient.Overview.TotalAppointments)
	assert.Equal(t, "Jane Smith", report.Patient.Overview.PrimaryDoctor)
}

func TestGetReportUnknownRole(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.GetReport(context.Background(), uuid.New(), model.UserRoleAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleAdmin, report.UserRole)
	assert.Nil(t, report.Doctor)
	assert.Nil(t, report.Patient)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestGetReportPropagatesLoadErrors(t *testing.T) {
	f := newFixture(t)
	f.appointments.err = errors.New("connection refused")

	_, err := f.service.GetReport(context.Background(), uuid.New(), model.UserRoleDoctor, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load doctor analytics data")
}

func TestDoctorReportWindowIsHalfOpen(t *testing.T) {
	f := newFixture(t)

	doctor := namedDoctor("Jane", "Smith", "Cardiology")
	f.addUser(doctor)

	patient := uuid.New()
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// First two fall inside [start, end); the boundary end and anything
	// before start stay out.
	f.appointments.appointments = []*model.Appointment{
		doctorAppt(doctor.ID, patient, start, model.AppointmentStatusCompleted, 30),
		doctorAppt(doctor.ID, patient, end.Add(-time.Second), model.AppointmentStatusCompleted, 30),
		doctorAppt(doctor.ID, patient, end, model.AppointmentStatusCompleted, 30),
		doctorAppt(doctor.ID, patient, start.Add(-time.Second), model.AppointmentStatusCompleted, 30),
	}

	report, err := f.service.GetDoctorReport(context.Background(), doctor.ID, &model.AnalyticsFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Overview.TotalAppointments)
}

func TestPatientReportDefaultsToLastYear(t *testing.T) {
	f := newFixture(t)

	doctor := namedDoctor("Jane", "Smith", "Cardiology")
	f.addUser(doctor)

	patient := uuid.New()
	f.appointments.appointments = []*model.Appointment{
		doctorAppt(doctor.ID, patient, f.now.AddDate(0, -6, 0), model.AppointmentStatusCompleted, 30),
		doctorAppt(doctor.ID, patient, f.now.AddDate(-2, 0, 0), model.AppointmentStatusCompleted, 30),
	}

	report, err := f.service.GetPatientReport(context.Background(), patient, nil)
	require.NoError(t, err)

	// History is windowed; overview totals span the full record.
	assert.Len(t, report.AppointmentHistory, 1)
	assert.Equal(t, 2, report.Overview.TotalAppointments)
}

func TestDoctorReportMissingDoctorStillComputes(t *testing.T) {
	f := newFixture(t)

	doctorID := uuid.New()
	patient := uuid.New()
	f.appointments.appointments = []*model.Appointment{
		doctorAppt(doctorID, patient, f.now.AddDate(0, 0, -5), model.AppointmentStatusCompleted, 30),
	}

	report, err := f.service.GetDoctorReport(context.Background(), doctorID, nil)
	require.NoError(t, err)
	require.Len(t, report.RevenueMetrics, 1)
	// Unknown specialization falls back to the default fee.
	assert.Equal(t, 150.0, report.RevenueMetrics[0].Revenue)
}

func TestGetReportIsDeterministic(t *testing.T) {
	f := newFixture(t)

	doctor := namedDoctor("Jane", "Smith", "Cardiology")
	f.addUser(doctor)

	patients := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, p := range patients {
		f.appointments.appointments = append(f.appointments.appointments,
			doctorAppt(doctor.ID, p, f.now.AddDate(0, 0, -i-1), model.AppointmentStatusCompleted, 30))
		f.prescriptions.prescriptions = append(f.prescriptions.prescriptions,
			prescription(doctor.ID, p, "Aspirin", "100mg", true, f.now.AddDate(0, 0, -i-1)),
			prescription(doctor.ID, p, "Metformin", "500mg", true, f.now.AddDate(0, 0, -i-1)))
	}

	first, err := f.service.GetReport(context.Background(), doctor.ID, model.UserRoleDoctor, nil)
	require.NoError(t, err)
	second, err := f.service.GetReport(context.Background(), doctor.ID, model.UserRoleDoctor, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPatientReportVitalsLimited(t *testing.T) {
	f := newFixture(t)

	patient := uuid.New()
	for i := 0; i < 15; i++ {
		f.vitals.vitals = append(f.vitals.vitals, &model.VitalSigns{
			ID:         uuid.New(),
			PatientID:  patient,
			HeartRate:  fptr(70 + float64(i)),
			RecordedAt: f.now.AddDate(0, 0, -i-1),
		})
	}

	report, err := f.service.GetPatientReport(context.Background(), patient, nil)
	require.NoError(t, err)

	// Only the latest records feed health metrics, newest first.
	assert.Len(t, report.HealthMetrics, healthMetricsLimit)
	assert.Equal(t, 70.0, report.HealthMetrics[0].Value)
	assert.Equal(t, 79.0, report.HealthMetrics[healthMetricsLimit-1].Value)
}
