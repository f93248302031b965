package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

func newPatientSnapshot(now time.Time) *patientSnapshot {
	return &patientSnapshot{
		patientID: uuid.New(),
		window:    Window{Start: now.AddDate(-1, 0, 0), End: now},
		now:       now,
		doctors:   make(map[uuid.UUID]*model.User),
	}
}

func namedDoctor(first, last, specialization string) *model.User {
	return &model.User{
		Base:           model.Base{ID: uuid.New()},
		FirstName:      first,
		LastName:       last,
		Role:           model.UserRoleDoctor,
		Specialization: specialization,
	}
}

func TestPatientOverview(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	drSmith := namedDoctor("Jane", "Smith", "Cardiology")
	drJones := namedDoctor("Tom", "Jones", "Neurology")
	snap.doctors[drSmith.ID] = drSmith
	snap.doctors[drJones.ID] = drJones

	lastVisit := now.AddDate(0, 0, -30)
	next := now.AddDate(0, 0, 5)
	snap.allAppointments = []*model.Appointment{
		doctorAppt(drSmith.ID, snap.patientID, now.AddDate(0, 0, -90), model.AppointmentStatusCompleted, 30),
		doctorAppt(drSmith.ID, snap.patientID, lastVisit, model.AppointmentStatusCompleted, 30),
		doctorAppt(drJones.ID, snap.patientID, now.AddDate(0, 0, -60), model.AppointmentStatusNoShow, 30),
		doctorAppt(drJones.ID, snap.patientID, next, model.AppointmentStatusScheduled, 30),
		doctorAppt(drJones.ID, snap.patientID, now.AddDate(0, 0, 20), model.AppointmentStatusScheduled, 30),
	}
	snap.allPrescriptions = []*model.Prescription{
		prescription(drSmith.ID, snap.patientID, "Aspirin", "100mg", true, lastVisit),
		prescription(drSmith.ID, snap.patientID, "Lisinopril", "10mg", false, lastVisit),
	}

	ov := patientOverview(snap)
	assert.Equal(t, 5, ov.TotalAppointments)
	assert.Equal(t, 2, ov.CompletedAppointments)
	assert.Equal(t, 2, ov.TotalPrescriptions)
	assert.Equal(t, 1, ov.ActivePrescriptions)
	assert.Equal(t, 2, ov.UniqueDoctorsVisited)
	require.NotNil(t, ov.LastVisit)
	assert.Equal(t, lastVisit, *ov.LastVisit)
	require.NotNil(t, ov.NextAppointment)
	assert.Equal(t, next, *ov.NextAppointment)
	assert.Equal(t, "Tom Jones", ov.PrimaryDoctor)
}

func TestPatientOverviewEmpty(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ov := patientOverview(newPatientSnapshot(now))

	assert.Zero(t, ov.TotalAppointments)
	assert.Nil(t, ov.LastVisit)
	assert.Nil(t, ov.NextAppointment)
	assert.Empty(t, ov.PrimaryDoctor)
}

func TestAppointmentHistoryNewestFirst(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	dr := namedDoctor("Jane", "Smith", "Cardiology")
	snap.doctors[dr.ID] = dr

	older := doctorAppt(dr.ID, snap.patientID, now.AddDate(0, 0, -60), model.AppointmentStatusCompleted, 30)
	older.Reason = "Checkup"
	newer := doctorAppt(dr.ID, snap.patientID, now.AddDate(0, 0, -10), model.AppointmentStatusCompleted, 45)
	snap.appointments = []*model.Appointment{older, newer}

	snap.allPrescriptions = []*model.Prescription{
		func() *model.Prescription {
			p := prescription(dr.ID, snap.patientID, "Aspirin", "100mg", true, older.AppointmentDate)
			p.AppointmentID = &older.ID
			return p
		}(),
	}

	history := appointmentHistory(snap)
	require.Len(t, history, 2)

	assert.Equal(t, newer.AppointmentDate, history[0].Date)
	assert.False(t, history[0].HasPrescription)
	assert.Equal(t, older.AppointmentDate, history[1].Date)
	assert.True(t, history[1].HasPrescription)
	assert.Equal(t, "Jane Smith", history[1].DoctorName)
	assert.Equal(t, "Cardiology", history[1].Specialization)
	assert.Equal(t, "Checkup", history[1].Reason)
}

func TestAppointmentHistoryUnknownDoctor(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	snap.appointments = []*model.Appointment{
		doctorAppt(uuid.New(), snap.patientID, now.AddDate(0, 0, -10), model.AppointmentStatusCompleted, 30),
	}

	history := appointmentHistory(snap)
	require.Len(t, history, 1)
	assert.Empty(t, history[0].DoctorName)
	assert.Empty(t, history[0].Specialization)
}

func TestPrescriptionTrends(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	dr := namedDoctor("Jane", "Smith", "Cardiology")
	snap.doctors[dr.ID] = dr

	snap.prescriptions = []*model.Prescription{
		prescription(dr.ID, snap.patientID, "Aspirin", "100mg", true, now.AddDate(0, 0, -40)),
		prescription(dr.ID, snap.patientID, "Metformin", "500mg", false, now.AddDate(0, 0, -5)),
	}

	trends := prescriptionTrends(snap)
	require.Len(t, trends, 2)

	assert.Equal(t, "Metformin", trends[0].MedicineName)
	assert.Equal(t, "Inactive", trends[0].Status)
	assert.Equal(t, "Aspirin", trends[1].MedicineName)
	assert.Equal(t, "Active", trends[1].Status)
	assert.Equal(t, "Jane Smith", trends[0].DoctorName)
}

func fptr(v float64) *float64 { return &v }

func TestHealthMetrics(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	recorded := now.AddDate(0, 0, -3)
	snap.vitals = []*model.VitalSigns{
		{
			ID:                     uuid.New(),
			PatientID:              snap.patientID,
			BloodPressureSystolic:  fptr(135),
			BloodPressureDiastolic: fptr(85),
			HeartRate:              fptr(72),
			Weight:                 fptr(80),
			Temperature:            fptr(38.5),
			RecordedAt:             recorded,
		},
	}

	metrics := healthMetrics(snap)
	require.Len(t, metrics, 4)

	assert.Equal(t, "Blood Pressure", metrics[0].MetricName)
	assert.Equal(t, 135.0, metrics[0].Value)
	assert.Equal(t, "135/85 mmHg", metrics[0].Unit)
	assert.Equal(t, model.VitalStatusWarning, metrics[0].Status)

	assert.Equal(t, "Heart Rate", metrics[1].MetricName)
	assert.Equal(t, model.VitalStatusNormal, metrics[1].Status)

	assert.Equal(t, "Weight", metrics[2].MetricName)
	assert.Equal(t, "Physical", metrics[2].Category)
	assert.Equal(t, model.VitalStatusNormal, metrics[2].Status)

	assert.Equal(t, "Temperature", metrics[3].MetricName)
	assert.Equal(t, model.VitalStatusCritical, metrics[3].Status)
}

func TestHealthMetricsSkipsPartialBloodPressure(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	snap.vitals = []*model.VitalSigns{
		{
			ID:                    uuid.New(),
			PatientID:             snap.patientID,
			BloodPressureSystolic: fptr(120),
			RecordedAt:            now.AddDate(0, 0, -1),
		},
	}

	assert.Empty(t, healthMetrics(snap))
}

func TestHealthMetricsDeduplicates(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	recorded := now.AddDate(0, 0, -3)
	vital := &model.VitalSigns{
		ID:         uuid.New(),
		PatientID:  snap.patientID,
		HeartRate:  fptr(72),
		RecordedAt: recorded,
	}
	snap.vitals = []*model.VitalSigns{vital, vital}

	assert.Len(t, healthMetrics(snap), 1)
}

func TestVisitFrequencyCompletedOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	dr := namedDoctor("Jane", "Smith", "Cardiology")
	snap.doctors[dr.ID] = dr

	may := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	completed := doctorAppt(dr.ID, snap.patientID, may, model.AppointmentStatusCompleted, 30)
	completed.Reason = "Follow-up"
	repeat := doctorAppt(dr.ID, snap.patientID, may.AddDate(0, 0, 7), model.AppointmentStatusCompleted, 30)
	repeat.Reason = "Follow-up"
	snap.appointments = []*model.Appointment{
		completed,
		repeat,
		doctorAppt(dr.ID, snap.patientID, may, model.AppointmentStatusCancelled, 30),
	}

	frequency := visitFrequency(snap)
	require.Len(t, frequency, 1)
	assert.Equal(t, "2025-05", frequency[0].Period)
	assert.Equal(t, 2, frequency[0].VisitCount)
	assert.Equal(t, []string{"Jane Smith"}, frequency[0].Doctors)
	assert.Equal(t, []string{"Follow-up"}, frequency[0].Reasons)
}

func TestPatientHealthScorePerfect(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	dr := uuid.New()
	for i := 0; i < 10; i++ {
		snap.allAppointments = append(snap.allAppointments,
			doctorAppt(dr, snap.patientID, now.AddDate(0, 0, -i*20), model.AppointmentStatusCompleted, 30))
	}

	score := patientHealthScore(snap)
	assert.Equal(t, 100.0, score.OverallScore)
	assert.Equal(t, 100.0, score.ComplianceScore)
	assert.Equal(t, 100.0, score.VisitConsistencyScore)
	// No prescriptions at all counts as full adherence.
	assert.Equal(t, 100.0, score.PrescriptionAdherenceScore)
	assert.Equal(t, model.RiskLevelLow, score.RiskLevel)
	assert.Contains(t, score.HealthFlags, "Excellent appointment compliance")
	assert.Contains(t, score.HealthFlags, "Regular checkups")
	assert.Contains(t, score.HealthFlags, "Good medication compliance")
	assert.Contains(t, score.Recommendations, "Continue maintaining your current health routine")
}

func TestPatientHealthScoreEmptyHistory(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	score := patientHealthScore(newPatientSnapshot(now))

	assert.Equal(t, 0.0, score.ComplianceScore)
	assert.Equal(t, 0.0, score.VisitConsistencyScore)
	assert.Equal(t, 100.0, score.PrescriptionAdherenceScore)
	assert.InDelta(t, 33.3, score.OverallScore, 0.001)
	assert.Equal(t, model.RiskLevelHigh, score.RiskLevel)
	assert.Contains(t, score.Recommendations, "Consider setting appointment reminders")
	assert.Contains(t, score.Recommendations, "Schedule regular checkups with your doctor")
}

func TestPatientHealthScoreMediumRisk(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := newPatientSnapshot(now)

	dr := uuid.New()
	// 3 completed of 6 within the last year: compliance 50, consistency 60.
	for i := 0; i < 3; i++ {
		snap.allAppointments = append(snap.allAppointments,
			doctorAppt(dr, snap.patientID, now.AddDate(0, 0, -i*30-1), model.AppointmentStatusCompleted, 30))
	}
	for i := 0; i < 3; i++ {
		snap.allAppointments = append(snap.allAppointments,
			doctorAppt(dr, snap.patientID, now.AddDate(0, 0, -i*30-2), model.AppointmentStatusCancelled, 30))
	}

	// 4 of 5 prescriptions active: adherence 80.
	for i := 0; i < 4; i++ {
		snap.allPrescriptions = append(snap.allPrescriptions,
			prescription(dr, snap.patientID, "Aspirin", "100mg", true, now))
	}
	snap.allPrescriptions = append(snap.allPrescriptions,
		prescription(dr, snap.patientID, "Aspirin", "100mg", false, now))

	score := patientHealthScore(snap)
	assert.Equal(t, 50.0, score.ComplianceScore)
	assert.Equal(t, 60.0, score.VisitConsistencyScore)
	assert.Equal(t, 80.0, score.PrescriptionAdherenceScore)
	assert.InDelta(t, 63.3, score.OverallScore, 0.001)
	assert.Equal(t, model.RiskLevelMedium, score.RiskLevel)
	assert.Empty(t, score.HealthFlags)
}
