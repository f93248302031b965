package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jwalitptl/health-analytics-api/internal/model"
	"github.com/jwalitptl/health-analytics-api/internal/repository"
	"github.com/jwalitptl/health-analytics-api/pkg/logger"
	"github.com/jwalitptl/health-analytics-api/pkg/metrics"
)

// Default windows per role when the filter names no range.
const (
	defaultDoctorRange  = model.TimeRangeLastMonth
	defaultPatientRange = model.TimeRangeLastYear
)

// healthMetricsLimit caps how many vital-sign records feed the patient
// health-metrics section.
const healthMetricsLimit = 10

// Service computes on-demand analytics reports. Each request re-reads the
// data source and computes fresh; nothing is cached or written back.
type Service struct {
	appointments  repository.AppointmentRepository
	prescriptions repository.PrescriptionRepository
	vitals        repository.VitalSignsRepository
	users         repository.UserRepository
	logger        *logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	prescriptions repository.PrescriptionRepository,
	vitals repository.VitalSignsRepository,
	users repository.UserRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments:  appointments,
		prescriptions: prescriptions,
		vitals:        vitals,
		users:         users,
		logger:        log,
		metrics:       m,
		now:           time.Now,
	}
}

// GetReport builds the role-appropriate report. Roles outside Doctor/Patient
// produce a report with only the role tag and timestamp populated; the
// excluded auth layer owns rejecting callers, not this service.
func (s *Service) GetReport(ctx context.Context, userID uuid.UUID, role string, filter *model.AnalyticsFilter) (*model.AnalyticsReport, error) {
	start := s.now()
	report := &model.AnalyticsReport{
		UserRole:    role,
		GeneratedAt: start.UTC(),
	}

	switch role {
	case model.UserRoleDoctor:
		doctor, err := s.GetDoctorReport(ctx, userID, filter)
		if err != nil {
			s.metrics.ReportErrors.WithLabelValues(role).Inc()
			return nil, err
		}
		report.Doctor = doctor
	case model.UserRolePatient:
		patient, err := s.GetPatientReport(ctx, userID, filter)
		if err != nil {
			s.metrics.ReportErrors.WithLabelValues(role).Inc()
			return nil, err
		}
		report.Patient = patient
	default:
		s.logger.Debug("no analytics sections for role", "role", role)
	}

	s.metrics.ReportsGenerated.WithLabelValues(role).Inc()
	s.metrics.ReportDuration.WithLabelValues(role).Observe(time.Since(start).Seconds())
	return report, nil
}

// GetDoctorReport computes every doctor section over a snapshot of the
// doctor's records. The snapshot reads run concurrently; the extractors are
// pure functions over the loaded data.
func (s *Service) GetDoctorReport(ctx context.Context, doctorID uuid.UUID, filter *model.AnalyticsFilter) (*model.DoctorReport, error) {
	window := resolveWindow(filter, defaultDoctorRange, s.now())

	snap, err := s.loadDoctorSnapshot(ctx, doctorID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor analytics data: %w", err)
	}

	return &model.DoctorReport{
		Overview:            doctorOverview(snap),
		AppointmentTrends:   appointmentTrends(snap),
		PatientDistribution: patientDistribution(snap),
		PrescriptionStats:   prescriptionStats(snap),
		RevenueMetrics:      revenueMetrics(snap),
		PopularMedicines:    popularMedicines(snap),
		Performance:         performanceMetrics(snap),
	}, nil
}

// GetPatientReport computes every patient section over a snapshot of the
// patient's records.
func (s *Service) GetPatientReport(ctx context.Context, patientID uuid.UUID, filter *model.AnalyticsFilter) (*model.PatientReport, error) {
	window := resolveWindow(filter, defaultPatientRange, s.now())

	snap, err := s.loadPatientSnapshot(ctx, patientID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient analytics data: %w", err)
	}

	return &model.PatientReport{
		Overview:           patientOverview(snap),
		AppointmentHistory: appointmentHistory(snap),
		PrescriptionTrends: prescriptionTrends(snap),
		HealthMetrics:      healthMetrics(snap),
		VisitFrequency:     visitFrequency(snap),
		HealthScore:        patientHealthScore(snap),
	}, nil
}

// doctorSnapshot is the immutable record set a doctor report is derived from.
type doctorSnapshot struct {
	doctorID        uuid.UUID
	doctor          *model.User
	window          Window
	now             time.Time
	appointments    []*model.Appointment  // within window
	allAppointments []*model.Appointment  // full history
	prescriptions   []*model.Prescription // within window
	patients        map[uuid.UUID]*model.User
}

func (s *Service) loadDoctorSnapshot(ctx context.Context, doctorID uuid.UUID, window Window) (*doctorSnapshot, error) {
	snap := &doctorSnapshot{
		doctorID: doctorID,
		window:   window,
		now:      s.now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.appointments, err = s.appointments.List(ctx, &model.AppointmentQuery{
			DoctorID: &doctorID,
			From:     &window.Start,
			To:       &window.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.allAppointments, err = s.appointments.List(ctx, &model.AppointmentQuery{
			DoctorID: &doctorID,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.prescriptions, err = s.prescriptions.List(ctx, &model.PrescriptionQuery{
			DoctorID: &doctorID,
			From:     &window.Start,
			To:       &window.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.doctor, err = s.users.Get(ctx, doctorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	patients, err := s.resolveUsers(ctx, patientIDs(snap.allAppointments))
	if err != nil {
		return nil, err
	}
	snap.patients = patients

	return snap, nil
}

// patientSnapshot is the immutable record set a patient report is derived from.
type patientSnapshot struct {
	patientID        uuid.UUID
	window           Window
	now              time.Time
	appointments     []*model.Appointment  // within window
	allAppointments  []*model.Appointment  // full history
	prescriptions    []*model.Prescription // within window
	allPrescriptions []*model.Prescription // full history
	vitals           []*model.VitalSigns   // within window, newest first
	doctors          map[uuid.UUID]*model.User
}

func (s *Service) loadPatientSnapshot(ctx context.Context, patientID uuid.UUID, window Window) (*patientSnapshot, error) {
	snap := &patientSnapshot{
		patientID: patientID,
		window:    window,
		now:       s.now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.appointments, err = s.appointments.List(ctx, &model.AppointmentQuery{
			PatientID: &patientID,
			From:      &window.Start,
			To:        &window.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.allAppointments, err = s.appointments.List(ctx, &model.AppointmentQuery{
			PatientID: &patientID,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.prescriptions, err = s.prescriptions.List(ctx, &model.PrescriptionQuery{
			PatientID: &patientID,
			From:      &window.Start,
			To:        &window.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.allPrescriptions, err = s.prescriptions.List(ctx, &model.PrescriptionQuery{
			PatientID: &patientID,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snap.vitals, err = s.vitals.List(ctx, &model.VitalSignsQuery{
			PatientID: &patientID,
			From:      &window.Start,
			To:        &window.End,
			Limit:     healthMetricsLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doctors, err := s.resolveUsers(ctx, doctorIDs(snap.allAppointments, snap.allPrescriptions))
	if err != nil {
		return nil, err
	}
	snap.doctors = doctors

	return snap, nil
}

// resolveUsers fetches the referenced users in one read. Missing users are
// simply absent from the map; extractors render empty names for them.
func (s *Service) resolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func patientIDs(appointments []*model.Appointment) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, apt := range appointments {
		if _, ok := seen[apt.PatientID]; !ok {
			seen[apt.PatientID] = struct{}{}
			ids = append(ids, apt.PatientID)
		}
	}
	return ids
}

func doctorIDs(appointments []*model.Appointment, prescriptions []*model.Prescription) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, apt := range appointments {
		if _, ok := seen[apt.DoctorID]; !ok {
			seen[apt.DoctorID] = struct{}{}
			ids = append(ids, apt.DoctorID)
		}
	}
	for _, p := range prescriptions {
		if _, ok := seen[p.DoctorID]; !ok {
			seen[p.DoctorID] = struct{}{}
			ids = append(ids, p.DoctorID)
		}
	}
	return ids
}
