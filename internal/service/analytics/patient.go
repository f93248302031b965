package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

func patientOverview(s *patientSnapshot) model.PatientOverview {
	overview := model.PatientOverview{
		TotalAppointments:  len(s.allAppointments),
		TotalPrescriptions: len(s.allPrescriptions),
	}

	doctorCounts := make(map[uuid.UUID]int)
	for _, apt := range s.allAppointments {
		doctorCounts[apt.DoctorID]++

		switch apt.Status {
		case model.AppointmentStatusCompleted:
			overview.CompletedAppointments++
			if overview.LastVisit == nil || apt.AppointmentDate.After(*overview.LastVisit) {
				d := apt.AppointmentDate
				overview.LastVisit = &d
			}
		case model.AppointmentStatusScheduled:
			if apt.AppointmentDate.After(s.now) {
				if overview.NextAppointment == nil || apt.AppointmentDate.Before(*overview.NextAppointment) {
					d := apt.AppointmentDate
					overview.NextAppointment = &d
				}
			}
		}
	}
	overview.UniqueDoctorsVisited = len(doctorCounts)

	for _, p := range s.allPrescriptions {
		if p.IsActive {
			overview.ActivePrescriptions++
		}
	}

	// Most-seen doctor; equal counts break lexicographically by id so the
	// pick is stable across runs.
	var primary uuid.UUID
	best := 0
	for id, n := range doctorCounts {
		if n > best || (n == best && best > 0 && id.String() < primary.String()) {
			primary = id
			best = n
		}
	}
	if doctor, ok := s.doctors[primary]; ok {
		overview.PrimaryDoctor = doctor.FullName()
	}

	return overview
}

func appointmentHistory(s *patientSnapshot) []model.AppointmentRecord {
	prescribed := make(map[uuid.UUID]bool)
	for _, p := range s.allPrescriptions {
		if p.AppointmentID != nil {
			prescribed[*p.AppointmentID] = true
		}
	}

	history := make([]model.AppointmentRecord, 0, len(s.appointments))
	for _, apt := range s.appointments {
		record := model.AppointmentRecord{
			Date:            apt.AppointmentDate,
			Status:          string(apt.Status),
			Reason:          apt.Reason,
			Duration:        apt.Duration,
			HasPrescription: prescribed[apt.ID],
		}
		if doctor, ok := s.doctors[apt.DoctorID]; ok {
			record.DoctorName = doctor.FullName()
			record.Specialization = doctor.Specialization
		}
		history = append(history, record)
	}

	sort.SliceStable(history, func(i, j int) bool { return history[i].Date.After(history[j].Date) })
	return history
}

func prescriptionTrends(s *patientSnapshot) []model.PrescriptionTrend {
	trends := make([]model.PrescriptionTrend, 0, len(s.prescriptions))
	for _, p := range s.prescriptions {
		status := "Inactive"
		if p.IsActive {
			status = "Active"
		}

		trend := model.PrescriptionTrend{
			Date:         p.CreatedAt,
			MedicineName: p.MedicineName,
			Status:       status,
			CreatedAt:    p.CreatedAt,
		}
		if doctor, ok := s.doctors[p.DoctorID]; ok {
			trend.DoctorName = doctor.FullName()
		}
		trends = append(trends, trend)
	}

	sort.SliceStable(trends, func(i, j int) bool { return trends[i].Date.After(trends[j].Date) })
	return trends
}

// healthMetrics renders one row per present measurement on the latest vital
// records, de-duplicated by (metric, recorded timestamp). Weight and height
// have no severity thresholds and always read Normal.
func healthMetrics(s *patientSnapshot) []model.HealthMetric {
	type dedupeKey struct {
		name string
		at   int64
	}
	seen := make(map[dedupeKey]struct{})

	metrics := make([]model.HealthMetric, 0, len(s.vitals))
	add := func(m model.HealthMetric) {
		k := dedupeKey{name: m.MetricName, at: m.RecordedDate.UnixNano()}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		metrics = append(metrics, m)
	}

	for _, v := range s.vitals {
		if v.BloodPressureSystolic != nil && v.BloodPressureDiastolic != nil {
			add(model.HealthMetric{
				MetricName:   "Blood Pressure",
				Category:     "Vital Signs",
				Value:        *v.BloodPressureSystolic,
				Unit:         fmt.Sprintf("%g/%g mmHg", *v.BloodPressureSystolic, *v.BloodPressureDiastolic),
				RecordedDate: v.RecordedAt,
				Status:       vitalSignStatus("BloodPressure", *v.BloodPressureSystolic, *v.BloodPressureDiastolic),
			})
		}
		if v.HeartRate != nil {
			add(model.HealthMetric{
				MetricName:   "Heart Rate",
				Category:     "Vital Signs",
				Value:        *v.HeartRate,
				Unit:         "bpm",
				RecordedDate: v.RecordedAt,
				Status:       vitalSignStatus("HeartRate", *v.HeartRate, 0),
			})
		}
		if v.Weight != nil {
			add(model.HealthMetric{
				MetricName:   "Weight",
				Category:     "Physical",
				Value:        *v.Weight,
				Unit:         "kg",
				RecordedDate: v.RecordedAt,
				Status:       model.VitalStatusNormal,
			})
		}
		if v.Height != nil {
			add(model.HealthMetric{
				MetricName:   "Height",
				Category:     "Physical",
				Value:        *v.Height,
				Unit:         "cm",
				RecordedDate: v.RecordedAt,
				Status:       model.VitalStatusNormal,
			})
		}
		if v.Temperature != nil {
			add(model.HealthMetric{
				MetricName:   "Temperature",
				Category:     "Vital Signs",
				Value:        *v.Temperature,
				Unit:         "°C",
				RecordedDate: v.RecordedAt,
				Status:       vitalSignStatus("Temperature", *v.Temperature, 0),
			})
		}
	}
	return metrics
}

func visitFrequency(s *patientSnapshot) []model.VisitFrequency {
	buckets := make(map[monthKey][]*model.Appointment)
	for _, apt := range s.appointments {
		if apt.Status == model.AppointmentStatusCompleted {
			k := monthOf(apt.AppointmentDate)
			buckets[k] = append(buckets[k], apt)
		}
	}

	frequency := make([]model.VisitFrequency, 0, len(buckets))
	for _, k := range sortedMonths(buckets) {
		entry := model.VisitFrequency{
			Period:     k.period(),
			Date:       k.date(),
			VisitCount: len(buckets[k]),
			Doctors:    []string{},
			Reasons:    []string{},
		}

		seenDoctors := make(map[string]struct{})
		seenReasons := make(map[string]struct{})
		for _, apt := range buckets[k] {
			if doctor, ok := s.doctors[apt.DoctorID]; ok {
				name := doctor.FullName()
				if _, dup := seenDoctors[name]; !dup {
					seenDoctors[name] = struct{}{}
					entry.Doctors = append(entry.Doctors, name)
				}
			}
			if apt.Reason != "" {
				if _, dup := seenReasons[apt.Reason]; !dup {
					seenReasons[apt.Reason] = struct{}{}
					entry.Reasons = append(entry.Reasons, apt.Reason)
				}
			}
		}
		frequency = append(frequency, entry)
	}
	return frequency
}

// patientHealthScore combines attendance compliance, visit regularity and
// prescription adherence into a composite 0-100 score. A patient with no
// prescriptions at all scores full adherence; absence is not penalized.
func patientHealthScore(s *patientSnapshot) model.PatientHealthScore {
	var completed int
	lastYearVisits := 0
	yearAgo := s.now.AddDate(-1, 0, 0)
	for _, apt := range s.allAppointments {
		if apt.Status == model.AppointmentStatusCompleted {
			completed++
		}
		if !apt.AppointmentDate.Before(yearAgo) {
			lastYearVisits++
		}
	}

	compliance := completionRate(completed, len(s.allAppointments))
	consistency := clamp(float64(lastYearVisits)*10, 0, 100)

	adherence := 100.0
	if len(s.allPrescriptions) > 0 {
		active := 0
		for _, p := range s.allPrescriptions {
			if p.IsActive {
				active++
			}
		}
		adherence = float64(active) / float64(len(s.allPrescriptions)) * 100
	}

	overall := (compliance + consistency + adherence) / 3

	riskLevel := model.RiskLevelHigh
	switch {
	case overall >= 80:
		riskLevel = model.RiskLevelLow
	case overall >= 60:
		riskLevel = model.RiskLevelMedium
	}

	flags := []string{}
	if compliance >= 90 {
		flags = append(flags, "Excellent appointment compliance")
	}
	if consistency >= 80 {
		flags = append(flags, "Regular checkups")
	}
	if adherence >= 90 {
		flags = append(flags, "Good medication compliance")
	}

	recommendations := []string{}
	if compliance < 80 {
		recommendations = append(recommendations, "Consider setting appointment reminders")
	}
	if consistency < 60 {
		recommendations = append(recommendations, "Schedule regular checkups with your doctor")
	}
	if adherence < 80 {
		recommendations = append(recommendations, "Follow prescribed medication schedule")
	}
	if overall >= 80 {
		recommendations = append(recommendations, "Continue maintaining your current health routine")
	}

	return model.PatientHealthScore{
		OverallScore:               round1(overall),
		ComplianceScore:            round1(compliance),
		VisitConsistencyScore:      round1(consistency),
		PrescriptionAdherenceScore: round1(adherence),
		RiskLevel:                  riskLevel,
		HealthFlags:                flags,
		Recommendations:            recommendations,
	}
}
