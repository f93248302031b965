package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

// monthKey buckets records into (year, month) trend series.
type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	u := t.UTC()
	return monthKey{year: u.Year(), month: u.Month()}
}

func (k monthKey) period() string {
	return fmt.Sprintf("%04d-%02d", k.year, int(k.month))
}

func (k monthKey) date() time.Time {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC)
}

func sortedMonths[T any](buckets map[monthKey]T) []monthKey {
	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].date().Before(keys[j].date()) })
	return keys
}

func sameDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}

func doctorOverview(s *doctorSnapshot) model.OverviewMetrics {
	patients := make(map[uuid.UUID]struct{})
	var completed int
	for _, apt := range s.appointments {
		patients[apt.PatientID] = struct{}{}
		if apt.Status == model.AppointmentStatusCompleted {
			completed++
		}
	}

	activePrescriptions := 0
	for _, p := range s.prescriptions {
		if p.IsActive {
			activePrescriptions++
		}
	}

	// Today and pending counts deliberately ignore the window.
	var today, pending int
	for _, apt := range s.allAppointments {
		if sameDay(apt.AppointmentDate, s.now) {
			today++
		}
		if apt.Status == model.AppointmentStatusScheduled && apt.AppointmentDate.After(s.now) {
			pending++
		}
	}

	total := len(s.appointments)
	return model.OverviewMetrics{
		TotalPatients:         len(patients),
		TotalAppointments:     total,
		CompletedAppointments: completed,
		ActivePrescriptions:   activePrescriptions,
		TodayAppointments:     today,
		PendingAppointments:   pending,
		CompletionRate:        completionRate(completed, total),
		PatientSatisfaction:   patientSatisfaction(s.appointments),
	}
}

func appointmentTrends(s *doctorSnapshot) []model.AppointmentTrend {
	buckets := make(map[monthKey][]*model.Appointment)
	for _, apt := range s.appointments {
		k := monthOf(apt.AppointmentDate)
		buckets[k] = append(buckets[k], apt)
	}

	trends := make([]model.AppointmentTrend, 0, len(buckets))
	for _, k := range sortedMonths(buckets) {
		trend := model.AppointmentTrend{
			Period: k.period(),
			Date:   k.date(),
		}
		for _, apt := range buckets[k] {
			switch apt.Status {
			case model.AppointmentStatusScheduled:
				trend.Scheduled++
			case model.AppointmentStatusCompleted:
				trend.Completed++
			case model.AppointmentStatusCancelled:
				trend.Cancelled++
			case model.AppointmentStatusNoShow:
				trend.NoShow++
			}
		}
		trend.CompletionRate = completionRate(trend.Completed, len(buckets[k]))
		trends = append(trends, trend)
	}
	return trends
}

// patientDistribution buckets every patient the doctor has ever seen by age
// group. Percentages are relative to patients with a known birth date.
func patientDistribution(s *doctorSnapshot) []model.PatientDistribution {
	counts := make(map[string]int)
	known := 0
	for _, id := range patientIDs(s.allAppointments) {
		patient, ok := s.patients[id]
		if !ok || patient.DateOfBirth == nil {
			continue
		}
		counts[ageGroup(*patient.DateOfBirth, s.now)]++
		known++
	}

	distribution := make([]model.PatientDistribution, 0, len(counts))
	for _, label := range []string{"Under 18", "18-29", "30-44", "45-59", "60+"} {
		n, ok := counts[label]
		if !ok {
			continue
		}
		distribution = append(distribution, model.PatientDistribution{
			Category:   "Age",
			Label:      label,
			Count:      n,
			Percentage: float64(n) / float64(known) * 100,
		})
	}
	return distribution
}

func prescriptionStats(s *doctorSnapshot) []model.PrescriptionStats {
	buckets := make(map[monthKey][]*model.Prescription)
	for _, p := range s.prescriptions {
		k := monthOf(p.CreatedAt)
		buckets[k] = append(buckets[k], p)
	}

	stats := make([]model.PrescriptionStats, 0, len(buckets))
	for _, k := range sortedMonths(buckets) {
		medicines := make(map[string]struct{})
		patients := make(map[uuid.UUID]struct{})
		for _, p := range buckets[k] {
			medicines[p.MedicineName] = struct{}{}
			patients[p.PatientID] = struct{}{}
		}

		avg := 0.0
		if len(patients) > 0 {
			avg = float64(len(buckets[k])) / float64(len(patients))
		}

		stats = append(stats, model.PrescriptionStats{
			Period:                         k.period(),
			Date:                           k.date(),
			TotalPrescriptions:             len(buckets[k]),
			UniqueMedicines:                len(medicines),
			UniquePatients:                 len(patients),
			AveragePrescriptionsPerPatient: avg,
		})
	}
	return stats
}

// revenueMetrics estimates monthly revenue as completed appointments times
// the doctor's consultation fee. The fee is constant within a bucket, so the
// per-appointment average equals the fee.
func revenueMetrics(s *doctorSnapshot) []model.RevenueMetric {
	fee := consultationFee(doctorSpecialization(s.doctor))

	buckets := make(map[monthKey]int)
	for _, apt := range s.appointments {
		if apt.Status == model.AppointmentStatusCompleted {
			buckets[monthOf(apt.AppointmentDate)]++
		}
	}

	revenue := make([]model.RevenueMetric, 0, len(buckets))
	for _, k := range sortedMonths(buckets) {
		n := buckets[k]
		revenue = append(revenue, model.RevenueMetric{
			Period:                       k.period(),
			Date:                         k.date(),
			Revenue:                      float64(n) * fee,
			AppointmentCount:             n,
			AverageRevenuePerAppointment: fee,
		})
	}
	return revenue
}

func doctorSpecialization(doctor *model.User) string {
	if doctor == nil {
		return ""
	}
	return doctor.Specialization
}

const popularMedicinesLimit = 10

// popularMedicines ranks the doctor's windowed prescriptions by medicine.
// Count ties order lexicographically by name; dosage mode ties keep the
// first-seen dosage, both so repeated runs yield identical output.
func popularMedicines(s *doctorSnapshot) []model.PopularMedicine {
	type group struct {
		count       int
		patients    map[uuid.UUID]struct{}
		dosageCount map[string]int
		dosageOrder []string
	}

	groups := make(map[string]*group)
	var names []string
	for _, p := range s.prescriptions {
		g, ok := groups[p.MedicineName]
		if !ok {
			g = &group{
				patients:    make(map[uuid.UUID]struct{}),
				dosageCount: make(map[string]int),
			}
			groups[p.MedicineName] = g
			names = append(names, p.MedicineName)
		}
		g.count++
		g.patients[p.PatientID] = struct{}{}
		if _, seen := g.dosageCount[p.Dosage]; !seen {
			g.dosageOrder = append(g.dosageOrder, p.Dosage)
		}
		g.dosageCount[p.Dosage]++
	}

	sort.Slice(names, func(i, j int) bool {
		gi, gj := groups[names[i]], groups[names[j]]
		if gi.count != gj.count {
			return gi.count > gj.count
		}
		return names[i] < names[j]
	})
	if len(names) > popularMedicinesLimit {
		names = names[:popularMedicinesLimit]
	}

	total := len(s.prescriptions)

	medicines := make([]model.PopularMedicine, 0, len(names))
	for _, name := range names {
		g := groups[name]

		mode := ""
		best := 0
		for _, dosage := range g.dosageOrder {
			if g.dosageCount[dosage] > best {
				best = g.dosageCount[dosage]
				mode = dosage
			}
		}

		pct := 0.0
		if total > 0 {
			pct = float64(g.count) / float64(total) * 100
		}

		medicines = append(medicines, model.PopularMedicine{
			MedicineName:      name,
			PrescriptionCount: g.count,
			PatientCount:      len(g.patients),
			Percentage:        pct,
			MostCommonDosage:  mode,
		})
	}
	return medicines
}

func performanceMetrics(s *doctorSnapshot) model.PerformanceMetrics {
	total := len(s.appointments)
	var completed, durationSum int
	for _, apt := range s.appointments {
		durationSum += apt.Duration
		if apt.Status == model.AppointmentStatusCompleted {
			completed++
		}
	}

	avgDuration := 0.0
	if total > 0 {
		avgDuration = float64(durationSum) / float64(total)
	}

	// Completion rate stands in for punctuality: the model carries no
	// arrival timestamps to measure against.
	onTimeRate := completionRate(completed, total)

	// Assumes a 45 minute average appointment and 8 hour workdays.
	workingHours := float64(completed) * 0.75
	utilization := 0.0
	if days := workingDays(s.window.Start, s.window.End); days > 0 {
		utilization = clamp(workingHours/(float64(days)*8)*100, 0, 100)
	}

	return model.PerformanceMetrics{
		AverageAppointmentDuration: avgDuration,
		PatientRetentionRate:       patientRetentionRate(s.appointments),
		AppointmentCompletionRate:  completionRate(completed, total),
		OnTimeRate:                 onTimeRate,
		TotalWorkingHours:          int(workingHours),
		UtilizationRate:            utilization,
	}
}
