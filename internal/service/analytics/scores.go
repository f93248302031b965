package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-analytics-api/internal/model"
)

// Per-specialization consultation fee used to estimate revenue. These are
// fixed estimates, not billing figures.
const defaultConsultationFee = 150

var consultationFees = map[string]float64{
	"cardiology":  200,
	"neurology":   250,
	"orthopedics": 180,
	"pediatrics":  150,
	"dermatology": 160,
	"psychiatry":  220,
}

func consultationFee(specialization string) float64 {
	if fee, ok := consultationFees[strings.ToLower(specialization)]; ok {
		return fee
	}
	return defaultConsultationFee
}

// completionRate returns completed/total as a percentage, 0 for an empty set.
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// patientSatisfaction is a proxy derived from completion and no-show rates,
// not actual patient feedback. Weighted 70/30 and clamped to [0, 100].
func patientSatisfaction(appointments []*model.Appointment) float64 {
	if len(appointments) == 0 {
		return 0
	}

	var completed, noShow int
	for _, apt := range appointments {
		switch apt.Status {
		case model.AppointmentStatusCompleted:
			completed++
		case model.AppointmentStatusNoShow:
			noShow++
		}
	}

	total := float64(len(appointments))
	satisfaction := (float64(completed)/total)*100*0.7 + (1-float64(noShow)/total)*100*0.3
	return clamp(satisfaction, 0, 100)
}

// patientRetentionRate is the percentage of distinct patients with more than
// one appointment in the window.
func patientRetentionRate(appointments []*model.Appointment) float64 {
	counts := make(map[uuid.UUID]int)
	for _, apt := range appointments {
		counts[apt.PatientID]++
	}
	if len(counts) == 0 {
		return 0
	}

	returning := 0
	for _, n := range counts {
		if n > 1 {
			returning++
		}
	}
	return float64(returning) / float64(len(counts)) * 100
}

// vitalSignStatus grades a measurement against fixed clinical thresholds.
// secondValue is only meaningful for blood pressure (diastolic). Unknown
// metric names grade as Normal.
func vitalSignStatus(metric string, value, secondValue float64) string {
	switch metric {
	case "BloodPressure":
		if value < 120 && secondValue < 80 {
			return model.VitalStatusNormal
		}
		if value < 140 && secondValue < 90 {
			return model.VitalStatusWarning
		}
		return model.VitalStatusCritical
	case "HeartRate":
		if value >= 60 && value <= 100 {
			return model.VitalStatusNormal
		}
		if value >= 50 && value <= 120 {
			return model.VitalStatusWarning
		}
		return model.VitalStatusCritical
	case "Temperature":
		if value >= 36.1 && value <= 37.2 {
			return model.VitalStatusNormal
		}
		if value >= 35.0 && value <= 38.0 {
			return model.VitalStatusWarning
		}
		return model.VitalStatusCritical
	default:
		return model.VitalStatusNormal
	}
}

// ageGroup buckets a birth date by calendar-year difference.
func ageGroup(dateOfBirth, now time.Time) string {
	age := now.Year() - dateOfBirth.Year()
	switch {
	case age < 18:
		return "Under 18"
	case age < 30:
		return "18-29"
	case age < 45:
		return "30-44"
	case age < 60:
		return "45-59"
	default:
		return "60+"
	}
}

// workingDays counts weekdays between start and end inclusive.
func workingDays(start, end time.Time) int {
	days := 0
	for d := truncateDay(start); !d.After(truncateDay(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
