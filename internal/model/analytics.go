package model

import (
	"time"
)

// Named time-range tokens accepted by AnalyticsFilter.TimeRange.
type TimeRange string

const (
	TimeRangeLastWeek    TimeRange = "LastWeek"
	TimeRangeLastMonth   TimeRange = "LastMonth"
	TimeRangeLastQuarter TimeRange = "LastQuarter"
	TimeRangeLastYear    TimeRange = "LastYear"
)

// Vital-sign severity levels.
const (
	VitalStatusNormal   = "Normal"
	VitalStatusWarning  = "Warning"
	VitalStatusCritical = "Critical"
)

// Patient risk levels derived from the overall health score.
const (
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// AnalyticsFilter is the caller-supplied report filter. Explicit dates, when
// present, override the named time range.
type AnalyticsFilter struct {
	StartDate       *time.Time `json:"start_date" form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate         *time.Time `json:"end_date" form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
	TimeRange       TimeRange  `json:"time_range" form:"time_range" binding:"omitempty,timerange"`
	Specializations []string   `json:"specializations" form:"specializations"`
	PatientIDs      []string   `json:"patient_ids" form:"patient_ids"`
	IncludeInactive bool       `json:"include_inactive" form:"include_inactive"`
}

// AnalyticsReport is the top-level report envelope. Exactly one of the role
// sub-reports is populated; an unsupported role leaves both nil with only the
// role tag and timestamp set.
type AnalyticsReport struct {
	UserRole    string         `json:"user_role"`
	GeneratedAt time.Time      `json:"generated_at"`
	Doctor      *DoctorReport  `json:"doctor_analytics,omitempty"`
	Patient     *PatientReport `json:"patient_analytics,omitempty"`
}

// DoctorReport bundles every doctor-facing section. Sections are never omitted;
// an empty data source produces zeroed values and empty slices.
type DoctorReport struct {
	Overview            OverviewMetrics       `json:"overview"`
	AppointmentTrends   []AppointmentTrend    `json:"appointment_trends"`
	PatientDistribution []PatientDistribution `json:"patient_distribution"`
	PrescriptionStats   []PrescriptionStats   `json:"prescription_stats"`
	RevenueMetrics      []RevenueMetric       `json:"revenue_metrics"`
	PopularMedicines    []PopularMedicine     `json:"popular_medicines"`
	Performance         PerformanceMetrics    `json:"performance"`
}

// PatientReport bundles every patient-facing section.
type PatientReport struct {
	Overview           PatientOverview     `json:"overview"`
	AppointmentHistory []AppointmentRecord `json:"appointment_history"`
	PrescriptionTrends []PrescriptionTrend `json:"prescription_trends"`
	HealthMetrics      []HealthMetric      `json:"health_metrics"`
	VisitFrequency     []VisitFrequency    `json:"visit_frequency"`
	HealthScore        PatientHealthScore  `json:"health_score"`
}

type OverviewMetrics struct {
	TotalPatients         int     `json:"total_patients"`
	TotalAppointments     int     `json:"total_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	ActivePrescriptions   int     `json:"active_prescriptions"`
	TodayAppointments     int     `json:"today_appointments"`
	PendingAppointments   int     `json:"pending_appointments"`
	CompletionRate        float64 `json:"completion_rate"`
	PatientSatisfaction   float64 `json:"patient_satisfaction"`
}

type PatientOverview struct {
	TotalAppointments     int        `json:"total_appointments"`
	CompletedAppointments int        `json:"completed_appointments"`
	TotalPrescriptions    int        `json:"total_prescriptions"`
	ActivePrescriptions   int        `json:"active_prescriptions"`
	LastVisit             *time.Time `json:"last_visit"`
	NextAppointment       *time.Time `json:"next_appointment"`
	UniqueDoctorsVisited  int        `json:"unique_doctors_visited"`
	PrimaryDoctor         string     `json:"primary_doctor"`
}

// AppointmentTrend is one (year, month) bucket of a doctor's appointments.
type AppointmentTrend struct {
	Period         string    `json:"period"`
	Date           time.Time `json:"date"`
	Scheduled      int       `json:"scheduled"`
	Completed      int       `json:"completed"`
	Cancelled      int       `json:"cancelled"`
	NoShow         int       `json:"no_show"`
	CompletionRate float64   `json:"completion_rate"`
}

// AppointmentRecord is one row of a patient's appointment history.
type AppointmentRecord struct {
	Date            time.Time `json:"date"`
	DoctorName      string    `json:"doctor_name"`
	Specialization  string    `json:"specialization"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
	Duration        int       `json:"duration"`
	HasPrescription bool      `json:"has_prescription"`
}

type PatientDistribution struct {
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PrescriptionStats struct {
	Period                         string    `json:"period"`
	Date                           time.Time `json:"date"`
	TotalPrescriptions             int       `json:"total_prescriptions"`
	UniqueMedicines                int       `json:"unique_medicines"`
	UniquePatients                 int       `json:"unique_patients"`
	AveragePrescriptionsPerPatient float64   `json:"average_prescriptions_per_patient"`
}

type PrescriptionTrend struct {
	Date         time.Time `json:"date"`
	MedicineName string    `json:"medicine_name"`
	DoctorName   string    `json:"doctor_name"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// RevenueMetric estimates one month of revenue from completed appointments and
// the per-specialization consultation fee. Not a billing figure.
type RevenueMetric struct {
	Period                       string    `json:"period"`
	Date                         time.Time `json:"date"`
	Revenue                      float64   `json:"revenue"`
	AppointmentCount             int       `json:"appointment_count"`
	AverageRevenuePerAppointment float64   `json:"average_revenue_per_appointment"`
}

type PopularMedicine struct {
	MedicineName      string  `json:"medicine_name"`
	PrescriptionCount int     `json:"prescription_count"`
	PatientCount      int     `json:"patient_count"`
	Percentage        float64 `json:"percentage"`
	MostCommonDosage  string  `json:"most_common_dosage"`
}

// PerformanceMetrics carries labeled approximations: OnTimeRate is a
// completion-rate proxy and TotalWorkingHours assumes a 45 minute average
// appointment, since no arrival or time-tracking data exists in the model.
type PerformanceMetrics struct {
	AverageAppointmentDuration float64 `json:"average_appointment_duration"`
	PatientRetentionRate       float64 `json:"patient_retention_rate"`
	AppointmentCompletionRate  float64 `json:"appointment_completion_rate"`
	OnTimeRate                 float64 `json:"on_time_rate"`
	TotalWorkingHours          int     `json:"total_working_hours"`
	UtilizationRate            float64 `json:"utilization_rate"`
}

type HealthMetric struct {
	MetricName   string    `json:"metric_name"`
	Category     string    `json:"category"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit"`
	RecordedDate time.Time `json:"recorded_date"`
	Status       string    `json:"status"`
}

type VisitFrequency struct {
	Period     string    `json:"period"`
	Date       time.Time `json:"date"`
	VisitCount int       `json:"visit_count"`
	Doctors    []string  `json:"doctors"`
	Reasons    []string  `json:"reasons"`
}

type PatientHealthScore struct {
	OverallScore               float64  `json:"overall_score"`
	ComplianceScore            float64  `json:"compliance_score"`
	VisitConsistencyScore      float64  `json:"visit_consistency_score"`
	PrescriptionAdherenceScore float64  `json:"prescription_adherence_score"`
	RiskLevel                  string   `json:"risk_level"`
	HealthFlags                []string `json:"health_flags"`
	Recommendations            []string `json:"recommendations"`
}
