package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/health-analytics-api/internal/middleware"
	"github.com/jwalitptl/health-analytics-api/internal/model"
	"github.com/jwalitptl/health-analytics-api/internal/service/analytics"
	"github.com/jwalitptl/health-analytics-api/pkg/errors"
	"github.com/jwalitptl/health-analytics-api/pkg/httputil"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timerange", validTimeRange)
	}
}

func validTimeRange(fl validator.FieldLevel) bool {
	switch model.TimeRange(fl.Field().String()) {
	case model.TimeRangeLastWeek, model.TimeRangeLastMonth,
		model.TimeRangeLastQuarter, model.TimeRangeLastYear:
		return true
	}
	return false
}

type Handler struct {
	service *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the analytics endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	rg.GET("", h.GetAnalytics)
	rg.GET("/doctor", auth.RequireRole(model.UserRoleDoctor), h.GetDoctorAnalytics)
	rg.GET("/patient", auth.RequireRole(model.UserRolePatient), h.GetPatientAnalytics)
	rg.GET("/summary", h.GetSummary)
	rg.GET("/realtime", h.GetRealtime)
	rg.GET("/export", h.Export)
}

// GetAnalytics returns the full role-shaped report for the authenticated user.
func (h *Handler) GetAnalytics(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), userID, role, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) GetDoctorAnalytics(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	report, err := h.service.GetDoctorReport(c.Request.Context(), userID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) GetPatientAnalytics(c *gin.Context) {
	userID, _, err := currentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	report, err := h.service.GetPatientReport(c.Request.Context(), userID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

type doctorQuickStats struct {
	TotalPatients       int     `json:"total_patients"`
	TodayAppointments   int     `json:"today_appointments"`
	CompletionRate      float64 `json:"completion_rate"`
	ActivePrescriptions int     `json:"active_prescriptions"`
}

type patientQuickStats struct {
	TotalAppointments   int        `json:"total_appointments"`
	NextAppointment     *time.Time `json:"next_appointment"`
	ActivePrescriptions int        `json:"active_prescriptions"`
	LastVisit           *time.Time `json:"last_visit"`
}

type summaryResponse struct {
	UserRole    string      `json:"user_role"`
	GeneratedAt time.Time   `json:"generated_at"`
	Overview    interface{} `json:"overview"`
	QuickStats  interface{} `json:"quick_stats"`
}

// GetSummary returns a condensed last-30-days view for dashboard tiles.
func (h *Handler) GetSummary(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	filter := &model.AnalyticsFilter{
		TimeRange: model.TimeRangeLastMonth,
		StartDate: &start,
		EndDate:   &now,
	}

	report, err := h.service.GetReport(c.Request.Context(), userID, role, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	summary := summaryResponse{UserRole: role, GeneratedAt: report.GeneratedAt}
	switch {
	case report.Doctor != nil:
		ov := report.Doctor.Overview
		summary.Overview = ov
		summary.QuickStats = doctorQuickStats{
			TotalPatients:       ov.TotalPatients,
			TodayAppointments:   ov.TodayAppointments,
			CompletionRate:      ov.CompletionRate,
			ActivePrescriptions: ov.ActivePrescriptions,
		}
	case report.Patient != nil:
		ov := report.Patient.Overview
		summary.Overview = ov
		summary.QuickStats = patientQuickStats{
			TotalAppointments:   ov.TotalAppointments,
			NextAppointment:     ov.NextAppointment,
			ActivePrescriptions: ov.ActivePrescriptions,
			LastVisit:           ov.LastVisit,
		}
	}
	httputil.RespondWithSuccess(c, summary)
}

type realtimeResponse struct {
	Timestamp    time.Time   `json:"timestamp"`
	UserRole     string      `json:"user_role"`
	TodayMetrics interface{} `json:"today_metrics"`
}

// GetRealtime returns today-only counters for dashboard polling.
func (h *Handler) GetRealtime(c *gin.Context) {
	userID, role, err := currentUser(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	filter := &model.AnalyticsFilter{StartDate: &dayStart, EndDate: &dayEnd}

	report, err := h.service.GetReport(c.Request.Context(), userID, role, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp := realtimeResponse{Timestamp: now, UserRole: role}
	switch {
	case report.Doctor != nil:
		ov := report.Doctor.Overview
		resp.TodayMetrics = gin.H{
			"today_appointments": ov.TodayAppointments,
			"completed_today":    ov.CompletedAppointments,
			"pending_today":      ov.PendingAppointments,
			"new_prescriptions":  ov.ActivePrescriptions,
		}
	case report.Patient != nil:
		todayAppointments := 0
		for _, rec := range report.Patient.AppointmentHistory {
			if sameUTCDay(rec.Date, now) {
				todayAppointments++
			}
		}
		recentPrescriptions := 0
		for _, p := range report.Patient.PrescriptionTrends {
			if sameUTCDay(p.Date, now) {
				recentPrescriptions++
			}
		}
		resp.TodayMetrics = gin.H{
			"today_appointments":   todayAppointments,
			"next_appointment":     report.Patient.Overview.NextAppointment,
			"recent_prescriptions": recentPrescriptions,
		}
	}
	httputil.RespondWithSuccess(c, resp)
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func currentUser(c *gin.Context) (uuid.UUID, string, error) {
	raw := c.GetString(middleware.ContextUserID)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", errors.Unauthorized(err)
	}
	return userID, c.GetString(middleware.ContextUserRole), nil
}

func bindFilter(c *gin.Context) (*model.AnalyticsFilter, error) {
	var filter model.AnalyticsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		return nil, errors.BadRequest("invalid filter parameters", err)
	}
	return &filter, nil
}
