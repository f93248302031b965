package analytics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-analytics-api/internal/model"
	"github.com/jwalitptl/health-analytics-api/pkg/errors"
	"github.com/jwalitptl/health-analytics-api/pkg/httputil"
)

// Appointment history rows included in a patient CSV export.
const exportHistoryLimit = 20

// Export streams the current report as a CSV or JSON attachment.
func (h *Handler) Export(c *gin.Context) {
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

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "csv":
		filename := fmt.Sprintf("analytics-%s-%s.csv", role, stamp)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "text/csv", []byte(renderCSV(report)))
	case "json":
		payload, err := json.Marshal(report)
		if err != nil {
			httputil.RespondWithError(c, errors.Internal(err))
			return
		}
		filename := fmt.Sprintf("analytics-%s-%s.json", role, stamp)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "application/json", payload)
	default:
		httputil.RespondWithError(c, errors.BadRequest("unsupported export format", nil))
	}
}

func renderCSV(report *model.AnalyticsReport) string {
	var b strings.Builder

	switch {
	case report.Doctor != nil:
		writeDoctorCSV(&b, report)
	case report.Patient != nil:
		writePatientCSV(&b, report)
	}
	return b.String()
}

func writeDoctorCSV(b *strings.Builder, report *model.AnalyticsReport) {
	ov := report.Doctor.Overview

	fmt.Fprintln(b, "Doctor Analytics Report")
	fmt.Fprintf(b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(b)

	fmt.Fprintln(b, "Overview Metrics")
	fmt.Fprintln(b, "Metric,Value")
	fmt.Fprintf(b, "Total Patients,%d\n", ov.TotalPatients)
	fmt.Fprintf(b, "Total Appointments,%d\n", ov.TotalAppointments)
	fmt.Fprintf(b, "Completed Appointments,%d\n", ov.CompletedAppointments)
	fmt.Fprintf(b, "Active Prescriptions,%d\n", ov.ActivePrescriptions)
	fmt.Fprintf(b, "Completion Rate,%.2f%%\n", ov.CompletionRate)
	fmt.Fprintln(b)

	fmt.Fprintln(b, "Appointment Trends")
	fmt.Fprintln(b, "Period,Scheduled,Completed,Cancelled,No Show,Completion Rate")
	for _, trend := range report.Doctor.AppointmentTrends {
		fmt.Fprintf(b, "%s,%d,%d,%d,%d,%.2f%%\n",
			trend.Period, trend.Scheduled, trend.Completed, trend.Cancelled,
			trend.NoShow, trend.CompletionRate)
	}
}

func writePatientCSV(b *strings.Builder, report *model.AnalyticsReport) {
	ov := report.Patient.Overview

	fmt.Fprintln(b, "Patient Analytics Report")
	fmt.Fprintf(b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(b)

	fmt.Fprintln(b, "Overview Metrics")
	fmt.Fprintln(b, "Metric,Value")
	fmt.Fprintf(b, "Total Appointments,%d\n", ov.TotalAppointments)
	fmt.Fprintf(b, "Completed Appointments,%d\n", ov.CompletedAppointments)
	fmt.Fprintf(b, "Total Prescriptions,%d\n", ov.TotalPrescriptions)
	fmt.Fprintf(b, "Active Prescriptions,%d\n", ov.ActivePrescriptions)
	lastVisit := "N/A"
	if ov.LastVisit != nil {
		lastVisit = ov.LastVisit.Format("2006-01-02")
	}
	fmt.Fprintf(b, "Last Visit,%s\n", lastVisit)
	fmt.Fprintf(b, "Primary Doctor,%s\n", ov.PrimaryDoctor)
	fmt.Fprintln(b)

	fmt.Fprintln(b, "Appointment History")
	fmt.Fprintln(b, "Date,Doctor,Specialization,Status,Reason,Duration,Has Prescription")
	history := report.Patient.AppointmentHistory
	if len(history) > exportHistoryLimit {
		history = history[:exportHistoryLimit]
	}
	for _, rec := range history {
		fmt.Fprintf(b, "%s,%s,%s,%s,%s,%d,%t\n",
			rec.Date.Format("2006-01-02"), rec.DoctorName, rec.Specialization,
			rec.Status, rec.Reason, rec.Duration, rec.HasPrescription)
	}
}
