package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	attendanceapp "github.com/academy/backend/internal/application/attendance"
	"github.com/academy/backend/internal/infrastructure/scheduler"
)

// AttendanceHandler serves attendance endpoints
type AttendanceHandler struct {
	BaseHandler
	attendance *attendanceapp.Service
	reset      *scheduler.AttendanceResetScheduler
}

// NewAttendanceHandler creates an AttendanceHandler
func NewAttendanceHandler(attendance *attendanceapp.Service, reset *scheduler.AttendanceResetScheduler) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, reset: reset}
}

// Record handles POST /attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req attendanceapp.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid attendance payload")
		return
	}

	resp, err := h.attendance.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListForDate handles GET /attendance
func (h *AttendanceHandler) ListForDate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	day := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	var lectureID *uuid.UUID
	if raw := c.Query("lecture_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid lecture ID")
			return
		}
		lectureID = &id
	}

	resp, err := h.attendance.ListForDate(c.Request.Context(), tenantID, day, lectureID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StudentHistory handles GET /attendance/students/:id
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		h.BadRequest(c, "Query parameters 'from' and 'to' are required")
		return
	}

	resp, err := h.attendance.StudentHistory(c.Request.Context(), tenantID, studentID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Stats handles GET /attendance/stats
func (h *AttendanceHandler) Stats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		h.BadRequest(c, "Query parameters 'from' and 'to' are required")
		return
	}

	resp, err := h.attendance.PeriodStats(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MonthlyView handles GET /attendance/monthly
func (h *AttendanceHandler) MonthlyView(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil || year < 2000 || year > 2200 {
		h.BadRequest(c, "Invalid year")
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		h.BadRequest(c, "Invalid month")
		return
	}

	resp, err := h.attendance.MonthlyView(c.Request.Context(), tenantID, year, time.Month(month))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TriggerReset handles POST /admin/attendance/reset
func (h *AttendanceHandler) TriggerReset(c *gin.Context) {
	h.reset.TriggerManualRun()
	h.Success(c, gin.H{"triggered": true})
}

// ResetStatus handles GET /admin/attendance/reset
func (h *AttendanceHandler) ResetStatus(c *gin.Context) {
	h.Success(c, h.reset.GetStatus())
}
