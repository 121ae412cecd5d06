package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	academyapp "github.com/academy/backend/internal/application/academy"
)

// StudentHandler serves student endpoints
type StudentHandler struct {
	BaseHandler
	students *academyapp.StudentService
	roster   *academyapp.RosterService
}

// NewStudentHandler creates a StudentHandler
func NewStudentHandler(students *academyapp.StudentService, roster *academyapp.RosterService) *StudentHandler {
	return &StudentHandler{students: students, roster: roster}
}

// Create handles POST /students
func (h *StudentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req academyapp.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid student payload")
		return
	}

	resp, err := h.students.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /students/:id
func (h *StudentHandler) Get(c *gin.Context) {
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

	resp, err := h.students.GetByID(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /students
func (h *StudentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.students.List(c.Request.Context(), tenantID, toFilter(req), req.IncludeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Limit, page.Offset)
}

// Update handles PATCH /students/:id
func (h *StudentHandler) Update(c *gin.Context) {
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

	var req academyapp.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid student payload")
		return
	}

	resp, err := h.students.Update(c.Request.Context(), tenantID, studentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles POST /students/:id/deactivate
func (h *StudentHandler) Deactivate(c *gin.Context) {
	h.lifecycle(c, h.students.Deactivate)
}

// Reactivate handles POST /students/:id/reactivate
func (h *StudentHandler) Reactivate(c *gin.Context) {
	h.lifecycle(c, h.students.Reactivate)
}

// Delete handles DELETE /students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
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

	if err := h.students.HardDelete(c.Request.Context(), tenantID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetLectures handles PUT /students/:id/lectures
func (h *StudentHandler) SetLectures(c *gin.Context) {
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

	var req academyapp.ReconcileStudentLecturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid lecture list payload")
		return
	}

	if err := h.roster.ReconcileStudentLectures(c.Request.Context(), tenantID, studentID, req.LectureIDs); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.students.GetByID(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *StudentHandler) lifecycle(c *gin.Context, op func(ctx context.Context, tenantID, studentID uuid.UUID) error) {
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

	if err := op(c.Request.Context(), tenantID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.students.GetByID(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
