package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	academyapp "github.com/academy/backend/internal/application/academy"
)

type reconcileFn func(ctx context.Context, tenantID, lectureID uuid.UUID, memberIDs []uuid.UUID) error

// LectureHandler serves lecture and roster endpoints
type LectureHandler struct {
	BaseHandler
	lectures *academyapp.LectureService
	roster   *academyapp.RosterService
}

// NewLectureHandler creates a LectureHandler
func NewLectureHandler(lectures *academyapp.LectureService, roster *academyapp.RosterService) *LectureHandler {
	return &LectureHandler{lectures: lectures, roster: roster}
}

// Create handles POST /lectures
func (h *LectureHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req academyapp.CreateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid lecture payload")
		return
	}

	resp, err := h.lectures.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /lectures/:id
func (h *LectureHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}

	resp, err := h.lectures.GetByID(c.Request.Context(), tenantID, lectureID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /lectures
func (h *LectureHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.lectures.List(c.Request.Context(), tenantID, toFilter(req), req.IncludeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Limit, page.Offset)
}

// Update handles PATCH /lectures/:id
func (h *LectureHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}

	var req academyapp.UpdateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid lecture payload")
		return
	}

	resp, err := h.lectures.Update(c.Request.Context(), tenantID, lectureID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles POST /lectures/:id/deactivate
func (h *LectureHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}

	if err := h.lectures.Deactivate(c.Request.Context(), tenantID, lectureID); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.lectures.GetByID(c.Request.Context(), tenantID, lectureID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /lectures/:id
func (h *LectureHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}

	if err := h.lectures.Delete(c.Request.Context(), tenantID, lectureID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetRoster handles PUT /lectures/:id/students
func (h *LectureHandler) SetRoster(c *gin.Context) {
	h.reconcile(c, h.roster.ReconcileLectureRoster)
}

// SetInstructors handles PUT /lectures/:id/instructors
func (h *LectureHandler) SetInstructors(c *gin.Context) {
	h.reconcile(c, h.roster.ReconcileLectureInstructors)
}

// Enroll handles POST /lectures/:id/students/:studentId
func (h *LectureHandler) Enroll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.roster.EnrollStudent(c.Request.Context(), tenantID, lectureID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Unenroll handles DELETE /lectures/:id/students/:studentId
func (h *LectureHandler) Unenroll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}
	studentID, err := parseIDParam(c, "studentId")
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.roster.UnenrollStudent(c.Request.Context(), tenantID, lectureID, studentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *LectureHandler) reconcile(c *gin.Context, op reconcileFn) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	lectureID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lecture ID")
		return
	}

	var req academyapp.ReconcileRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid member list payload")
		return
	}

	if err := op(c.Request.Context(), tenantID, lectureID, req.MemberIDs); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.lectures.GetByID(c.Request.Context(), tenantID, lectureID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
