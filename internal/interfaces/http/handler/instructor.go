package handler

import (
	"github.com/gin-gonic/gin"

	academyapp "github.com/academy/backend/internal/application/academy"
)

// InstructorHandler serves instructor endpoints
type InstructorHandler struct {
	BaseHandler
	instructors *academyapp.InstructorService
}

// NewInstructorHandler creates an InstructorHandler
func NewInstructorHandler(instructors *academyapp.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

// Create handles POST /instructors
func (h *InstructorHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req academyapp.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid instructor payload")
		return
	}

	resp, err := h.instructors.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /instructors/:id
func (h *InstructorHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid instructor ID")
		return
	}

	resp, err := h.instructors.GetByID(c.Request.Context(), tenantID, instructorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /instructors
func (h *InstructorHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	req, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.instructors.List(c.Request.Context(), tenantID, toFilter(req), req.IncludeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Limit, page.Offset)
}

// Update handles PATCH /instructors/:id
func (h *InstructorHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid instructor ID")
		return
	}

	var req academyapp.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid instructor payload")
		return
	}

	resp, err := h.instructors.Update(c.Request.Context(), tenantID, instructorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles POST /instructors/:id/deactivate
func (h *InstructorHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid instructor ID")
		return
	}

	if err := h.instructors.Deactivate(c.Request.Context(), tenantID, instructorID); err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.instructors.GetByID(c.Request.Context(), tenantID, instructorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
