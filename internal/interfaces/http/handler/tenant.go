package handler

import (
	"github.com/gin-gonic/gin"

	academyapp "github.com/academy/backend/internal/application/academy"
)

// TenantHandler serves tenant registration endpoints
type TenantHandler struct {
	BaseHandler
	tenants *academyapp.TenantService
}

// NewTenantHandler creates a TenantHandler
func NewTenantHandler(tenants *academyapp.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Register handles POST /tenants
func (h *TenantHandler) Register(c *gin.Context) {
	var req academyapp.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid tenant payload")
		return
	}

	resp, err := h.tenants.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	tenantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	resp, err := h.tenants.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /tenants
func (h *TenantHandler) List(c *gin.Context) {
	req, ok := h.bindList(c)
	if !ok {
		return
	}

	page, err := h.tenants.List(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Limit, page.Offset)
}
