package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/academy/backend/internal/application/billing"
)

// PaymentHandler serves fee payment endpoints
type PaymentHandler struct {
	BaseHandler
	payments *billingapp.PaymentService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(payments *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid payment payload")
		return
	}

	resp, err := h.payments.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// StudentLedger handles GET /students/:id/payments
func (h *PaymentHandler) StudentLedger(c *gin.Context) {
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

	from, ok := h.parseDateQuery(c, "from", time.Time{})
	if !ok {
		return
	}
	to, ok := h.parseDateQuery(c, "to", time.Now().AddDate(0, 0, 1))
	if !ok {
		return
	}

	resp, err := h.payments.StudentLedger(c.Request.Context(), tenantID, studentID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *PaymentHandler) parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.BadRequest(c, "Query parameter '"+name+"' must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}
