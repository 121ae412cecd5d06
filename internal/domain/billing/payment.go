package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/academy/backend/internal/domain/shared"
)

// Method is how a payment was collected
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

// Valid reports whether the method is a known value
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodCard || m == MethodTransfer
}

// Payment is one fee payment recorded against a student. Payments are
// an append-only ledger; correcting a mistake means recording a
// compensating entry, not editing history.
type Payment struct {
	shared.TenantEntity
	StudentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    Method          `gorm:"type:varchar(20);not null"`
	PaidAt    time.Time       `gorm:"not null;index"`
	Memo      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "student_payments"
}

// NewPayment records a payment
func NewPayment(tenantID, studentID uuid.UUID, amount decimal.Decimal, method Method, paidAt time.Time) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantMissing
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount cannot be zero")
	}
	if !method.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		StudentID:    studentID,
		Amount:       amount,
		Method:       method,
		PaidAt:       paidAt,
	}, nil
}
