package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository persists the payment ledger
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	Create(ctx context.Context, payment *Payment) error
	ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) ([]Payment, error)
	SumForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	DeleteForStudent(ctx context.Context, tenantID, studentID uuid.UUID) error
}
