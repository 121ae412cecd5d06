package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/infrastructure/persistence/tenant"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) billing.PaymentRepository {
	return &GormPaymentRepository{db: tx}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListForStudent returns a student's payments inside a date range
func (r *GormPaymentRepository) ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ? AND paid_at >= ? AND paid_at <= ?", studentID, from, to).
		Order("paid_at DESC").
		Find(&payments).Error
	return payments, err
}

// SumForStudent totals a student's payments inside a date range
func (r *GormPaymentRepository) SumForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ? AND paid_at >= ? AND paid_at <= ?", studentID, from, to).
		Scan(&total).Error
	return total, err
}

// DeleteForStudent removes every payment of one student
func (r *GormPaymentRepository) DeleteForStudent(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ?", studentID).
		Delete(&billing.Payment{}).Error
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
