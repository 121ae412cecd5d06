package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/billing"
)

// RecordPaymentRequest is the input for recording a fee payment
type RecordPaymentRequest struct {
	StudentID uuid.UUID       `json:"student_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	PaidAt    *time.Time      `json:"paid_at"`
	Memo      string          `json:"memo"`
}

// PaymentResponse is the API shape of a payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
	Memo      string          `json:"memo,omitempty"`
}

// StudentLedgerResponse is a student's payment history plus its total
type StudentLedgerResponse struct {
	StudentID uuid.UUID         `json:"student_id"`
	Payments  []PaymentResponse `json:"payments"`
	Total     decimal.Decimal   `json:"total"`
}

// PaymentService handles the student payment ledger
type PaymentService struct {
	payments billing.PaymentRepository
	students academy.StudentRepository
}

// NewPaymentService creates a PaymentService
func NewPaymentService(payments billing.PaymentRepository, students academy.StudentRepository) *PaymentService {
	return &PaymentService{payments: payments, students: students}
}

// Record appends a payment to a student's ledger
func (s *PaymentService) Record(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	if _, err := s.students.FindByID(ctx, tenantID, req.StudentID); err != nil {
		return nil, err
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	payment, err := billing.NewPayment(tenantID, req.StudentID, req.Amount, billing.Method(req.Method), paidAt)
	if err != nil {
		return nil, err
	}
	payment.Memo = req.Memo

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}

// StudentLedger returns a student's payments and total inside a range
func (s *PaymentService) StudentLedger(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) (*StudentLedgerResponse, error) {
	if _, err := s.students.FindByID(ctx, tenantID, studentID); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListForStudent(ctx, tenantID, studentID, from, to)
	if err != nil {
		return nil, err
	}
	total, err := s.payments.SumForStudent(ctx, tenantID, studentID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &StudentLedgerResponse{
		StudentID: studentID,
		Payments:  make([]PaymentResponse, len(payments)),
		Total:     total,
	}
	for i := range payments {
		resp.Payments[i] = toPaymentResponse(&payments[i])
	}
	return resp, nil
}

func toPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		StudentID: p.StudentID,
		Amount:    p.Amount,
		Method:    string(p.Method),
		PaidAt:    p.PaidAt,
		Memo:      p.Memo,
	}
}
