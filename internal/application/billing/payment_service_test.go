package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

func newPaymentFixture(t *testing.T) (*gorm.DB, *PaymentService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&academy.Student{}, &billing.Payment{}))

	service := NewPaymentService(
		persistence.NewGormPaymentRepository(db),
		persistence.NewGormStudentRepository(db),
	)
	return db, service
}

func createStudent(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) *academy.Student {
	student, err := academy.NewStudent(tenantID, name)
	require.NoError(t, err)
	require.NoError(t, db.Create(student).Error)
	return student
}

func timePtr(v time.Time) *time.Time { return &v }

func TestPaymentService_Record(t *testing.T) {
	db, service := newPaymentFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()
	alice := createStudent(t, db, tenantID, "Alice")

	t.Run("records a payment", func(t *testing.T) {
		paidAt := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
		resp, err := service.Record(ctx, tenantID, RecordPaymentRequest{
			StudentID: alice.ID,
			Amount:    decimal.NewFromInt(100000),
			Method:    "card",
			PaidAt:    timePtr(paidAt),
			Memo:      "March tuition",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, resp.ID)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(100000)))
		assert.Equal(t, "card", resp.Method)
		assert.True(t, resp.PaidAt.Equal(paidAt))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := service.Record(ctx, tenantID, RecordPaymentRequest{
			StudentID: uuid.New(),
			Amount:    decimal.NewFromInt(1000),
			Method:    "cash",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := service.Record(ctx, tenantID, RecordPaymentRequest{
			StudentID: alice.ID,
			Amount:    decimal.NewFromInt(1000),
			Method:    "bitcoin",
		})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := service.Record(ctx, tenantID, RecordPaymentRequest{
			StudentID: alice.ID,
			Amount:    decimal.Zero,
			Method:    "cash",
		})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
	})
}

func TestPaymentService_StudentLedger(t *testing.T) {
	db, service := newPaymentFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()
	alice := createStudent(t, db, tenantID, "Alice")
	bob := createStudent(t, db, tenantID, "Bob")

	record := func(studentID uuid.UUID, amount int64, paidAt time.Time) {
		_, err := service.Record(ctx, tenantID, RecordPaymentRequest{
			StudentID: studentID,
			Amount:    decimal.NewFromInt(amount),
			Method:    "transfer",
			PaidAt:    timePtr(paidAt),
		})
		require.NoError(t, err)
	}
	record(alice.ID, 100000, time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC))
	record(alice.ID, 100000, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	record(alice.ID, 50000, time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC))
	record(bob.ID, 70000, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))

	t.Run("sums only the requested range and student", func(t *testing.T) {
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		ledger, err := service.StudentLedger(ctx, tenantID, alice.ID, from, to)
		require.NoError(t, err)
		require.Len(t, ledger.Payments, 1)
		assert.True(t, ledger.Total.Equal(decimal.NewFromInt(100000)))
	})

	t.Run("full history", func(t *testing.T) {
		ledger, err := service.StudentLedger(ctx, tenantID, alice.ID, time.Time{}, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, ledger.Payments, 3)
		assert.True(t, ledger.Total.Equal(decimal.NewFromInt(250000)))
	})

	t.Run("empty range totals zero", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

		ledger, err := service.StudentLedger(ctx, tenantID, alice.ID, from, to)
		require.NoError(t, err)
		assert.Empty(t, ledger.Payments)
		assert.True(t, ledger.Total.IsZero())
	})
}
