package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/infrastructure/cache"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

// ResetService clears the live attendance board at the start of each
// academy day. Before deleting it logs a status-count snapshot per
// tenant, so the swept day stays reconstructable from the logs. Running
// it twice for the same day is harmless; the second sweep finds nothing.
type ResetService struct {
	tx      persistence.TxManager
	records attendance.Repository
	views   cache.MonthViewStore
	logger  *zap.Logger
}

// NewResetService creates a ResetService
func NewResetService(
	tx persistence.TxManager,
	records attendance.Repository,
	views cache.MonthViewStore,
	logger *zap.Logger,
) *ResetService {
	return &ResetService{
		tx:      tx,
		records: records,
		views:   views,
		logger:  logger,
	}
}

// RunDailyReset sweeps every tenant's records for the given day
func (s *ResetService) RunDailyReset(ctx context.Context, day time.Time) (*ResetResult, error) {
	tenantIDs, err := s.records.TenantIDsWithRecords(ctx, day)
	if err != nil {
		return nil, err
	}

	result := &ResetResult{
		Date:     day.Format("2006-01-02"),
		Snapshot: map[string]int64{},
	}
	for _, tenantID := range tenantIDs {
		deleted, counts, err := s.resetTenant(ctx, tenantID, day)
		if err != nil {
			return nil, err
		}
		result.TenantsSwept++
		result.RowsDeleted += deleted
		for status, n := range counts {
			result.Snapshot[string(status)] += n
		}

		if err := s.views.Invalidate(ctx, tenantID, day.Year(), day.Month()); err != nil {
			s.logger.Warn("failed to invalidate month view cache after reset",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("daily attendance reset complete",
		zap.String("date", result.Date),
		zap.Int("tenants_swept", result.TenantsSwept),
		zap.Int64("rows_deleted", result.RowsDeleted))
	return result, nil
}

// resetTenant snapshots and deletes one tenant's records for the day
func (s *ResetService) resetTenant(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, map[attendance.Status]int64, error) {
	var deleted int64
	var counts map[attendance.Status]int64

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)

		var err error
		counts, err = records.CountByStatus(ctx, tenantID, day, day)
		if err != nil {
			return err
		}
		deleted, err = records.DeleteForDate(ctx, tenantID, day)
		return err
	})
	if err != nil {
		return 0, nil, err
	}

	fields := []zap.Field{
		zap.String("tenant_id", tenantID.String()),
		zap.String("date", day.Format("2006-01-02")),
		zap.Int64("rows_deleted", deleted),
	}
	for status, n := range counts {
		fields = append(fields, zap.Int64("status_"+string(status), n))
	}
	s.logger.Info("attendance snapshot before reset", fields...)
	return deleted, counts, nil
}
