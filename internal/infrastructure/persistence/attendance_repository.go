package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence/tenant"
)

// GormAttendanceRepository implements attendance.Repository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormAttendanceRepository) WithTx(tx *gorm.DB) attendance.Repository {
	return &GormAttendanceRepository{db: tx}
}

// FindByNaturalKey looks up the record for one student, day and lecture slot
func (r *GormAttendanceRepository) FindByNaturalKey(ctx context.Context, tenantID, studentID uuid.UUID, lectureID *uuid.UUID, date time.Time) (*attendance.Record, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ? AND date = ?", studentID, dateOnly(date))
	if lectureID == nil {
		query = query.Where("lecture_id IS NULL")
	} else {
		query = query.Where("lecture_id = ?", *lectureID)
	}

	var record attendance.Record
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Create inserts a new attendance record
func (r *GormAttendanceRepository) Create(ctx context.Context, record *attendance.Record) error {
	record.Date = dateOnly(record.Date)
	return r.db.WithContext(ctx).Create(record).Error
}

// Update saves an attendance record
func (r *GormAttendanceRepository) Update(ctx context.Context, record *attendance.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// ListForDate returns every record of a tenant for one day, optionally
// narrowed to one lecture's slot
func (r *GormAttendanceRepository) ListForDate(ctx context.Context, tenantID uuid.UUID, date time.Time, lectureID *uuid.UUID) ([]attendance.Record, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("date = ?", dateOnly(date))
	if lectureID != nil {
		query = query.Where("lecture_id = ?", *lectureID)
	}

	var records []attendance.Record
	err := query.Order("created_at ASC").Find(&records).Error
	return records, err
}

// ListForStudent returns a student's records inside a date range
func (r *GormAttendanceRepository) ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) ([]attendance.Record, error) {
	var records []attendance.Record
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ? AND date >= ? AND date <= ?", studentID, dateOnly(from), dateOnly(to)).
		Order("date ASC").
		Find(&records).Error
	return records, err
}

// ListForRange returns every record of a tenant inside a date range
func (r *GormAttendanceRepository) ListForRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]attendance.Record, error) {
	var records []attendance.Record
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("date >= ? AND date <= ?", dateOnly(from), dateOnly(to)).
		Order("date ASC, created_at ASC").
		Find(&records).Error
	return records, err
}

// CountByStatus aggregates record counts per status over a range
func (r *GormAttendanceRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[attendance.Status]int64, error) {
	type row struct {
		Status attendance.Status
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Select("status, COUNT(*) AS total").
		Scopes(tenant.Scope(tenantID)).
		Where("date >= ? AND date <= ?", dateOnly(from), dateOnly(to)).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[attendance.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// DeleteForDate removes every record of a tenant for one day
func (r *GormAttendanceRepository) DeleteForDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("date = ?", dateOnly(date)).
		Delete(&attendance.Record{})
	return result.RowsAffected, result.Error
}

// DeleteForStudent removes every record of one student
func (r *GormAttendanceRepository) DeleteForStudent(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ?", studentID).
		Delete(&attendance.Record{}).Error
}

// ClearLectureRef detaches records from a removed lecture. A student may
// already hold a day-level row for the same date; nulling the reference
// would then mint a second (student, date, NULL) row, so those records
// are dropped and the existing day-level row wins.
func (r *GormAttendanceRepository) ClearLectureRef(ctx context.Context, tenantID, lectureID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("lecture_id = ?", lectureID).
		Where(`EXISTS (
			SELECT 1 FROM attendance_records existing
			WHERE existing.tenant_id = attendance_records.tenant_id
			  AND existing.student_id = attendance_records.student_id
			  AND existing.date = attendance_records.date
			  AND existing.lecture_id IS NULL
		)`).
		Delete(&attendance.Record{})
	if result.Error != nil {
		return result.Error
	}

	return r.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Scopes(tenant.Scope(tenantID)).
		Where("lecture_id = ?", lectureID).
		Update("lecture_id", nil).Error
}

// TenantIDsWithRecords lists tenants holding records for a day
func (r *GormAttendanceRepository) TenantIDsWithRecords(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Where("date = ?", dateOnly(date)).
		Distinct().
		Pluck("tenant_id", &ids).Error
	return ids, err
}

// dateOnly truncates a timestamp to its calendar day
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ attendance.Repository = (*GormAttendanceRepository)(nil)
