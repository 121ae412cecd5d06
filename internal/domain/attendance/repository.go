package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists attendance records
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindByNaturalKey looks up the single record for one student, day
	// and lecture slot. A nil lectureID matches the day-level record
	// only, never an arbitrary lecture row.
	FindByNaturalKey(ctx context.Context, tenantID, studentID uuid.UUID, lectureID *uuid.UUID, date time.Time) (*Record, error)

	Create(ctx context.Context, record *Record) error
	Update(ctx context.Context, record *Record) error

	// ListForDate returns every record of a tenant for one day. A
	// non-nil lectureID narrows the listing to that lecture's slot.
	ListForDate(ctx context.Context, tenantID uuid.UUID, date time.Time, lectureID *uuid.UUID) ([]Record, error)

	// ListForStudent returns a student's records inside a date range,
	// oldest first.
	ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to time.Time) ([]Record, error)

	// ListForRange returns every record of a tenant inside a date range
	ListForRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Record, error)

	// CountByStatus aggregates record counts per status over a range
	CountByStatus(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[Status]int64, error)

	// DeleteForDate removes every record of a tenant for one day and
	// returns the number of rows removed. The daily reset runs on it.
	DeleteForDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (int64, error)

	// DeleteForStudent removes every record of one student
	DeleteForStudent(ctx context.Context, tenantID, studentID uuid.UUID) error

	// ClearLectureRef detaches records from a removed lecture while
	// keeping the day-level rows themselves. A lecture-scoped record is
	// dropped instead when the student already holds a day-level row for
	// the same date, so the (student, date, NULL) key stays unique.
	ClearLectureRef(ctx context.Context, tenantID, lectureID uuid.UUID) error

	// TenantIDsWithRecords lists tenants holding records for a day
	TenantIDsWithRecords(ctx context.Context, date time.Time) ([]uuid.UUID, error)
}
