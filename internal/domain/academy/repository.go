package academy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/shared"
)

// TenantRepository persists tenant aggregates
type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[Tenant], error)
	Update(ctx context.Context, tenant *Tenant) error
}

// StudentRepository persists student aggregates.
// WithTx binds the repository to an open transaction so aggregate
// writes and derived-field updates commit atomically.
type StudentRepository interface {
	WithTx(tx *gorm.DB) StudentRepository
	Create(ctx context.Context, student *Student) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[Student], error)
	Update(ctx context.Context, student *Student) error
	SetTotalFee(ctx context.Context, tenantID, studentID uuid.UUID, total int64) error
	HardDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LectureRepository persists lecture aggregates
type LectureRepository interface {
	WithTx(tx *gorm.DB) LectureRepository
	Create(ctx context.Context, lecture *Lecture) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Lecture, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[Lecture], error)
	Update(ctx context.Context, lecture *Lecture) error
	SetOccupancy(ctx context.Context, tenantID, lectureID uuid.UUID, occupancy int) error
	SetInstructor(ctx context.Context, tenantID, lectureID uuid.UUID, instructorID *uuid.UUID) error
	HardDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InstructorRepository persists instructor aggregates
type InstructorRepository interface {
	WithTx(tx *gorm.DB) InstructorRepository
	Create(ctx context.Context, instructor *Instructor) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Instructor, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[Instructor], error)
	Update(ctx context.Context, instructor *Instructor) error
}
