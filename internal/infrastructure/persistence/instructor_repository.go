package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence/tenant"
)

// GormInstructorRepository implements academy.InstructorRepository using GORM
type GormInstructorRepository struct {
	db *gorm.DB
}

// NewGormInstructorRepository creates a new GormInstructorRepository
func NewGormInstructorRepository(db *gorm.DB) *GormInstructorRepository {
	return &GormInstructorRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormInstructorRepository) WithTx(tx *gorm.DB) academy.InstructorRepository {
	return &GormInstructorRepository{db: tx}
}

// Create inserts a new instructor
func (r *GormInstructorRepository) Create(ctx context.Context, instructor *academy.Instructor) error {
	return r.db.WithContext(ctx).Create(instructor).Error
}

// FindByID finds an instructor by ID within a tenant
func (r *GormInstructorRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academy.Instructor, error) {
	var instructor academy.Instructor
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&instructor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &instructor, nil
}

// List returns a page of instructors for a tenant
func (r *GormInstructorRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[academy.Instructor], error) {
	query := r.db.WithContext(ctx).
		Model(&academy.Instructor{}).
		Scopes(tenant.Scope(tenantID))
	if !includeInactive {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[academy.Instructor]{}, err
	}

	var instructors []academy.Instructor
	if err := applyFilter(query, filter).Find(&instructors).Error; err != nil {
		return shared.Paginated[academy.Instructor]{}, err
	}
	return shared.Paginated[academy.Instructor]{
		Items:  instructors,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Update saves an instructor
func (r *GormInstructorRepository) Update(ctx context.Context, instructor *academy.Instructor) error {
	return r.db.WithContext(ctx).Save(instructor).Error
}

var _ academy.InstructorRepository = (*GormInstructorRepository)(nil)
