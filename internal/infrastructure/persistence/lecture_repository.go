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

// GormLectureRepository implements academy.LectureRepository using GORM
type GormLectureRepository struct {
	db *gorm.DB
}

// NewGormLectureRepository creates a new GormLectureRepository
func NewGormLectureRepository(db *gorm.DB) *GormLectureRepository {
	return &GormLectureRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormLectureRepository) WithTx(tx *gorm.DB) academy.LectureRepository {
	return &GormLectureRepository{db: tx}
}

// Create inserts a new lecture
func (r *GormLectureRepository) Create(ctx context.Context, lecture *academy.Lecture) error {
	return r.db.WithContext(ctx).Create(lecture).Error
}

// FindByID finds a lecture by ID within a tenant
func (r *GormLectureRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academy.Lecture, error) {
	var lecture academy.Lecture
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&lecture, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lecture, nil
}

// List returns a page of lectures for a tenant
func (r *GormLectureRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[academy.Lecture], error) {
	query := r.db.WithContext(ctx).
		Model(&academy.Lecture{}).
		Scopes(tenant.Scope(tenantID))
	if !includeInactive {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[academy.Lecture]{}, err
	}

	var lectures []academy.Lecture
	if err := applyFilter(query, filter).Find(&lectures).Error; err != nil {
		return shared.Paginated[academy.Lecture]{}, err
	}
	return shared.Paginated[academy.Lecture]{
		Items:  lectures,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Update saves a lecture
func (r *GormLectureRepository) Update(ctx context.Context, lecture *academy.Lecture) error {
	return r.db.WithContext(ctx).Save(lecture).Error
}

// SetOccupancy writes the recomputed occupancy aggregate for a lecture
func (r *GormLectureRepository) SetOccupancy(ctx context.Context, tenantID, lectureID uuid.UUID, occupancy int) error {
	result := r.db.WithContext(ctx).
		Model(&academy.Lecture{}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", lectureID).
		Update("occupancy", occupancy)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetInstructor writes the primary instructor mirror column
func (r *GormLectureRepository) SetInstructor(ctx context.Context, tenantID, lectureID uuid.UUID, instructorID *uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&academy.Lecture{}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", lectureID).
		Update("instructor_id", instructorID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes a lecture row permanently
func (r *GormLectureRepository) HardDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Delete(&academy.Lecture{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ academy.LectureRepository = (*GormLectureRepository)(nil)
