package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence/tenant"
)

// GormStudentRepository implements academy.StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormStudentRepository) WithTx(tx *gorm.DB) academy.StudentRepository {
	return &GormStudentRepository{db: tx}
}

// Create inserts a new student
func (r *GormStudentRepository) Create(ctx context.Context, student *academy.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// FindByID finds a student by ID within a tenant
func (r *GormStudentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*academy.Student, error) {
	var student academy.Student
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&student, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// List returns a page of students for a tenant
func (r *GormStudentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[academy.Student], error) {
	query := r.db.WithContext(ctx).
		Model(&academy.Student{}).
		Scopes(tenant.Scope(tenantID))
	if !includeInactive {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[academy.Student]{}, err
	}

	var students []academy.Student
	if err := applyFilter(query, filter).Find(&students).Error; err != nil {
		return shared.Paginated[academy.Student]{}, err
	}
	return shared.Paginated[academy.Student]{
		Items:  students,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Update saves a student
func (r *GormStudentRepository) Update(ctx context.Context, student *academy.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// SetTotalFee writes the recomputed fee aggregate for a student
func (r *GormStudentRepository) SetTotalFee(ctx context.Context, tenantID, studentID uuid.UUID, total int64) error {
	result := r.db.WithContext(ctx).
		Model(&academy.Student{}).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", studentID).
		Update("total_fee", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes a student row permanently
func (r *GormStudentRepository) HardDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Delete(&academy.Student{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies pagination and ordering shared by the list queries
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	return query.Order(strings.Join([]string{orderBy, dir}, " "))
}

var _ academy.StudentRepository = (*GormStudentRepository)(nil)
