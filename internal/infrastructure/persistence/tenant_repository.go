package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/shared"
)

// GormTenantRepository implements academy.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// Create inserts a new tenant
func (r *GormTenantRepository) Create(ctx context.Context, t *academy.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*academy.Tenant, error) {
	var t academy.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns a page of tenants
func (r *GormTenantRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[academy.Tenant], error) {
	query := r.db.WithContext(ctx).Model(&academy.Tenant{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[academy.Tenant]{}, err
	}

	var tenants []academy.Tenant
	if err := applyFilter(query, filter).Find(&tenants).Error; err != nil {
		return shared.Paginated[academy.Tenant]{}, err
	}
	return shared.Paginated[academy.Tenant]{
		Items:  tenants,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Update saves a tenant
func (r *GormTenantRepository) Update(ctx context.Context, t *academy.Tenant) error {
	return r.db.WithContext(ctx).Save(t).Error
}

var _ academy.TenantRepository = (*GormTenantRepository)(nil)
