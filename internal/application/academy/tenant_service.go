package academy

import (
	"context"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/shared"
)

// TenantService handles academy registration
type TenantService struct {
	tenants academy.TenantRepository
}

// NewTenantService creates a TenantService
func NewTenantService(tenants academy.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// Register creates a new academy tenant
func (s *TenantService) Register(ctx context.Context, req RegisterTenantRequest) (*TenantResponse, error) {
	tenant, err := academy.NewTenant(req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// GetByID retrieves a tenant
func (s *TenantService) GetByID(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// List retrieves a page of tenants
func (s *TenantService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[TenantResponse], error) {
	page, err := s.tenants.List(ctx, filter)
	if err != nil {
		return shared.Paginated[TenantResponse]{}, err
	}
	items := make([]TenantResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToTenantResponse(&page.Items[i])
	}
	return shared.Paginated[TenantResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}
