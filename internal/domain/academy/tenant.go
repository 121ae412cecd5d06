package academy

import (
	"strings"

	"github.com/academy/backend/internal/domain/shared"
)

// Tenant is a registered academy. All other aggregates reference it by ID.
type Tenant struct {
	shared.BaseEntity
	Name   string `gorm:"type:varchar(200);not null"`
	Phone  string `gorm:"type:varchar(30)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a tenant aggregate
func NewTenant(name, phone string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant name is required")
	}
	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Phone:      strings.TrimSpace(phone),
		Active:     true,
	}, nil
}
