// Package tenant provides multi-tenant scoping helpers for GORM.
//
// Every repository method takes the academy's tenant ID explicitly and
// runs through Scope, so a query can never touch another academy's rows
// by omission.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is attempted without a tenant ID
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope applies tenant filtering to GORM queries. A nil tenant ID poisons
// the query instead of silently matching every row.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// Require validates a tenant ID before a write that cannot be expressed
// as a scoped query.
func Require(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrTenantIDRequired
	}
	return nil
}
