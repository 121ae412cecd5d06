package academy

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/shared"
)

// Instructor is a tenant-scoped teacher
type Instructor struct {
	shared.TenantEntity
	Name   string `gorm:"type:varchar(100);not null"`
	Phone  string `gorm:"type:varchar(30)"`
	Email  string `gorm:"type:varchar(150)"`
	Memo   string `gorm:"type:text"`
	Active bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Instructor) TableName() string {
	return "instructors"
}

// NewInstructor creates an instructor aggregate
func NewInstructor(tenantID uuid.UUID, name string) (*Instructor, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantMissing
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Instructor name is required")
	}
	return &Instructor{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Active:       true,
	}, nil
}

// Deactivate soft-deletes the instructor
func (i *Instructor) Deactivate() {
	i.Active = false
	i.UpdatedAt = time.Now()
}
