package academy

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/shared"
)

// Student is a tenant-scoped learner. TotalFee is a derived aggregate,
// maintained as the sum of fees of the lectures the student is actively
// enrolled in. It is stored in minor currency units and never computed
// incrementally; every roster change recomputes it from the ledger.
type Student struct {
	shared.TenantEntity
	Name          string     `gorm:"type:varchar(100);not null"`
	StudentNumber string     `gorm:"type:varchar(40)"`
	Phone         string     `gorm:"type:varchar(30)"`
	ParentPhone   string     `gorm:"type:varchar(30)"`
	School        string     `gorm:"type:varchar(100)"`
	Grade         string     `gorm:"type:varchar(30)"`
	Memo          string     `gorm:"type:text"`
	TotalFee      int64      `gorm:"not null;default:0"`
	Active        bool       `gorm:"not null;default:true;index"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (Student) TableName() string {
	return "students"
}

// NewStudent creates a student aggregate
func NewStudent(tenantID uuid.UUID, name string) (*Student, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantMissing
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Student name is required")
	}
	return &Student{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Active:       true,
	}, nil
}

// Deactivate soft-deletes the student. The row stays for history; the
// student stops counting toward lecture occupancy.
func (s *Student) Deactivate() {
	if !s.Active {
		return
	}
	now := time.Now()
	s.Active = false
	s.DeactivatedAt = &now
	s.UpdatedAt = now
}

// Reactivate restores a soft-deleted student
func (s *Student) Reactivate() {
	if s.Active {
		return
	}
	s.Active = true
	s.DeactivatedAt = nil
	s.UpdatedAt = time.Now()
}
