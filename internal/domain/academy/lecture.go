package academy

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/shared"
)

// Lecture is a tenant-scoped class offering. Occupancy is a derived
// aggregate, the count of active enrollments whose student is itself
// active. InstructorID mirrors the primary assignment and may be nil.
type Lecture struct {
	shared.TenantEntity
	Name         string     `gorm:"type:varchar(150);not null"`
	Fee          int64      `gorm:"not null;default:0"`
	Capacity     *int
	Occupancy    int        `gorm:"not null;default:0"`
	InstructorID *uuid.UUID `gorm:"type:uuid;index"`
	DaysOfWeek   string     `gorm:"type:varchar(60)"`
	StartTime    string     `gorm:"type:varchar(5)"`
	EndTime      string     `gorm:"type:varchar(5)"`
	Room         string     `gorm:"type:varchar(60)"`
	Memo         string     `gorm:"type:text"`
	Active       bool       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Lecture) TableName() string {
	return "lectures"
}

// NewLecture creates a lecture aggregate
func NewLecture(tenantID uuid.UUID, name string, fee int64) (*Lecture, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantMissing
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Lecture name is required")
	}
	if fee < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Lecture fee cannot be negative")
	}
	return &Lecture{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Fee:          fee,
		Active:       true,
	}, nil
}

// Deactivate soft-deletes the lecture
func (l *Lecture) Deactivate() {
	l.Active = false
	l.UpdatedAt = time.Now()
}

// HasRoom reports whether another enrollment fits under the capacity
// limit. A nil capacity means unlimited.
func (l *Lecture) HasRoom() bool {
	if l.Capacity == nil {
		return true
	}
	return l.Occupancy < *l.Capacity
}
