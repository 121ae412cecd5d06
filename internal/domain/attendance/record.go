package attendance

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/shared"
)

// Status is the lifecycle state of a student for one day
type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusOut        Status = "out"
	StatusReturned   Status = "returned"
	StatusLeft       Status = "left"
)

// Valid reports whether the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusEarlyLeave,
		StatusOut, StatusReturned, StatusLeft:
		return true
	}
	return false
}

// Departed reports whether the student has left for the day. Only these
// statuses expose a check-out time in the monthly view.
func (s Status) Departed() bool {
	return s == StatusLeft || s == StatusEarlyLeave
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether v is a wall-clock time in HH:MM form
func ValidClock(v string) bool {
	return clockPattern.MatchString(v)
}

// Record is one student's attendance for one calendar day, optionally
// narrowed to a single lecture. The natural key is
// (tenant_id, student_id, lecture_id, date); repeated writes for the
// same key update the existing row in place rather than appending.
type Record struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_attendance_day,priority:1"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index"`
	LectureID *uuid.UUID `gorm:"type:uuid"`
	Date      time.Time  `gorm:"type:date;not null;index:idx_attendance_day,priority:2"`
	Status    Status     `gorm:"type:varchar(20);not null"`
	CheckIn   *string    `gorm:"type:varchar(5)"`
	CheckOut  *string    `gorm:"type:varchar(5)"`
	Memo      string     `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "attendance_records"
}

// NewRecord creates an attendance record for the given day
func NewRecord(tenantID, studentID uuid.UUID, lectureID *uuid.UUID, date time.Time, status Status) (*Record, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantMissing
	}
	if !status.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown attendance status")
	}
	now := time.Now()
	return &Record{
		ID:        uuid.New(),
		TenantID:  tenantID,
		StudentID: studentID,
		LectureID: lectureID,
		Date:      date,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update carries the incoming values of an attendance write. Nil
// timestamps mean "leave the stored value alone".
type Update struct {
	Status   Status
	CheckIn  *string
	CheckOut *string
	Memo     *string
}

// Validate checks the update's status and clock fields
func (u Update) Validate() error {
	if !u.Status.Valid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown attendance status")
	}
	if u.CheckIn != nil && !ValidClock(*u.CheckIn) {
		return shared.NewDomainError("VALIDATION_ERROR", "Check-in time must be HH:MM")
	}
	if u.CheckOut != nil && !ValidClock(*u.CheckOut) {
		return shared.NewDomainError("VALIDATION_ERROR", "Check-out time must be HH:MM")
	}
	return nil
}

// Apply merges an update into the record. Status always follows the
// incoming value; timestamps and memo survive unless the update carries
// a replacement. A late write with no check-in therefore cannot erase
// the morning's check-in time.
func (r *Record) Apply(u Update) {
	r.Status = u.Status
	if u.CheckIn != nil {
		r.CheckIn = u.CheckIn
	}
	if u.CheckOut != nil {
		r.CheckOut = u.CheckOut
	}
	if u.Memo != nil {
		r.Memo = *u.Memo
	}
	r.UpdatedAt = time.Now()
}
