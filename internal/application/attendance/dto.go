package attendance

import (
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/attendance"
)

// RecordAttendanceRequest is one attendance write. Date is a calendar
// day in YYYY-MM-DD form. Nil CheckIn/CheckOut leave any stored
// timestamps untouched.
type RecordAttendanceRequest struct {
	StudentID uuid.UUID  `json:"student_id" binding:"required"`
	LectureID *uuid.UUID `json:"lecture_id"`
	Date      string     `json:"date" binding:"required"`
	Status    string     `json:"status" binding:"required,attendance_status"`
	CheckIn   *string    `json:"check_in" binding:"omitempty,clock"`
	CheckOut  *string    `json:"check_out" binding:"omitempty,clock"`
	Memo      *string    `json:"memo"`
}

// RecordResponse is the API shape of an attendance record
type RecordResponse struct {
	ID        uuid.UUID  `json:"id"`
	StudentID uuid.UUID  `json:"student_id"`
	LectureID *uuid.UUID `json:"lecture_id,omitempty"`
	Date      string     `json:"date"`
	Status    string     `json:"status"`
	CheckIn   *string    `json:"check_in,omitempty"`
	CheckOut  *string    `json:"check_out,omitempty"`
	Memo      string     `json:"memo,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToRecordResponse maps a record to its API shape
func ToRecordResponse(r *attendance.Record) RecordResponse {
	return RecordResponse{
		ID:        r.ID,
		StudentID: r.StudentID,
		LectureID: r.LectureID,
		Date:      r.Date.Format("2006-01-02"),
		Status:    string(r.Status),
		CheckIn:   r.CheckIn,
		CheckOut:  r.CheckOut,
		Memo:      r.Memo,
		UpdatedAt: r.UpdatedAt,
	}
}

// DayCell is one student's state for one day of the monthly view. Out
// is only populated once the student has left for the day.
type DayCell struct {
	Status string  `json:"status"`
	In     *string `json:"in,omitempty"`
	Out    *string `json:"out,omitempty"`
}

// StudentMonth is one student's row of the monthly view
type StudentMonth struct {
	StudentID uuid.UUID       `json:"student_id"`
	Name      string          `json:"name"`
	Days      map[int]DayCell `json:"days"`
}

// MonthlyView is the per-student day grid for one month
type MonthlyView struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Students []StudentMonth `json:"students"`
}

// StudentPeriodStats is one student's attendance tally over a range.
// PresentDays counts records marked present or late; TotalDays counts
// distinct days with any record.
type StudentPeriodStats struct {
	StudentID      uuid.UUID `json:"student_id"`
	Name           string    `json:"name"`
	PresentDays    int       `json:"present_days"`
	AbsentDays     int       `json:"absent_days"`
	LateDays       int       `json:"late_days"`
	EarlyLeaveDays int       `json:"early_leave_days"`
	TotalDays      int       `json:"total_days"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// StatsResponse aggregates a range into overall status counts and
// per-student tallies
type StatsResponse struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	Counts   map[string]int64     `json:"counts"`
	Students []StudentPeriodStats `json:"students"`
}

// ResetResult reports one daily reset run
type ResetResult struct {
	Date         string           `json:"date"`
	TenantsSwept int              `json:"tenants_swept"`
	RowsDeleted  int64            `json:"rows_deleted"`
	Snapshot     map[string]int64 `json:"snapshot"`
}
