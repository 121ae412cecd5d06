package academy

import (
	"time"

	"github.com/google/uuid"

	"github.com/academy/backend/internal/domain/academy"
)

// CreateStudentRequest is the input for registering a student
type CreateStudentRequest struct {
	Name          string `json:"name" binding:"required"`
	StudentNumber string `json:"student_number"`
	Phone         string `json:"phone"`
	ParentPhone   string `json:"parent_phone"`
	School        string `json:"school"`
	Grade         string `json:"grade"`
	Memo          string `json:"memo"`
}

// UpdateStudentRequest is the input for editing a student. Nil fields
// are left unchanged.
type UpdateStudentRequest struct {
	Name          *string `json:"name"`
	StudentNumber *string `json:"student_number"`
	Phone         *string `json:"phone"`
	ParentPhone   *string `json:"parent_phone"`
	School        *string `json:"school"`
	Grade         *string `json:"grade"`
	Memo          *string `json:"memo"`
}

// StudentResponse is the API shape of a student
type StudentResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	StudentNumber string     `json:"student_number,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	ParentPhone   string     `json:"parent_phone,omitempty"`
	School        string     `json:"school,omitempty"`
	Grade         string     `json:"grade,omitempty"`
	Memo          string     `json:"memo,omitempty"`
	TotalFee      int64      `json:"total_fee"`
	Active        bool       `json:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToStudentResponse maps a student aggregate to its API shape
func ToStudentResponse(s *academy.Student) StudentResponse {
	return StudentResponse{
		ID:            s.ID,
		Name:          s.Name,
		StudentNumber: s.StudentNumber,
		Phone:         s.Phone,
		ParentPhone:   s.ParentPhone,
		School:        s.School,
		Grade:         s.Grade,
		Memo:          s.Memo,
		TotalFee:      s.TotalFee,
		Active:        s.Active,
		DeactivatedAt: s.DeactivatedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// CreateLectureRequest is the input for creating a lecture
type CreateLectureRequest struct {
	Name       string `json:"name" binding:"required"`
	Fee        int64  `json:"fee" binding:"min=0"`
	Capacity   *int   `json:"capacity"`
	DaysOfWeek string `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Room       string `json:"room"`
	Memo       string `json:"memo"`
}

// UpdateLectureRequest is the input for editing a lecture
type UpdateLectureRequest struct {
	Name       *string `json:"name"`
	Fee        *int64  `json:"fee"`
	Capacity   *int    `json:"capacity"`
	DaysOfWeek *string `json:"days_of_week"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Room       *string `json:"room"`
	Memo       *string `json:"memo"`
}

// LectureResponse is the API shape of a lecture
type LectureResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Fee          int64      `json:"fee"`
	Capacity     *int       `json:"capacity,omitempty"`
	Occupancy    int        `json:"occupancy"`
	InstructorID *uuid.UUID `json:"instructor_id,omitempty"`
	DaysOfWeek   string     `json:"days_of_week,omitempty"`
	StartTime    string     `json:"start_time,omitempty"`
	EndTime      string     `json:"end_time,omitempty"`
	Room         string     `json:"room,omitempty"`
	Memo         string     `json:"memo,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToLectureResponse maps a lecture aggregate to its API shape
func ToLectureResponse(l *academy.Lecture) LectureResponse {
	return LectureResponse{
		ID:           l.ID,
		Name:         l.Name,
		Fee:          l.Fee,
		Capacity:     l.Capacity,
		Occupancy:    l.Occupancy,
		InstructorID: l.InstructorID,
		DaysOfWeek:   l.DaysOfWeek,
		StartTime:    l.StartTime,
		EndTime:      l.EndTime,
		Room:         l.Room,
		Memo:         l.Memo,
		Active:       l.Active,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// CreateInstructorRequest is the input for registering an instructor
type CreateInstructorRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
	Memo  string `json:"memo"`
}

// UpdateInstructorRequest is the input for editing an instructor
type UpdateInstructorRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Memo  *string `json:"memo"`
}

// InstructorResponse is the API shape of an instructor
type InstructorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Memo      string    `json:"memo,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToInstructorResponse maps an instructor aggregate to its API shape
func ToInstructorResponse(i *academy.Instructor) InstructorResponse {
	return InstructorResponse{
		ID:        i.ID,
		Name:      i.Name,
		Phone:     i.Phone,
		Email:     i.Email,
		Memo:      i.Memo,
		Active:    i.Active,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// ReconcileRosterRequest is the target member set for one lecture
type ReconcileRosterRequest struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// ReconcileStudentLecturesRequest is the target lecture set for one student
type ReconcileStudentLecturesRequest struct {
	LectureIDs []uuid.UUID `json:"lecture_ids"`
}

// RegisterTenantRequest is the input for registering an academy
type RegisterTenantRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

// TenantResponse is the API shape of a tenant
type TenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToTenantResponse maps a tenant aggregate to its API shape
func ToTenantResponse(t *academy.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Phone:     t.Phone,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
	}
}
