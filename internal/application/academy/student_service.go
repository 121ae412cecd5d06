package academy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

// StudentService handles student lifecycle operations
type StudentService struct {
	tx         persistence.TxManager
	students   academy.StudentRepository
	ledger     roster.Ledger
	attendance attendance.Repository
	payments   billing.PaymentRepository
	recalc     *FeeRecalculator
}

// NewStudentService creates a StudentService
func NewStudentService(
	tx persistence.TxManager,
	students academy.StudentRepository,
	ledger roster.Ledger,
	attendanceRepo attendance.Repository,
	payments billing.PaymentRepository,
	recalc *FeeRecalculator,
) *StudentService {
	return &StudentService{
		tx:         tx,
		students:   students,
		ledger:     ledger,
		attendance: attendanceRepo,
		payments:   payments,
		recalc:     recalc,
	}
}

// Create registers a new student
func (s *StudentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateStudentRequest) (*StudentResponse, error) {
	student, err := academy.NewStudent(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	student.StudentNumber = req.StudentNumber
	student.Phone = req.Phone
	student.ParentPhone = req.ParentPhone
	student.School = req.School
	student.Grade = req.Grade
	student.Memo = req.Memo

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	resp := ToStudentResponse(student)
	return &resp, nil
}

// GetByID retrieves a student
func (s *StudentService) GetByID(ctx context.Context, tenantID, studentID uuid.UUID) (*StudentResponse, error) {
	student, err := s.students.FindByID(ctx, tenantID, studentID)
	if err != nil {
		return nil, err
	}
	resp := ToStudentResponse(student)
	return &resp, nil
}

// List retrieves a page of students
func (s *StudentService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[StudentResponse], error) {
	page, err := s.students.List(ctx, tenantID, filter, includeInactive)
	if err != nil {
		return shared.Paginated[StudentResponse]{}, err
	}
	items := make([]StudentResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToStudentResponse(&page.Items[i])
	}
	return shared.Paginated[StudentResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// Update edits a student's profile fields
func (s *StudentService) Update(ctx context.Context, tenantID, studentID uuid.UUID, req UpdateStudentRequest) (*StudentResponse, error) {
	student, err := s.students.FindByID(ctx, tenantID, studentID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Student name cannot be empty")
		}
		student.Name = *req.Name
	}
	if req.StudentNumber != nil {
		student.StudentNumber = *req.StudentNumber
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.ParentPhone != nil {
		student.ParentPhone = *req.ParentPhone
	}
	if req.School != nil {
		student.School = *req.School
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.Memo != nil {
		student.Memo = *req.Memo
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	resp := ToStudentResponse(student)
	return &resp, nil
}

// Deactivate soft-deletes a student. Ledger rows stay active so a
// reactivated student walks back into the same lectures, but occupancy
// stops counting the student immediately.
func (s *StudentService) Deactivate(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		students := s.students.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		student, err := students.FindByID(ctx, tenantID, studentID)
		if err != nil {
			return err
		}
		student.Deactivate()
		if err := students.Update(ctx, student); err != nil {
			return err
		}

		lectureIDs, err := ledger.ActiveLectureIDs(ctx, tenantID, studentID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		return recalc.RecalcLectureOccupancies(ctx, tenantID, lectureIDs)
	})
}

// Reactivate restores a soft-deleted student and folds the student back
// into the occupancy counts.
func (s *StudentService) Reactivate(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		students := s.students.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		student, err := students.FindByID(ctx, tenantID, studentID)
		if err != nil {
			return err
		}
		student.Reactivate()
		if err := students.Update(ctx, student); err != nil {
			return err
		}

		lectureIDs, err := ledger.ActiveLectureIDs(ctx, tenantID, studentID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		if err := recalc.RecalcLectureOccupancies(ctx, tenantID, lectureIDs); err != nil {
			return err
		}
		return recalc.RecalcStudentFee(ctx, tenantID, studentID)
	})
}

// HardDelete removes a student permanently together with ledger rows,
// attendance history and payments, then recomputes occupancy for every
// lecture the student occupied.
func (s *StudentService) HardDelete(ctx context.Context, tenantID, studentID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		students := s.students.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		attendanceRepo := s.attendance.WithTx(tx)
		payments := s.payments.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		if _, err := students.FindByID(ctx, tenantID, studentID); err != nil {
			return err
		}

		lectureIDs, err := ledger.DeleteForMember(ctx, tenantID, studentID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		if err := attendanceRepo.DeleteForStudent(ctx, tenantID, studentID); err != nil {
			return err
		}
		if err := payments.DeleteForStudent(ctx, tenantID, studentID); err != nil {
			return err
		}
		if err := students.HardDelete(ctx, tenantID, studentID); err != nil {
			return err
		}
		return recalc.RecalcLectureOccupancies(ctx, tenantID, lectureIDs)
	})
}
