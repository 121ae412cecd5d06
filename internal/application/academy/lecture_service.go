package academy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

// LectureService handles lecture lifecycle operations
type LectureService struct {
	tx         persistence.TxManager
	lectures   academy.LectureRepository
	ledger     roster.Ledger
	attendance attendance.Repository
	recalc     *FeeRecalculator
}

// NewLectureService creates a LectureService
func NewLectureService(
	tx persistence.TxManager,
	lectures academy.LectureRepository,
	ledger roster.Ledger,
	attendanceRepo attendance.Repository,
	recalc *FeeRecalculator,
) *LectureService {
	return &LectureService{
		tx:         tx,
		lectures:   lectures,
		ledger:     ledger,
		attendance: attendanceRepo,
		recalc:     recalc,
	}
}

// Create creates a new lecture
func (s *LectureService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLectureRequest) (*LectureResponse, error) {
	lecture, err := academy.NewLecture(tenantID, req.Name, req.Fee)
	if err != nil {
		return nil, err
	}
	lecture.Capacity = req.Capacity
	lecture.DaysOfWeek = req.DaysOfWeek
	lecture.StartTime = req.StartTime
	lecture.EndTime = req.EndTime
	lecture.Room = req.Room
	lecture.Memo = req.Memo

	if err := s.lectures.Create(ctx, lecture); err != nil {
		return nil, err
	}
	resp := ToLectureResponse(lecture)
	return &resp, nil
}

// GetByID retrieves a lecture
func (s *LectureService) GetByID(ctx context.Context, tenantID, lectureID uuid.UUID) (*LectureResponse, error) {
	lecture, err := s.lectures.FindByID(ctx, tenantID, lectureID)
	if err != nil {
		return nil, err
	}
	resp := ToLectureResponse(lecture)
	return &resp, nil
}

// List retrieves a page of lectures
func (s *LectureService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[LectureResponse], error) {
	page, err := s.lectures.List(ctx, tenantID, filter, includeInactive)
	if err != nil {
		return shared.Paginated[LectureResponse]{}, err
	}
	items := make([]LectureResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToLectureResponse(&page.Items[i])
	}
	return shared.Paginated[LectureResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// Update edits a lecture. A fee change invalidates the stored totals of
// every actively enrolled student, so those are recomputed in the same
// transaction as the lecture write.
func (s *LectureService) Update(ctx context.Context, tenantID, lectureID uuid.UUID, req UpdateLectureRequest) (*LectureResponse, error) {
	var resp LectureResponse
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
		if err != nil {
			return err
		}

		feeChanged := false
		if req.Name != nil {
			if *req.Name == "" {
				return shared.NewDomainError("VALIDATION_ERROR", "Lecture name cannot be empty")
			}
			lecture.Name = *req.Name
		}
		if req.Fee != nil {
			if *req.Fee < 0 {
				return shared.NewDomainError("VALIDATION_ERROR", "Lecture fee cannot be negative")
			}
			feeChanged = lecture.Fee != *req.Fee
			lecture.Fee = *req.Fee
		}
		if req.Capacity != nil {
			lecture.Capacity = req.Capacity
		}
		if req.DaysOfWeek != nil {
			lecture.DaysOfWeek = *req.DaysOfWeek
		}
		if req.StartTime != nil {
			lecture.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			lecture.EndTime = *req.EndTime
		}
		if req.Room != nil {
			lecture.Room = *req.Room
		}
		if req.Memo != nil {
			lecture.Memo = *req.Memo
		}

		if err := lectures.Update(ctx, lecture); err != nil {
			return err
		}

		if feeChanged {
			studentIDs, err := ledger.ActiveMemberIDs(ctx, tenantID, lectureID, roster.KindEnrollment)
			if err != nil {
				return err
			}
			if err := recalc.RecalcStudentFees(ctx, tenantID, studentIDs); err != nil {
				return err
			}
		}

		resp = ToLectureResponse(lecture)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Deactivate soft-deletes a lecture. An inactive lecture no longer
// charges its students, so their totals are recomputed.
func (s *LectureService) Deactivate(ctx context.Context, tenantID, lectureID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
		if err != nil {
			return err
		}
		lecture.Deactivate()
		if err := lectures.Update(ctx, lecture); err != nil {
			return err
		}

		studentIDs, err := ledger.ActiveMemberIDs(ctx, tenantID, lectureID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		return recalc.RecalcStudentFees(ctx, tenantID, studentIDs)
	})
}

// Delete removes a lecture permanently. Ledger rows are cascaded and
// each previously enrolled student gets a fee recomputation. The
// lecture row is gone, so there is no occupancy left to maintain.
// Attendance rows that pointed at the lecture are kept as day-level
// records with the lecture reference cleared; when a student already
// has a day-level row for that date the lecture-scoped row is dropped
// so the two never collide on the same key.
func (s *LectureService) Delete(ctx context.Context, tenantID, lectureID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		attendanceRepo := s.attendance.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		if _, err := lectures.FindByID(ctx, tenantID, lectureID); err != nil {
			return err
		}

		studentIDs, err := ledger.DeleteForLecture(ctx, tenantID, lectureID)
		if err != nil {
			return err
		}
		if err := attendanceRepo.ClearLectureRef(ctx, tenantID, lectureID); err != nil {
			return err
		}
		if err := lectures.HardDelete(ctx, tenantID, lectureID); err != nil {
			return err
		}
		return recalc.RecalcStudentFees(ctx, tenantID, studentIDs)
	})
}
