package academy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

// InstructorService handles instructor lifecycle operations
type InstructorService struct {
	tx          persistence.TxManager
	instructors academy.InstructorRepository
	lectures    academy.LectureRepository
	ledger      roster.Ledger
}

// NewInstructorService creates an InstructorService
func NewInstructorService(
	tx persistence.TxManager,
	instructors academy.InstructorRepository,
	lectures academy.LectureRepository,
	ledger roster.Ledger,
) *InstructorService {
	return &InstructorService{
		tx:          tx,
		instructors: instructors,
		lectures:    lectures,
		ledger:      ledger,
	}
}

// Create registers a new instructor
func (s *InstructorService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInstructorRequest) (*InstructorResponse, error) {
	instructor, err := academy.NewInstructor(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	instructor.Phone = req.Phone
	instructor.Email = req.Email
	instructor.Memo = req.Memo

	if err := s.instructors.Create(ctx, instructor); err != nil {
		return nil, err
	}
	resp := ToInstructorResponse(instructor)
	return &resp, nil
}

// GetByID retrieves an instructor
func (s *InstructorService) GetByID(ctx context.Context, tenantID, instructorID uuid.UUID) (*InstructorResponse, error) {
	instructor, err := s.instructors.FindByID(ctx, tenantID, instructorID)
	if err != nil {
		return nil, err
	}
	resp := ToInstructorResponse(instructor)
	return &resp, nil
}

// List retrieves a page of instructors
func (s *InstructorService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, includeInactive bool) (shared.Paginated[InstructorResponse], error) {
	page, err := s.instructors.List(ctx, tenantID, filter, includeInactive)
	if err != nil {
		return shared.Paginated[InstructorResponse]{}, err
	}
	items := make([]InstructorResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToInstructorResponse(&page.Items[i])
	}
	return shared.Paginated[InstructorResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// Update edits an instructor's profile fields
func (s *InstructorService) Update(ctx context.Context, tenantID, instructorID uuid.UUID, req UpdateInstructorRequest) (*InstructorResponse, error) {
	instructor, err := s.instructors.FindByID(ctx, tenantID, instructorID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Instructor name cannot be empty")
		}
		instructor.Name = *req.Name
	}
	if req.Phone != nil {
		instructor.Phone = *req.Phone
	}
	if req.Email != nil {
		instructor.Email = *req.Email
	}
	if req.Memo != nil {
		instructor.Memo = *req.Memo
	}

	if err := s.instructors.Update(ctx, instructor); err != nil {
		return nil, err
	}
	resp := ToInstructorResponse(instructor)
	return &resp, nil
}

// Deactivate soft-deletes an instructor. Assignment rows are
// deactivated and any lecture holding the instructor as its primary
// pointer falls back to its next assigned instructor.
func (s *InstructorService) Deactivate(ctx context.Context, tenantID, instructorID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		instructors := s.instructors.WithTx(tx)
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		instructor, err := instructors.FindByID(ctx, tenantID, instructorID)
		if err != nil {
			return err
		}
		instructor.Deactivate()
		if err := instructors.Update(ctx, instructor); err != nil {
			return err
		}

		lectureIDs, err := ledger.ActiveLectureIDs(ctx, tenantID, instructorID, roster.KindAssignment)
		if err != nil {
			return err
		}
		for _, lectureID := range lectureIDs {
			plan := roster.ReconcilePlan{ToDeactivate: []uuid.UUID{instructorID}}
			if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindAssignment, plan); err != nil {
				return err
			}

			lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
			if err != nil {
				return err
			}
			if lecture.InstructorID == nil || *lecture.InstructorID != instructorID {
				continue
			}
			remaining, err := ledger.ActiveMemberIDs(ctx, tenantID, lectureID, roster.KindAssignment)
			if err != nil {
				return err
			}
			var primary *uuid.UUID
			if len(remaining) > 0 {
				primary = &remaining[0]
			}
			if err := lectures.SetInstructor(ctx, tenantID, lectureID, primary); err != nil {
				return err
			}
		}
		return nil
	})
}
