package academy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/roster"
)

// FeeRecalculator recomputes the derived aggregates that roster changes
// invalidate. Both recomputations read the ledger from scratch and
// overwrite the stored value; nothing is ever incremented, so a missed
// or repeated recalculation cannot drift the totals.
type FeeRecalculator struct {
	students academy.StudentRepository
	lectures academy.LectureRepository
	ledger   roster.Ledger
}

// NewFeeRecalculator creates a FeeRecalculator
func NewFeeRecalculator(students academy.StudentRepository, lectures academy.LectureRepository, ledger roster.Ledger) *FeeRecalculator {
	return &FeeRecalculator{students: students, lectures: lectures, ledger: ledger}
}

// WithTx binds the recalculator to an open transaction
func (f *FeeRecalculator) WithTx(tx *gorm.DB) *FeeRecalculator {
	return &FeeRecalculator{
		students: f.students.WithTx(tx),
		lectures: f.lectures.WithTx(tx),
		ledger:   f.ledger.WithTx(tx),
	}
}

// RecalcStudentFee rewrites a student's total fee as the sum of the
// fees of the active lectures the student is actively enrolled in.
func (f *FeeRecalculator) RecalcStudentFee(ctx context.Context, tenantID, studentID uuid.UUID) error {
	total, err := f.ledger.ActiveFeeTotal(ctx, tenantID, studentID)
	if err != nil {
		return err
	}
	return f.students.SetTotalFee(ctx, tenantID, studentID, total)
}

// RecalcStudentFees recomputes fees for a batch of students
func (f *FeeRecalculator) RecalcStudentFees(ctx context.Context, tenantID uuid.UUID, studentIDs []uuid.UUID) error {
	for _, id := range studentIDs {
		if err := f.RecalcStudentFee(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}

// RecalcLectureOccupancy rewrites a lecture's occupancy as the count of
// active enrollments whose student is itself active.
func (f *FeeRecalculator) RecalcLectureOccupancy(ctx context.Context, tenantID, lectureID uuid.UUID) error {
	count, err := f.ledger.ActiveEnrollmentCount(ctx, tenantID, lectureID)
	if err != nil {
		return err
	}
	return f.lectures.SetOccupancy(ctx, tenantID, lectureID, count)
}

// RecalcLectureOccupancies recomputes occupancy for a batch of lectures
func (f *FeeRecalculator) RecalcLectureOccupancies(ctx context.Context, tenantID uuid.UUID, lectureIDs []uuid.UUID) error {
	for _, id := range lectureIDs {
		if err := f.RecalcLectureOccupancy(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}
