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

// RosterService reconciles enrollment and assignment rosters. Every
// operation runs the ledger diff and the dependent fee and occupancy
// recomputations inside a single transaction, so a failure anywhere
// leaves both the ledger and the derived fields untouched.
type RosterService struct {
	tx          persistence.TxManager
	students    academy.StudentRepository
	lectures    academy.LectureRepository
	instructors academy.InstructorRepository
	ledger      roster.Ledger
	recalc      *FeeRecalculator
}

// NewRosterService creates a RosterService
func NewRosterService(
	tx persistence.TxManager,
	students academy.StudentRepository,
	lectures academy.LectureRepository,
	instructors academy.InstructorRepository,
	ledger roster.Ledger,
	recalc *FeeRecalculator,
) *RosterService {
	return &RosterService{
		tx:          tx,
		students:    students,
		lectures:    lectures,
		instructors: instructors,
		ledger:      ledger,
		recalc:      recalc,
	}
}

// ReconcileLectureRoster replaces a lecture's enrolled-student set.
// Students missing from the target are deactivated, returning students
// get their old row back, and new students get fresh rows. Fees are
// recomputed for the union of the old and new rosters; occupancy for
// the lecture itself.
func (s *RosterService) ReconcileLectureRoster(ctx context.Context, tenantID, lectureID uuid.UUID, studentIDs []uuid.UUID) error {
	studentIDs = dedupe(studentIDs)
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
		if err != nil {
			return err
		}
		if lecture.Capacity != nil && len(studentIDs) > *lecture.Capacity {
			return shared.NewDomainError("CAPACITY_EXCEEDED", "Target roster exceeds the lecture capacity")
		}
		if err := s.ensureStudentsExist(ctx, tx, tenantID, studentIDs); err != nil {
			return err
		}

		existing, err := ledger.LinksForLecture(ctx, tenantID, lectureID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		plan := roster.BuildReconcilePlan(existing, studentIDs)
		if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindEnrollment, plan); err != nil {
			return err
		}

		affected := unionMembers(existing, studentIDs)
		if err := recalc.RecalcStudentFees(ctx, tenantID, affected); err != nil {
			return err
		}
		return recalc.RecalcLectureOccupancy(ctx, tenantID, lectureID)
	})
}

// ReconcileStudentLectures replaces the set of lectures a student is
// enrolled in. The inverse direction of ReconcileLectureRoster: one fee
// recomputation for the student, occupancy for every lecture the
// student entered or left. Entering a full lecture fails the whole
// reconcile.
func (s *RosterService) ReconcileStudentLectures(ctx context.Context, tenantID, studentID uuid.UUID, lectureIDs []uuid.UUID) error {
	lectureIDs = dedupe(lectureIDs)
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		students := s.students.WithTx(tx)
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		if _, err := students.FindByID(ctx, tenantID, studentID); err != nil {
			return err
		}
		targets := make(map[uuid.UUID]*academy.Lecture, len(lectureIDs))
		for _, lectureID := range lectureIDs {
			lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
			if err != nil {
				return err
			}
			targets[lectureID] = lecture
		}

		existing, err := ledger.LinksForMember(ctx, tenantID, studentID, roster.KindEnrollment)
		if err != nil {
			return err
		}

		want := make(map[uuid.UUID]struct{}, len(lectureIDs))
		for _, id := range lectureIDs {
			want[id] = struct{}{}
		}

		affected := make(map[uuid.UUID]struct{})
		known := make(map[uuid.UUID]struct{}, len(existing))
		member := []uuid.UUID{studentID}
		for _, link := range existing {
			known[link.LectureID] = struct{}{}
			_, wanted := want[link.LectureID]
			var plan roster.ReconcilePlan
			switch {
			case link.Active && !wanted:
				plan.ToDeactivate = member
			case !link.Active && wanted:
				if !targets[link.LectureID].HasRoom() {
					return shared.NewDomainError("CAPACITY_EXCEEDED", "Lecture is full")
				}
				plan.ToReactivate = member
			default:
				continue
			}
			if err := ledger.Apply(ctx, tenantID, link.LectureID, roster.KindEnrollment, plan); err != nil {
				return err
			}
			affected[link.LectureID] = struct{}{}
		}
		for _, lectureID := range lectureIDs {
			if _, ok := known[lectureID]; ok {
				continue
			}
			if !targets[lectureID].HasRoom() {
				return shared.NewDomainError("CAPACITY_EXCEEDED", "Lecture is full")
			}
			plan := roster.ReconcilePlan{ToInsert: member}
			if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindEnrollment, plan); err != nil {
				return err
			}
			affected[lectureID] = struct{}{}
		}

		if err := recalc.RecalcStudentFee(ctx, tenantID, studentID); err != nil {
			return err
		}
		for lectureID := range affected {
			if err := recalc.RecalcLectureOccupancy(ctx, tenantID, lectureID); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnrollStudent adds a single student to a lecture
func (s *RosterService) EnrollStudent(ctx context.Context, tenantID, lectureID, studentID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		lecture, err := lectures.FindByID(ctx, tenantID, lectureID)
		if err != nil {
			return err
		}
		if !lecture.HasRoom() {
			return shared.NewDomainError("CAPACITY_EXCEEDED", "Lecture is full")
		}
		if err := s.ensureStudentsExist(ctx, tx, tenantID, []uuid.UUID{studentID}); err != nil {
			return err
		}

		existing, err := ledger.LinksForLecture(ctx, tenantID, lectureID, roster.KindEnrollment)
		if err != nil {
			return err
		}
		target := activeMembers(existing)
		target = append(target, studentID)
		plan := roster.BuildReconcilePlan(existing, target)
		if plan.Empty() {
			return nil
		}
		if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindEnrollment, plan); err != nil {
			return err
		}
		if err := recalc.RecalcStudentFee(ctx, tenantID, studentID); err != nil {
			return err
		}
		return recalc.RecalcLectureOccupancy(ctx, tenantID, lectureID)
	})
}

// UnenrollStudent removes a single student from a lecture. The ledger
// row survives deactivated.
func (s *RosterService) UnenrollStudent(ctx context.Context, tenantID, lectureID, studentID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		recalc := s.recalc.WithTx(tx)

		plan := roster.ReconcilePlan{ToDeactivate: []uuid.UUID{studentID}}
		if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindEnrollment, plan); err != nil {
			return err
		}
		if err := recalc.RecalcStudentFee(ctx, tenantID, studentID); err != nil {
			return err
		}
		return recalc.RecalcLectureOccupancy(ctx, tenantID, lectureID)
	})
}

// ReconcileLectureInstructors replaces a lecture's assigned-instructor
// set and keeps the lecture's primary instructor pointer in sync: the
// first element of the target set, or nil when the set is empty.
func (s *RosterService) ReconcileLectureInstructors(ctx context.Context, tenantID, lectureID uuid.UUID, instructorIDs []uuid.UUID) error {
	instructorIDs = dedupe(instructorIDs)
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lectures := s.lectures.WithTx(tx)
		instructors := s.instructors.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		if _, err := lectures.FindByID(ctx, tenantID, lectureID); err != nil {
			return err
		}
		for _, id := range instructorIDs {
			if _, err := instructors.FindByID(ctx, tenantID, id); err != nil {
				return err
			}
		}

		existing, err := ledger.LinksForLecture(ctx, tenantID, lectureID, roster.KindAssignment)
		if err != nil {
			return err
		}
		plan := roster.BuildReconcilePlan(existing, instructorIDs)
		if err := ledger.Apply(ctx, tenantID, lectureID, roster.KindAssignment, plan); err != nil {
			return err
		}

		var primary *uuid.UUID
		if len(instructorIDs) > 0 {
			primary = &instructorIDs[0]
		}
		return lectures.SetInstructor(ctx, tenantID, lectureID, primary)
	})
}

// ensureStudentsExist rejects targets referencing unknown students
func (s *RosterService) ensureStudentsExist(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, studentIDs []uuid.UUID) error {
	students := s.students.WithTx(tx)
	for _, id := range studentIDs {
		if _, err := students.FindByID(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}

// unionMembers collects every member seen in the old ledger rows plus
// the new target set.
func unionMembers(existing []roster.Link, target []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(existing)+len(target))
	var out []uuid.UUID
	for _, link := range existing {
		if !link.Active {
			continue
		}
		if _, ok := seen[link.MemberID]; !ok {
			seen[link.MemberID] = struct{}{}
			out = append(out, link.MemberID)
		}
	}
	for _, id := range target {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func activeMembers(links []roster.Link) []uuid.UUID {
	var out []uuid.UUID
	for _, link := range links {
		if link.Active {
			out = append(out, link.MemberID)
		}
	}
	return out
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
