package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger persists roster links and answers the aggregate queries the
// fee and occupancy recalculations are built on.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger

	// LinksForLecture returns every ledger row (active and inactive)
	// for one lecture and kind.
	LinksForLecture(ctx context.Context, tenantID, lectureID uuid.UUID, kind LinkKind) ([]Link, error)

	// LinksForMember returns every ledger row (active and inactive)
	// for one member and kind across all lectures.
	LinksForMember(ctx context.Context, tenantID, memberID uuid.UUID, kind LinkKind) ([]Link, error)

	// Apply executes a reconcile plan against one lecture's ledger
	Apply(ctx context.Context, tenantID, lectureID uuid.UUID, kind LinkKind, plan ReconcilePlan) error

	// ActiveMemberIDs returns the members actively linked to a lecture
	ActiveMemberIDs(ctx context.Context, tenantID, lectureID uuid.UUID, kind LinkKind) ([]uuid.UUID, error)

	// ActiveLectureIDs returns the lectures a member is actively linked to
	ActiveLectureIDs(ctx context.Context, tenantID, memberID uuid.UUID, kind LinkKind) ([]uuid.UUID, error)

	// ActiveFeeTotal sums the fees of the active lectures a student is
	// actively enrolled in.
	ActiveFeeTotal(ctx context.Context, tenantID, studentID uuid.UUID) (int64, error)

	// ActiveEnrollmentCount counts active enrollments whose student is
	// itself active. Soft-deleted students do not occupy seats.
	ActiveEnrollmentCount(ctx context.Context, tenantID, lectureID uuid.UUID) (int, error)

	// DeleteForLecture hard-deletes every ledger row of a lecture,
	// returning the student IDs that were actively enrolled.
	DeleteForLecture(ctx context.Context, tenantID, lectureID uuid.UUID) ([]uuid.UUID, error)

	// DeleteForMember hard-deletes every ledger row of a member,
	// returning the lecture IDs the member was actively linked to.
	DeleteForMember(ctx context.Context, tenantID, memberID uuid.UUID, kind LinkKind) ([]uuid.UUID, error)
}
