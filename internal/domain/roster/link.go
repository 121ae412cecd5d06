package roster

import (
	"time"

	"github.com/google/uuid"
)

// LinkKind discriminates the two relationship families tracked in the
// roster ledger.
type LinkKind string

const (
	// KindEnrollment links a student to a lecture
	KindEnrollment LinkKind = "enrollment"
	// KindAssignment links an instructor to a lecture
	KindAssignment LinkKind = "assignment"
)

// Valid reports whether the kind is one of the known values
func (k LinkKind) Valid() bool {
	return k == KindEnrollment || k == KindAssignment
}

// Link is one row of the roster ledger. Rows are never deleted when a
// member leaves a lecture; they are deactivated and reused if the same
// member rejoins, preserving history under the natural key
// (tenant_id, lecture_id, kind, member_id).
type Link struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_roster_natural,priority:1"`
	LectureID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_roster_natural,priority:2"`
	Kind          LinkKind   `gorm:"type:varchar(20);not null;uniqueIndex:uq_roster_natural,priority:3"`
	MemberID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_roster_natural,priority:4"`
	Active        bool       `gorm:"not null;default:true;index"`
	ActivatedAt   time.Time  `gorm:"not null"`
	DeactivatedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (Link) TableName() string {
	return "roster_links"
}

// NewLink creates an active ledger row
func NewLink(tenantID, lectureID uuid.UUID, kind LinkKind, memberID uuid.UUID) *Link {
	now := time.Now()
	return &Link{
		ID:          uuid.New(),
		TenantID:    tenantID,
		LectureID:   lectureID,
		Kind:        kind,
		MemberID:    memberID,
		Active:      true,
		ActivatedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Deactivate marks the link inactive without removing the row
func (l *Link) Deactivate() {
	if !l.Active {
		return
	}
	now := time.Now()
	l.Active = false
	l.DeactivatedAt = &now
	l.UpdatedAt = now
}

// Reactivate flips an existing row back to active
func (l *Link) Reactivate() {
	if l.Active {
		return
	}
	l.Active = true
	l.DeactivatedAt = nil
	l.ActivatedAt = time.Now()
	l.UpdatedAt = l.ActivatedAt
}

// ReconcilePlan is the minimal set of row changes that moves a
// lecture's roster from its current state to a target member set.
type ReconcilePlan struct {
	ToDeactivate []uuid.UUID // active rows whose member left the target set
	ToReactivate []uuid.UUID // inactive rows whose member is back in the target set
	ToInsert     []uuid.UUID // members with no ledger row yet
}

// Empty reports whether the plan changes nothing
func (p ReconcilePlan) Empty() bool {
	return len(p.ToDeactivate) == 0 && len(p.ToReactivate) == 0 && len(p.ToInsert) == 0
}

// BuildReconcilePlan diffs the existing ledger rows for one lecture and
// kind against the desired member set. Applying the same target twice
// yields an empty second plan, which makes roster writes idempotent.
func BuildReconcilePlan(existing []Link, target []uuid.UUID) ReconcilePlan {
	want := make(map[uuid.UUID]struct{}, len(target))
	for _, id := range target {
		want[id] = struct{}{}
	}

	var plan ReconcilePlan
	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, link := range existing {
		known[link.MemberID] = struct{}{}
		_, wanted := want[link.MemberID]
		switch {
		case link.Active && !wanted:
			plan.ToDeactivate = append(plan.ToDeactivate, link.MemberID)
		case !link.Active && wanted:
			plan.ToReactivate = append(plan.ToReactivate, link.MemberID)
		}
	}
	for _, id := range target {
		if _, ok := known[id]; !ok {
			plan.ToInsert = append(plan.ToInsert, id)
		}
	}
	return plan
}
