package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/infrastructure/persistence/tenant"
)

// GormRosterLedger implements roster.Ledger using GORM
type GormRosterLedger struct {
	db *gorm.DB
}

// NewGormRosterLedger creates a new GormRosterLedger
func NewGormRosterLedger(db *gorm.DB) *GormRosterLedger {
	return &GormRosterLedger{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GormRosterLedger) WithTx(tx *gorm.DB) roster.Ledger {
	return &GormRosterLedger{db: tx}
}

// LinksForLecture returns every ledger row for one lecture and kind
func (r *GormRosterLedger) LinksForLecture(ctx context.Context, tenantID, lectureID uuid.UUID, kind roster.LinkKind) ([]roster.Link, error) {
	var links []roster.Link
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("lecture_id = ? AND kind = ?", lectureID, kind).
		Find(&links).Error
	return links, err
}

// LinksForMember returns every ledger row for one member and kind
func (r *GormRosterLedger) LinksForMember(ctx context.Context, tenantID, memberID uuid.UUID, kind roster.LinkKind) ([]roster.Link, error) {
	var links []roster.Link
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("member_id = ? AND kind = ?", memberID, kind).
		Find(&links).Error
	return links, err
}

// Apply executes a reconcile plan against one lecture's ledger
func (r *GormRosterLedger) Apply(ctx context.Context, tenantID, lectureID uuid.UUID, kind roster.LinkKind, plan roster.ReconcilePlan) error {
	if err := tenant.Require(tenantID); err != nil {
		return err
	}
	now := time.Now()

	if len(plan.ToDeactivate) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&roster.Link{}).
			Scopes(tenant.Scope(tenantID)).
			Where("lecture_id = ? AND kind = ? AND member_id IN ?", lectureID, kind, plan.ToDeactivate).
			Updates(map[string]any{
				"active":         false,
				"deactivated_at": now,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}
	}

	if len(plan.ToReactivate) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&roster.Link{}).
			Scopes(tenant.Scope(tenantID)).
			Where("lecture_id = ? AND kind = ? AND member_id IN ?", lectureID, kind, plan.ToReactivate).
			Updates(map[string]any{
				"active":         true,
				"activated_at":   now,
				"deactivated_at": nil,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}
	}

	if len(plan.ToInsert) > 0 {
		links := make([]*roster.Link, len(plan.ToInsert))
		for i, memberID := range plan.ToInsert {
			links[i] = roster.NewLink(tenantID, lectureID, kind, memberID)
		}
		if err := r.db.WithContext(ctx).Create(links).Error; err != nil {
			return err
		}
	}
	return nil
}

// ActiveMemberIDs returns the members actively linked to a lecture
func (r *GormRosterLedger) ActiveMemberIDs(ctx context.Context, tenantID, lectureID uuid.UUID, kind roster.LinkKind) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&roster.Link{}).
		Scopes(tenant.Scope(tenantID)).
		Where("lecture_id = ? AND kind = ? AND active = ?", lectureID, kind, true).
		Pluck("member_id", &ids).Error
	return ids, err
}

// ActiveLectureIDs returns the lectures a member is actively linked to
func (r *GormRosterLedger) ActiveLectureIDs(ctx context.Context, tenantID, memberID uuid.UUID, kind roster.LinkKind) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&roster.Link{}).
		Scopes(tenant.Scope(tenantID)).
		Where("member_id = ? AND kind = ? AND active = ?", memberID, kind, true).
		Pluck("lecture_id", &ids).Error
	return ids, err
}

// ActiveFeeTotal sums the fees of the active lectures a student is
// actively enrolled in. The total is read from the lecture rows at call
// time, never accumulated incrementally.
func (r *GormRosterLedger) ActiveFeeTotal(ctx context.Context, tenantID, studentID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&roster.Link{}).
		Select("COALESCE(SUM(lectures.fee), 0)").
		Joins("JOIN lectures ON lectures.id = roster_links.lecture_id AND lectures.active = ?", true).
		Where("roster_links.tenant_id = ? AND roster_links.member_id = ? AND roster_links.kind = ? AND roster_links.active = ?",
			tenantID, studentID, roster.KindEnrollment, true).
		Scan(&total).Error
	return total, err
}

// ActiveEnrollmentCount counts active enrollments whose student is
// itself active.
func (r *GormRosterLedger) ActiveEnrollmentCount(ctx context.Context, tenantID, lectureID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&roster.Link{}).
		Joins("JOIN students ON students.id = roster_links.member_id AND students.active = ?", true).
		Where("roster_links.tenant_id = ? AND roster_links.lecture_id = ? AND roster_links.kind = ? AND roster_links.active = ?",
			tenantID, lectureID, roster.KindEnrollment, true).
		Count(&count).Error
	return int(count), err
}

// DeleteForLecture hard-deletes every ledger row of a lecture and
// returns the students that were actively enrolled at deletion time.
func (r *GormRosterLedger) DeleteForLecture(ctx context.Context, tenantID, lectureID uuid.UUID) ([]uuid.UUID, error) {
	affected, err := r.ActiveMemberIDs(ctx, tenantID, lectureID, roster.KindEnrollment)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("lecture_id = ?", lectureID).
		Delete(&roster.Link{}).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

// DeleteForMember hard-deletes every ledger row of a member and returns
// the lectures the member was actively linked to.
func (r *GormRosterLedger) DeleteForMember(ctx context.Context, tenantID, memberID uuid.UUID, kind roster.LinkKind) ([]uuid.UUID, error) {
	affected, err := r.ActiveLectureIDs(ctx, tenantID, memberID, kind)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("member_id = ? AND kind = ?", memberID, kind).
		Delete(&roster.Link{}).Error; err != nil {
		return nil, err
	}
	return affected, nil
}

var _ roster.Ledger = (*GormRosterLedger)(nil)
