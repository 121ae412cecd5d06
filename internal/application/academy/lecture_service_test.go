package academy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
)

func int64Ptr(v int64) *int64 { return &v }

func TestLectureService_UpdateFeeRipples(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	lecture := f.newLecture(t, tenantID, "Math", 100000)
	alice := f.newStudent(t, tenantID, "Alice")
	bob := f.newStudent(t, tenantID, "Bob")
	require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, lecture.ID, []uuid.UUID{alice.ID, bob.ID}))

	t.Run("fee change recomputes every enrolled student", func(t *testing.T) {
		updated, err := f.lectures.Update(ctx, tenantID, lecture.ID, UpdateLectureRequest{
			Fee: int64Ptr(120000),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(120000), updated.Fee)

		assert.Equal(t, int64(120000), f.studentFee(t, tenantID, alice.ID))
		assert.Equal(t, int64(120000), f.studentFee(t, tenantID, bob.ID))
	})

	t.Run("name-only update leaves fees untouched", func(t *testing.T) {
		_, err := f.lectures.Update(ctx, tenantID, lecture.ID, UpdateLectureRequest{
			Name: strPtr("Advanced Math"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(120000), f.studentFee(t, tenantID, alice.ID))
	})

	t.Run("negative fee is rejected", func(t *testing.T) {
		_, err := f.lectures.Update(ctx, tenantID, lecture.ID, UpdateLectureRequest{
			Fee: int64Ptr(-1),
		})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
	})
}

func TestLectureService_Deactivate(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	math := f.newLecture(t, tenantID, "Math", 100000)
	english := f.newLecture(t, tenantID, "English", 50000)
	alice := f.newStudent(t, tenantID, "Alice")
	require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{math.ID, english.ID}))
	require.Equal(t, int64(150000), f.studentFee(t, tenantID, alice.ID))

	require.NoError(t, f.lectures.Deactivate(ctx, tenantID, math.ID))

	// Only the active lecture keeps charging
	assert.Equal(t, int64(50000), f.studentFee(t, tenantID, alice.ID))

	var link roster.Link
	require.NoError(t, f.db.First(&link, "lecture_id = ?", math.ID).Error)
	assert.True(t, link.Active)
}

func TestLectureService_Delete(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	math := f.newLecture(t, tenantID, "Math", 100000)
	english := f.newLecture(t, tenantID, "English", 50000)
	alice := f.newStudent(t, tenantID, "Alice")
	require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{math.ID, english.ID}))

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	scoped, err := attendance.NewRecord(tenantID, alice.ID, &math.ID, monday, attendance.StatusPresent)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(scoped).Error)

	// Tuesday has both a day-level and a lecture-scoped record
	dayLevel, err := attendance.NewRecord(tenantID, alice.ID, nil, tuesday, attendance.StatusLate)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(dayLevel).Error)
	dup, err := attendance.NewRecord(tenantID, alice.ID, &math.ID, tuesday, attendance.StatusPresent)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(dup).Error)

	require.NoError(t, f.lectures.Delete(ctx, tenantID, math.ID))

	_, err = f.lectures.GetByID(ctx, tenantID, math.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, int64(50000), f.studentFee(t, tenantID, alice.ID))
	assert.Zero(t, f.linkCount(t, math.ID))

	// Monday's history survives as a day-level record
	var got attendance.Record
	require.NoError(t, f.db.First(&got, "student_id = ? AND date = ?", alice.ID, monday).Error)
	assert.Nil(t, got.LectureID)

	// Tuesday keeps its one day-level row; the lecture-scoped one is gone
	var tuesdayRows []attendance.Record
	require.NoError(t, f.db.Find(&tuesdayRows, "student_id = ? AND date = ?", alice.ID, tuesday).Error)
	require.Len(t, tuesdayRows, 1)
	assert.Equal(t, dayLevel.ID, tuesdayRows[0].ID)
	assert.Equal(t, attendance.StatusLate, tuesdayRows[0].Status)
	assert.Nil(t, tuesdayRows[0].LectureID)
}
