package academy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
)

func TestInstructorService_CreateAndUpdate(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := f.instructors.Create(ctx, tenantID, CreateInstructorRequest{
		Name:  "Kim",
		Email: "kim@example.com",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	updated, err := f.instructors.Update(ctx, tenantID, created.ID, UpdateInstructorRequest{
		Phone: strPtr("010-3333-4444"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim", updated.Name)
	assert.Equal(t, "010-3333-4444", updated.Phone)

	_, err = f.instructors.Update(ctx, tenantID, created.ID, UpdateInstructorRequest{
		Name: strPtr(""),
	})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "VALIDATION_ERROR", derr.Code)
}

func TestInstructorService_Deactivate(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	math := f.newLecture(t, tenantID, "Math", 100000)
	english := f.newLecture(t, tenantID, "English", 50000)
	kim := f.newInstructor(t, tenantID, "Kim")
	lee := f.newInstructor(t, tenantID, "Lee")

	require.NoError(t, f.roster.ReconcileLectureInstructors(ctx, tenantID, math.ID, []uuid.UUID{kim.ID, lee.ID}))
	require.NoError(t, f.roster.ReconcileLectureInstructors(ctx, tenantID, english.ID, []uuid.UUID{kim.ID}))

	require.NoError(t, f.instructors.Deactivate(ctx, tenantID, kim.ID))

	t.Run("primary pointer falls back to the next assigned instructor", func(t *testing.T) {
		var got academy.Lecture
		require.NoError(t, f.db.First(&got, "id = ?", math.ID).Error)
		require.NotNil(t, got.InstructorID)
		assert.Equal(t, lee.ID, *got.InstructorID)
	})

	t.Run("sole-instructor lecture loses its primary", func(t *testing.T) {
		var got academy.Lecture
		require.NoError(t, f.db.First(&got, "id = ?", english.ID).Error)
		assert.Nil(t, got.InstructorID)
	})

	t.Run("assignment rows are deactivated, not deleted", func(t *testing.T) {
		var links []roster.Link
		require.NoError(t, f.db.Find(&links, "member_id = ?", kim.ID).Error)
		require.Len(t, links, 2)
		for _, link := range links {
			assert.False(t, link.Active)
		}
	})
}
