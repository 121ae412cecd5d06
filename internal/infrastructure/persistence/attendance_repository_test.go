package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/shared"
)

func setupAttendanceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&attendance.Record{})
	require.NoError(t, err)

	return db
}

func mustRecord(t *testing.T, tenantID, studentID uuid.UUID, lectureID *uuid.UUID, date time.Time, status attendance.Status) *attendance.Record {
	record, err := attendance.NewRecord(tenantID, studentID, lectureID, date, status)
	require.NoError(t, err)
	return record
}

func TestGormAttendanceRepository_FindByNaturalKey(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	studentID := uuid.New()
	lectureID := uuid.New()
	day := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	daily := mustRecord(t, tenantID, studentID, nil, day, attendance.StatusPresent)
	require.NoError(t, repo.Create(ctx, daily))

	perLecture := mustRecord(t, tenantID, studentID, &lectureID, day, attendance.StatusLate)
	require.NoError(t, repo.Create(ctx, perLecture))

	t.Run("nil lecture matches only the daily record", func(t *testing.T) {
		found, err := repo.FindByNaturalKey(ctx, tenantID, studentID, nil, day)
		require.NoError(t, err)
		assert.Equal(t, daily.ID, found.ID)
	})

	t.Run("lecture key matches only its own slot", func(t *testing.T) {
		found, err := repo.FindByNaturalKey(ctx, tenantID, studentID, &lectureID, day)
		require.NoError(t, err)
		assert.Equal(t, perLecture.ID, found.ID)
	})

	t.Run("time of day does not change the key", func(t *testing.T) {
		evening := time.Date(2026, 3, 10, 22, 5, 0, 0, time.UTC)
		found, err := repo.FindByNaturalKey(ctx, tenantID, studentID, nil, evening)
		require.NoError(t, err)
		assert.Equal(t, daily.ID, found.ID)
	})

	t.Run("missing record returns ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByNaturalKey(ctx, tenantID, uuid.New(), nil, day)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAttendanceRepository_CountByStatus(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day, attendance.StatusPresent)))
	}
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day, attendance.StatusAbsent)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day.AddDate(0, 0, 1), attendance.StatusLate)))

	counts, err := repo.CountByStatus(ctx, tenantID, day, day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[attendance.StatusPresent])
	assert.Equal(t, int64(1), counts[attendance.StatusAbsent])
	assert.NotContains(t, counts, attendance.StatusLate)

	counts, err = repo.CountByStatus(ctx, tenantID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[attendance.StatusLate])
}

func TestGormAttendanceRepository_DeleteForDate(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	other := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day, attendance.StatusPresent)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day, attendance.StatusLeft)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, uuid.New(), nil, day.AddDate(0, 0, -1), attendance.StatusPresent)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, other, uuid.New(), nil, day, attendance.StatusPresent)))

	deleted, err := repo.DeleteForDate(ctx, tenantID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// Other days and other tenants are untouched
	remaining, err := repo.ListForDate(ctx, tenantID, day.AddDate(0, 0, -1), nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	remaining, err = repo.ListForDate(ctx, other, day, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// A second sweep deletes nothing
	deleted, err = repo.DeleteForDate(ctx, tenantID, day)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestGormAttendanceRepository_TenantIDsWithRecords(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantA, uuid.New(), nil, day, attendance.StatusPresent)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantA, uuid.New(), nil, day, attendance.StatusAbsent)))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantB, uuid.New(), nil, day, attendance.StatusPresent)))

	ids, err := repo.TenantIDsWithRecords(ctx, day)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{tenantA, tenantB}, ids)

	ids, err = repo.TenantIDsWithRecords(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGormAttendanceRepository_ClearLectureRef(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	lectureID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	record := mustRecord(t, tenantID, uuid.New(), &lectureID, day, attendance.StatusPresent)
	require.NoError(t, repo.Create(ctx, record))

	require.NoError(t, repo.ClearLectureRef(ctx, tenantID, lectureID))

	records, err := repo.ListForDate(ctx, tenantID, day, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].LectureID)
}

func TestGormAttendanceRepository_ClearLectureRef_KeepsDayLevelRow(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewGormAttendanceRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	lectureID := uuid.New()
	studentID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// the student holds both a day-level and a lecture-scoped record
	dayLevel := mustRecord(t, tenantID, studentID, nil, day, attendance.StatusLate)
	require.NoError(t, repo.Create(ctx, dayLevel))
	require.NoError(t, repo.Create(ctx, mustRecord(t, tenantID, studentID, &lectureID, day, attendance.StatusPresent)))

	require.NoError(t, repo.ClearLectureRef(ctx, tenantID, lectureID))

	records, err := repo.ListForDate(ctx, tenantID, day, nil)
	require.NoError(t, err)
	require.Len(t, records, 1, "one row per (student, date, nil) key")
	assert.Equal(t, dayLevel.ID, records[0].ID)
	assert.Equal(t, attendance.StatusLate, records[0].Status)
	assert.Nil(t, records[0].LectureID)
}
