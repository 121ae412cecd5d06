package academy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

type academyFixture struct {
	db          *gorm.DB
	students    *StudentService
	lectures    *LectureService
	instructors *InstructorService
	roster      *RosterService
}

func newAcademyFixture(t *testing.T) *academyFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&academy.Student{},
		&academy.Lecture{},
		&academy.Instructor{},
		&roster.Link{},
		&attendance.Record{},
		&billing.Payment{},
	))

	txm := &persistence.Database{DB: db}
	studentRepo := persistence.NewGormStudentRepository(db)
	lectureRepo := persistence.NewGormLectureRepository(db)
	instructorRepo := persistence.NewGormInstructorRepository(db)
	ledger := persistence.NewGormRosterLedger(db)
	attendanceRepo := persistence.NewGormAttendanceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	recalc := NewFeeRecalculator(studentRepo, lectureRepo, ledger)

	return &academyFixture{
		db:          db,
		students:    NewStudentService(txm, studentRepo, ledger, attendanceRepo, paymentRepo, recalc),
		lectures:    NewLectureService(txm, lectureRepo, ledger, attendanceRepo, recalc),
		instructors: NewInstructorService(txm, instructorRepo, lectureRepo, ledger),
		roster:      NewRosterService(txm, studentRepo, lectureRepo, instructorRepo, ledger, recalc),
	}
}

func (f *academyFixture) newStudent(t *testing.T, tenantID uuid.UUID, name string) *academy.Student {
	student, err := academy.NewStudent(tenantID, name)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(student).Error)
	return student
}

func (f *academyFixture) newLecture(t *testing.T, tenantID uuid.UUID, name string, fee int64) *academy.Lecture {
	lecture, err := academy.NewLecture(tenantID, name, fee)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(lecture).Error)
	return lecture
}

func (f *academyFixture) newInstructor(t *testing.T, tenantID uuid.UUID, name string) *academy.Instructor {
	instructor, err := academy.NewInstructor(tenantID, name)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(instructor).Error)
	return instructor
}

func (f *academyFixture) studentFee(t *testing.T, tenantID, studentID uuid.UUID) int64 {
	var student academy.Student
	require.NoError(t, f.db.First(&student, "tenant_id = ? AND id = ?", tenantID, studentID).Error)
	return student.TotalFee
}

func (f *academyFixture) occupancy(t *testing.T, tenantID, lectureID uuid.UUID) int {
	var lecture academy.Lecture
	require.NoError(t, f.db.First(&lecture, "tenant_id = ? AND id = ?", tenantID, lectureID).Error)
	return lecture.Occupancy
}

func (f *academyFixture) linkCount(t *testing.T, lectureID uuid.UUID) int64 {
	var count int64
	require.NoError(t, f.db.Model(&roster.Link{}).Where("lecture_id = ?", lectureID).Count(&count).Error)
	return count
}

func TestRosterService_ReconcileLectureRoster(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	math := f.newLecture(t, tenantID, "Math", 100000)
	english := f.newLecture(t, tenantID, "English", 50000)
	alice := f.newStudent(t, tenantID, "Alice")
	bob := f.newStudent(t, tenantID, "Bob")

	require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID, bob.ID}))
	require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, english.ID, []uuid.UUID{alice.ID}))

	t.Run("fees and occupancy derive from the ledger", func(t *testing.T) {
		assert.Equal(t, int64(150000), f.studentFee(t, tenantID, alice.ID))
		assert.Equal(t, int64(100000), f.studentFee(t, tenantID, bob.ID))
		assert.Equal(t, 2, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, english.ID))
	})

	t.Run("removed students stop paying, rows survive", func(t *testing.T) {
		require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID}))

		assert.Equal(t, int64(0), f.studentFee(t, tenantID, bob.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, int64(2), f.linkCount(t, math.ID))
	})

	t.Run("reconciling the same target is a no-op", func(t *testing.T) {
		require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID}))

		assert.Equal(t, int64(150000), f.studentFee(t, tenantID, alice.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, int64(2), f.linkCount(t, math.ID))
	})

	t.Run("returning student reuses the old row", func(t *testing.T) {
		require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID, bob.ID}))

		assert.Equal(t, int64(100000), f.studentFee(t, tenantID, bob.ID))
		assert.Equal(t, 2, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, int64(2), f.linkCount(t, math.ID))
	})

	t.Run("duplicate target IDs collapse", func(t *testing.T) {
		require.NoError(t, f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID, alice.ID, bob.ID}))
		assert.Equal(t, 2, f.occupancy(t, tenantID, math.ID))
	})

	t.Run("unknown student rolls everything back", func(t *testing.T) {
		err := f.roster.ReconcileLectureRoster(ctx, tenantID, math.ID, []uuid.UUID{alice.ID, uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.Equal(t, 2, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, int64(100000), f.studentFee(t, tenantID, bob.ID))
	})
}

func TestRosterService_CapacityLimit(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	capacity := 1
	lecture := f.newLecture(t, tenantID, "Small Class", 80000)
	lecture.Capacity = &capacity
	require.NoError(t, f.db.Save(lecture).Error)

	alice := f.newStudent(t, tenantID, "Alice")
	bob := f.newStudent(t, tenantID, "Bob")

	t.Run("reconcile rejects an oversized target", func(t *testing.T) {
		err := f.roster.ReconcileLectureRoster(ctx, tenantID, lecture.ID, []uuid.UUID{alice.ID, bob.ID})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CAPACITY_EXCEEDED", derr.Code)
		assert.Zero(t, f.linkCount(t, lecture.ID))
	})

	t.Run("single enroll fills the last seat", func(t *testing.T) {
		require.NoError(t, f.roster.EnrollStudent(ctx, tenantID, lecture.ID, alice.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, lecture.ID))
	})

	t.Run("enroll into a full lecture fails", func(t *testing.T) {
		err := f.roster.EnrollStudent(ctx, tenantID, lecture.ID, bob.ID)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CAPACITY_EXCEEDED", derr.Code)
	})

	t.Run("re-enrolling an enrolled student is a no-op", func(t *testing.T) {
		// Not a capacity error: the plan is empty before the check matters
		capacity := 2
		lecture.Capacity = &capacity
		require.NoError(t, f.db.Model(lecture).Update("capacity", capacity).Error)

		require.NoError(t, f.roster.EnrollStudent(ctx, tenantID, lecture.ID, alice.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, lecture.ID))
		assert.Equal(t, int64(1), f.linkCount(t, lecture.ID))
	})
}

func TestRosterService_UnenrollStudent(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	lecture := f.newLecture(t, tenantID, "Math", 100000)
	alice := f.newStudent(t, tenantID, "Alice")
	require.NoError(t, f.roster.EnrollStudent(ctx, tenantID, lecture.ID, alice.ID))

	require.NoError(t, f.roster.UnenrollStudent(ctx, tenantID, lecture.ID, alice.ID))

	assert.Equal(t, int64(0), f.studentFee(t, tenantID, alice.ID))
	assert.Zero(t, f.occupancy(t, tenantID, lecture.ID))
	assert.Equal(t, int64(1), f.linkCount(t, lecture.ID))
}

func TestRosterService_ReconcileStudentLectures(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	math := f.newLecture(t, tenantID, "Math", 100000)
	english := f.newLecture(t, tenantID, "English", 50000)
	science := f.newLecture(t, tenantID, "Science", 70000)
	alice := f.newStudent(t, tenantID, "Alice")

	require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{math.ID, english.ID}))
	assert.Equal(t, int64(150000), f.studentFee(t, tenantID, alice.ID))
	assert.Equal(t, 1, f.occupancy(t, tenantID, math.ID))
	assert.Equal(t, 1, f.occupancy(t, tenantID, english.ID))

	// Swap english for science; the english row stays, deactivated
	require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{math.ID, science.ID}))
	assert.Equal(t, int64(170000), f.studentFee(t, tenantID, alice.ID))
	assert.Zero(t, f.occupancy(t, tenantID, english.ID))
	assert.Equal(t, 1, f.occupancy(t, tenantID, science.ID))
	assert.Equal(t, int64(1), f.linkCount(t, english.ID))

	// Coming back to english reuses its row
	require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{english.ID}))
	assert.Equal(t, int64(50000), f.studentFee(t, tenantID, alice.ID))
	assert.Equal(t, 1, f.occupancy(t, tenantID, english.ID))
	assert.Equal(t, int64(1), f.linkCount(t, english.ID))
}

func TestRosterService_StudentLecturesCapacity(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	capacity := 1
	small := f.newLecture(t, tenantID, "Small Class", 80000)
	small.Capacity = &capacity
	require.NoError(t, f.db.Save(small).Error)
	math := f.newLecture(t, tenantID, "Math", 100000)

	alice := f.newStudent(t, tenantID, "Alice")
	bob := f.newStudent(t, tenantID, "Bob")
	require.NoError(t, f.roster.EnrollStudent(ctx, tenantID, small.ID, bob.ID))

	t.Run("entering a full lecture fails and rolls back", func(t *testing.T) {
		err := f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{math.ID, small.ID})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CAPACITY_EXCEEDED", derr.Code)

		// the open lecture was not touched either
		assert.Zero(t, f.occupancy(t, tenantID, math.ID))
		assert.Equal(t, int64(0), f.studentFee(t, tenantID, alice.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, small.ID))
	})

	t.Run("returning to a since-filled lecture fails", func(t *testing.T) {
		// Bob leaves, Alice takes the seat, Bob's old row stays inactive
		require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, bob.ID, nil))
		require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{small.ID}))
		require.Equal(t, 1, f.occupancy(t, tenantID, small.ID))

		err := f.roster.ReconcileStudentLectures(ctx, tenantID, bob.ID, []uuid.UUID{small.ID})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "CAPACITY_EXCEEDED", derr.Code)
		assert.Equal(t, 1, f.occupancy(t, tenantID, small.ID))
	})

	t.Run("keeping an occupied seat never trips the check", func(t *testing.T) {
		require.NoError(t, f.roster.ReconcileStudentLectures(ctx, tenantID, alice.ID, []uuid.UUID{small.ID, math.ID}))
		assert.Equal(t, 1, f.occupancy(t, tenantID, small.ID))
		assert.Equal(t, 1, f.occupancy(t, tenantID, math.ID))
	})
}

func TestRosterService_ReconcileLectureInstructors(t *testing.T) {
	f := newAcademyFixture(t)
	ctx := context.Background()
	tenantID := uuid.New()

	lecture := f.newLecture(t, tenantID, "Math", 100000)
	kim := f.newInstructor(t, tenantID, "Kim")
	lee := f.newInstructor(t, tenantID, "Lee")

	require.NoError(t, f.roster.ReconcileLectureInstructors(ctx, tenantID, lecture.ID, []uuid.UUID{kim.ID, lee.ID}))

	var got academy.Lecture
	require.NoError(t, f.db.First(&got, "id = ?", lecture.ID).Error)
	require.NotNil(t, got.InstructorID)
	assert.Equal(t, kim.ID, *got.InstructorID)

	// Assignments never touch enrollment-derived numbers
	assert.Zero(t, f.occupancy(t, tenantID, lecture.ID))

	require.NoError(t, f.roster.ReconcileLectureInstructors(ctx, tenantID, lecture.ID, nil))
	var cleared academy.Lecture
	require.NoError(t, f.db.First(&cleared, "id = ?", lecture.ID).Error)
	assert.Nil(t, cleared.InstructorID)
}
