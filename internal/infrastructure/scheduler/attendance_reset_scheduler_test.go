package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	attendanceapp "github.com/academy/backend/internal/application/attendance"
)

type fakeRunner struct {
	mu   sync.Mutex
	runs []time.Time
}

func (f *fakeRunner) RunDailyReset(ctx context.Context, day time.Time) (*attendanceapp.ResetResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, day)
	return &attendanceapp.ResetResult{Date: day.Format("2006-01-02")}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.Hour)
	assert.Equal(t, 0, cfg.Minute)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())

	cfg.Hour = 24
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.Hour = 4
	cfg.Minute = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestShouldRun_MatchesConfiguredZone(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	s := NewAttendanceResetScheduler(Config{Hour: 0, Minute: 0, Location: seoul}, &fakeRunner{}, zap.NewNop())

	// midnight in Seoul is 15:00 UTC the previous day
	utcAfternoon := time.Date(2026, 3, 1, 15, 0, 30, 0, time.UTC)
	assert.True(t, s.shouldRun(utcAfternoon))

	assert.False(t, s.shouldRun(time.Date(2026, 3, 1, 15, 1, 0, 0, time.UTC)))
	assert.False(t, s.shouldRun(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCalculateNextRunTime(t *testing.T) {
	s := NewAttendanceResetScheduler(Config{Hour: 4, Minute: 30, Location: time.UTC}, &fakeRunner{}, zap.NewNop())
	s.calculateNextRunTime()

	next := s.GetNextRunAt()
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.True(t, next.After(time.Now().Add(-time.Minute)))
}

func TestTriggerManualRun(t *testing.T) {
	runner := &fakeRunner{}
	s := NewAttendanceResetScheduler(Config{Hour: 0, Minute: 0, Location: time.UTC}, runner, zap.NewNop())

	// fires without the cron loop running
	s.TriggerManualRun()
	assert.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(context.Background()) }()

	s.TriggerManualRun()
	assert.Eventually(t, func() bool { return runner.count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestStartStop_Idempotent(t *testing.T) {
	s := NewAttendanceResetScheduler(DefaultConfig(), &fakeRunner{}, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx), "second start is a no-op")

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx), "second stop is a no-op")
}

func TestStart_RejectsInvalidConfig(t *testing.T) {
	s := NewAttendanceResetScheduler(Config{Hour: 99, Location: time.UTC}, &fakeRunner{}, zap.NewNop())
	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidConfig)
}
