package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	attendanceapp "github.com/academy/backend/internal/application/attendance"
)

// tickerInterval is the interval at which the scheduler checks the clock
const tickerInterval = 1 * time.Minute

// ResetRunner clears the attendance board for one day
type ResetRunner interface {
	RunDailyReset(ctx context.Context, day time.Time) (*attendanceapp.ResetResult, error)
}

// Config holds the daily reset schedule. Hour and Minute are wall-clock
// values in Location.
type Config struct {
	Enabled  bool
	Hour     int
	Minute   int
	Location *time.Location
}

// DefaultConfig returns the default schedule, midnight in Seoul
func DefaultConfig() Config {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.UTC
	}
	return Config{
		Enabled:  true,
		Hour:     0,
		Minute:   0,
		Location: loc,
	}
}

// Validate checks the schedule values
func (c Config) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return ErrInvalidConfig
	}
	if c.Minute < 0 || c.Minute > 59 {
		return ErrInvalidConfig
	}
	return nil
}

// AttendanceResetScheduler fires the daily attendance reset at a fixed
// wall-clock time. The loop ticks once a minute and compares the clock
// in the configured timezone, so a restart never double-fires and a
// missed minute is simply skipped. Reset failures are logged and the
// loop keeps going; a broken night never takes the scheduler down.
type AttendanceResetScheduler struct {
	config Config
	runner ResetRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewAttendanceResetScheduler creates an AttendanceResetScheduler
func NewAttendanceResetScheduler(config Config, runner ResetRunner, logger *zap.Logger) *AttendanceResetScheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &AttendanceResetScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the scheduler loop
func (s *AttendanceResetScheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Attendance reset scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.String("timezone", s.config.Location.String()),
		zap.Timep("next_run_at", s.nextRunAt),
	)
	return nil
}

// Stop stops the scheduler loop
func (s *AttendanceResetScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Attendance reset scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Attendance reset scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *AttendanceResetScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runReset(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks the wall clock in the configured timezone
func (s *AttendanceResetScheduler) shouldRun(now time.Time) bool {
	local := now.In(s.config.Location)
	return local.Hour() == s.config.Hour && local.Minute() == s.config.Minute
}

// calculateNextRunTime computes the next firing time
func (s *AttendanceResetScheduler) calculateNextRunTime() {
	now := time.Now().In(s.config.Location)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, s.config.Minute, 0, 0, s.config.Location)
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runReset sweeps the current day. Errors are logged, never propagated.
func (s *AttendanceResetScheduler) runReset(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	day := now.In(s.config.Location)
	result, err := s.runner.RunDailyReset(ctx, day)
	if err != nil {
		s.logger.Error("Daily attendance reset failed",
			zap.String("date", day.Format("2006-01-02")),
			zap.Error(err))
		return
	}
	s.logger.Info("Daily attendance reset finished",
		zap.String("date", result.Date),
		zap.Int("tenants_swept", result.TenantsSwept),
		zap.Int64("rows_deleted", result.RowsDeleted))
}

// TriggerManualRun fires the reset outside the schedule, whether or not
// the cron loop is running. The sweep runs on a background context so an
// HTTP caller hanging up cannot abort a half-finished delete.
func (s *AttendanceResetScheduler) TriggerManualRun() {
	go s.runReset(context.Background())
}

// GetStatus returns the current scheduler state
func (s *AttendanceResetScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"hour":        s.config.Hour,
		"minute":      s.config.Minute,
		"timezone":    s.config.Location.String(),
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *AttendanceResetScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
