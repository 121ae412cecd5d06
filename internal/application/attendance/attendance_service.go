package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/infrastructure/cache"
	"github.com/academy/backend/internal/infrastructure/persistence"
)

// Service handles attendance reads and writes. Writes upsert by the
// natural key (tenant, student, lecture, date), so a day holds at most
// one record per student and lecture slot no matter how many times the
// front desk re-submits.
type Service struct {
	tx       persistence.TxManager
	records  attendance.Repository
	students academy.StudentRepository
	lectures academy.LectureRepository
	views    cache.MonthViewStore
	logger   *zap.Logger
}

// NewService creates an attendance Service
func NewService(
	tx persistence.TxManager,
	records attendance.Repository,
	students academy.StudentRepository,
	lectures academy.LectureRepository,
	views cache.MonthViewStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:       tx,
		records:  records,
		students: students,
		lectures: lectures,
		views:    views,
		logger:   logger,
	}
}

// Record upserts one attendance record
func (s *Service) Record(ctx context.Context, tenantID uuid.UUID, req RecordAttendanceRequest) (*RecordResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	update := attendance.Update{
		Status:   attendance.Status(req.Status),
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Memo:     req.Memo,
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.students.FindByID(ctx, tenantID, req.StudentID); err != nil {
		return nil, err
	}
	if req.LectureID != nil {
		if _, err := s.lectures.FindByID(ctx, tenantID, *req.LectureID); err != nil {
			return nil, err
		}
	}

	var resp RecordResponse
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		records := s.records.WithTx(tx)

		record, err := records.FindByNaturalKey(ctx, tenantID, req.StudentID, req.LectureID, date)
		switch {
		case err == nil:
			record.Apply(update)
			if err := records.Update(ctx, record); err != nil {
				return err
			}
		case errors.Is(err, shared.ErrNotFound):
			record, err = attendance.NewRecord(tenantID, req.StudentID, req.LectureID, date, update.Status)
			if err != nil {
				return err
			}
			record.Apply(update)
			if err := records.Create(ctx, record); err != nil {
				return err
			}
		default:
			return err
		}

		resp = ToRecordResponse(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// a write makes the cached month stale
	if err := s.views.Invalidate(ctx, tenantID, date.Year(), date.Month()); err != nil {
		s.logger.Warn("failed to invalidate month view cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return &resp, nil
}

// ListForDate returns a tenant's records for one day, optionally
// narrowed to one lecture
func (s *Service) ListForDate(ctx context.Context, tenantID uuid.UUID, day string, lectureID *uuid.UUID) ([]RecordResponse, error) {
	date, err := ParseDate(day)
	if err != nil {
		return nil, err
	}
	if lectureID != nil {
		if _, err := s.lectures.FindByID(ctx, tenantID, *lectureID); err != nil {
			return nil, err
		}
	}
	records, err := s.records.ListForDate(ctx, tenantID, date, lectureID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

// StudentHistory returns a student's records inside a date range
func (s *Service) StudentHistory(ctx context.Context, tenantID, studentID uuid.UUID, from, to string) ([]RecordResponse, error) {
	fromDate, toDate, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, tenantID, studentID); err != nil {
		return nil, err
	}
	records, err := s.records.ListForStudent(ctx, tenantID, studentID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

// PeriodStats aggregates a range into overall per-status counts plus
// per-student day tallies with an attendance rate. A day counts as
// attended when any of its records is present or late.
func (s *Service) PeriodStats(ctx context.Context, tenantID uuid.UUID, from, to string) (*StatsResponse, error) {
	fromDate, toDate, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.records.CountByStatus(ctx, tenantID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}

	students, err := s.students.List(ctx, tenantID, shared.Filter{OrderBy: "name"}, false)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListForRange(ctx, tenantID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	// Day counts are per distinct day, not per record: a lecture-scoped
	// and a day-level row on the same date count once.
	type tally struct {
		absent, late, earlyLeave int
		days, attended           map[string]struct{}
	}
	perStudent := make(map[uuid.UUID]*tally)
	for _, record := range records {
		agg, ok := perStudent[record.StudentID]
		if !ok {
			agg = &tally{days: map[string]struct{}{}, attended: map[string]struct{}{}}
			perStudent[record.StudentID] = agg
		}
		day := record.Date.Format("2006-01-02")
		agg.days[day] = struct{}{}
		switch record.Status {
		case attendance.StatusPresent:
			agg.attended[day] = struct{}{}
		case attendance.StatusAbsent:
			agg.absent++
		case attendance.StatusLate:
			agg.late++
			agg.attended[day] = struct{}{}
		case attendance.StatusEarlyLeave:
			agg.earlyLeave++
		}
	}

	resp := &StatsResponse{From: from, To: to, Counts: out}
	for i := range students.Items {
		student := &students.Items[i]
		stats := StudentPeriodStats{StudentID: student.ID, Name: student.Name}
		if agg, ok := perStudent[student.ID]; ok {
			stats.PresentDays = len(agg.attended)
			stats.AbsentDays = agg.absent
			stats.LateDays = agg.late
			stats.EarlyLeaveDays = agg.earlyLeave
			stats.TotalDays = len(agg.days)
			if stats.TotalDays > 0 {
				rate := float64(stats.PresentDays) / float64(stats.TotalDays) * 100
				stats.AttendanceRate = math.Round(rate*10) / 10
			}
		}
		resp.Students = append(resp.Students, stats)
	}
	return resp, nil
}

// MonthlyView renders the per-student day grid for one month. The view
// is cached; a miss or a cache failure rebuilds it from the database.
func (s *Service) MonthlyView(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*MonthlyView, error) {
	var cached MonthlyView
	err := s.views.Get(ctx, tenantID, year, month, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("month view cache read failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}

	view, err := s.buildMonthlyView(ctx, tenantID, year, month)
	if err != nil {
		return nil, err
	}
	if err := s.views.Set(ctx, tenantID, year, month, view); err != nil {
		s.logger.Warn("month view cache write failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
	return view, nil
}

func (s *Service) buildMonthlyView(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*MonthlyView, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	students, err := s.students.List(ctx, tenantID, shared.Filter{OrderBy: "name"}, false)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListForRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[uuid.UUID]map[int]DayCell)
	for _, record := range records {
		days, ok := byStudent[record.StudentID]
		if !ok {
			days = make(map[int]DayCell)
			byStudent[record.StudentID] = days
		}
		day := record.Date.Day()
		cell := days[day]
		cell.Status = string(record.Status)
		// the day shows the first check-in of any record that day
		if record.CheckIn != nil && (cell.In == nil || *record.CheckIn < *cell.In) {
			cell.In = record.CheckIn
		}
		if record.Status.Departed() && record.CheckOut != nil {
			cell.Out = record.CheckOut
		}
		days[day] = cell
	}

	view := &MonthlyView{Year: year, Month: int(month)}
	for i := range students.Items {
		student := &students.Items[i]
		days := byStudent[student.ID]
		if days == nil {
			days = map[int]DayCell{}
		}
		view.Students = append(view.Students, StudentMonth{
			StudentID: student.ID,
			Name:      student.Name,
			Days:      days,
		})
	}
	return view, nil
}

// ParseDate parses a YYYY-MM-DD calendar day
func ParseDate(v string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, shared.NewDomainError("VALIDATION_ERROR", "Date must be YYYY-MM-DD")
	}
	return date, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	toDate, err := ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, shared.NewDomainError("VALIDATION_ERROR", "Range end precedes its start")
	}
	return fromDate, toDate, nil
}

func toResponses(records []attendance.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i])
	}
	return out
}
