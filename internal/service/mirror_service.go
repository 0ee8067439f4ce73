package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/limbo/placebetween/internal/analytics"
	"github.com/limbo/placebetween/internal/repository"
	"github.com/limbo/placebetween/pkg/entity"
)

const (
	weekDays  = 7
	monthDays = 30
)

type MirrorService struct {
	sessions    repository.SessionsRepositoryI
	completions repository.CompletionsRepositoryI
	checkins    repository.CheckinsRepositoryI
	clock       func() time.Time
}

type MirrorOption func(*MirrorService)

// WithClock replaces time.Now as the source of "today".
func WithClock(clock func() time.Time) MirrorOption {
	return func(ms *MirrorService) {
		ms.clock = clock
	}
}

func NewMirrorService(sessions repository.SessionsRepositoryI, completions repository.CompletionsRepositoryI,
	checkins repository.CheckinsRepositoryI, opts ...MirrorOption) *MirrorService {
	if sessions == nil || completions == nil || checkins == nil {
		log.Fatal("provided nil repository to mirror service")
	}
	ms := &MirrorService{
		sessions:    sessions,
		completions: completions,
		checkins:    checkins,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func (ms *MirrorService) Range(ctx context.Context, userID int64, start, end time.Time) (*entity.RangeReport, error) {
	MirrorReportsTotal.WithLabelValues("range").Inc()
	return ms.build(ctx, userID, start, end)
}

func (ms *MirrorService) build(ctx context.Context, userID int64, start, end time.Time) (*entity.RangeReport, error) {
	start, end = analytics.Day(start), analytics.Day(end)
	today := ms.clock()
	ledger := analytics.NewLedger(start, end)
	if end.Before(start) {
		return ledger.Report(today), nil
	}
	sessions, err := ms.sessions.GetByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, errors.New("sessions repository error: " + err.Error())
	}
	for _, s := range sessions {
		ledger.AddSession(s)
	}
	if !ledger.HasSessions() {
		return ledger.Report(today), nil
	}
	ids := ledger.SessionIDs()
	completions, err := ms.completions.GetBySessionIDs(ctx, ids)
	if err != nil {
		return nil, errors.New("completions repository error: " + err.Error())
	}
	for _, c := range completions {
		ledger.AddCompletion(c)
	}
	checkins, err := ms.checkins.GetBySessionIDs(ctx, ids)
	if err != nil {
		return nil, errors.New("checkins repository error: " + err.Error())
	}
	for _, ch := range checkins {
		ledger.AddCheckin(ch)
	}
	return ledger.Report(today), nil
}

func (ms *MirrorService) Week(ctx context.Context, userID int64) (*entity.RangeReport, error) {
	MirrorReportsTotal.WithLabelValues("week").Inc()
	return ms.lastDays(ctx, userID, weekDays)
}

func (ms *MirrorService) Month(ctx context.Context, userID int64) (*entity.RangeReport, error) {
	MirrorReportsTotal.WithLabelValues("month").Inc()
	return ms.lastDays(ctx, userID, monthDays)
}

func (ms *MirrorService) lastDays(ctx context.Context, userID int64, n int) (*entity.RangeReport, error) {
	today := analytics.Day(ms.clock().UTC())
	return ms.build(ctx, userID, today.AddDate(0, 0, -(n-1)), today)
}
