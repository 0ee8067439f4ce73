package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/internal/reminder"
	"github.com/limbo/placebetween/internal/repository"
	"github.com/limbo/placebetween/pkg/entity"
	"golang.org/x/time/rate"
)

const (
	DefaultBatchLockKey = "place_between:reminders:batch"
	defaultLockTTL      = 5 * time.Minute
	defaultMailRate     = 5
)

type ReminderOpts struct {
	LockKey string
	LockTTL time.Duration
	// Deliveries per second, burst is the same number rounded up
	MailRate float64
}

type ReminderService struct {
	repo    repository.RemindersRepositoryI
	mailer  Mailer
	locker  Locker
	limiter *rate.Limiter
	lockKey string
	lockTTL time.Duration
}

func NewReminderService(repo repository.RemindersRepositoryI, mailer Mailer, locker Locker, opts ReminderOpts) *ReminderService {
	if repo == nil || mailer == nil || locker == nil {
		log.Fatal("provided nil dependency to reminder service")
	}
	if opts.LockKey == "" {
		opts.LockKey = DefaultBatchLockKey
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.MailRate <= 0 {
		opts.MailRate = defaultMailRate
	}
	burst := int(opts.MailRate)
	if float64(burst) < opts.MailRate {
		burst++
	}
	return &ReminderService{
		repo:    repo,
		mailer:  mailer,
		locker:  locker,
		limiter: rate.NewLimiter(rate.Limit(opts.MailRate), burst),
		lockKey: opts.LockKey,
		lockTTL: opts.LockTTL,
	}
}

// RunBatch evaluates all active reminders at now. A failure on one reminder is
// recorded on its decision and does not stop the batch. last_sent_at is stored
// only after the mail went out.
func (rs *ReminderService) RunBatch(ctx context.Context, now time.Time, force bool) (*entity.BatchReport, error) {
	runID := uuid.NewString()
	logger := slog.Default().With(slog.String("run_id", runID), slog.Bool("force", force))
	release, ok, err := rs.locker.TryLock(ctx, rs.lockKey, rs.lockTTL)
	if err != nil {
		ReminderBatchesTotal.WithLabelValues("error").Inc()
		return nil, errors.New("batch lock error: " + err.Error())
	}
	if !ok {
		ReminderBatchesTotal.WithLabelValues("busy").Inc()
		return nil, errorvalues.ErrBatchInProgress
	}
	defer release()
	started := time.Now()
	defer func() {
		ReminderBatchDuration.Observe(time.Since(started).Seconds())
	}()

	targets, err := rs.repo.ListActive(ctx)
	if err != nil {
		ReminderBatchesTotal.WithLabelValues("error").Inc()
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	report := &entity.BatchReport{
		RunID:     runID,
		Decisions: make([]entity.ReminderDecision, 0, len(targets)),
	}
	for _, target := range targets {
		decision := rs.process(ctx, logger, target, now, force)
		ReminderDecisionsTotal.WithLabelValues(decision.Reason).Inc()
		if decision.Sent {
			report.Sent++
		}
		report.Decisions = append(report.Decisions, decision)
	}
	ReminderBatchesTotal.WithLabelValues("ok").Inc()
	logger.Info("reminders batch finished",
		slog.Int("evaluated", len(targets)),
		slog.Int("sent", report.Sent),
	)
	return report, nil
}

func (rs *ReminderService) process(ctx context.Context, logger *slog.Logger, target entity.ReminderTarget, now time.Time, force bool) entity.ReminderDecision {
	decision := entity.ReminderDecision{
		ReminderID: target.Reminder.ID,
		UserID:     target.Owner.ID,
	}
	if !target.Owner.IsEmailVerified {
		decision.Reason = reminder.ReasonEmailNotVerified
		return decision
	}
	due, reason := reminder.Evaluate(target.Reminder, target.Owner, now, force)
	decision.Reason = reason
	if !due {
		return decision
	}
	logger = logger.With(slog.Int64("reminder_id", target.Reminder.ID), slog.Int64("uid", target.Owner.ID))

	err := rs.limiter.Wait(ctx)
	if err == nil {
		err = rs.mailer.Send(ctx, target.Owner.Email, target.Owner.Username)
	}
	if err != nil {
		logger.Error("reminder delivery failed", slog.String("error", err.Error()))
		decision.Reason = reminder.ReasonDeliveryFailed
		decision.Error = err.Error()
		return decision
	}
	decision.Sent = true
	err = rs.repo.MarkSent(ctx, target.Reminder.ID, now.UTC())
	if err != nil {
		logger.Error("reminder sent but not marked", slog.String("error", err.Error()))
		decision.Error = err.Error()
		return decision
	}
	logger.Info("reminder sent")
	return decision
}
