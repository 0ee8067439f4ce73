package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/internal/repository"
	"github.com/limbo/placebetween/internal/service"
	"github.com/limbo/placebetween/pkg/cleanup"
	"github.com/limbo/placebetween/pkg/config"
	"github.com/limbo/placebetween/pkg/lock"
	"github.com/limbo/placebetween/pkg/logger"
	"github.com/limbo/placebetween/pkg/mailer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
)

// Seconds field first. Fixed reminders match on exact minute, so the batch
// must run every minute.
const defaultSpec = "0 * * * * *"

func main() {
	cfg := config.New()
	logger.Setup(logger.Options{
		Level: cfg.GetString("LOG_LEVEL"),
		File:  cfg.GetString("LOG_FILE"),
	})
	defer cleanup.CleanUp()

	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	pool := repository.NewPool(&dbCfg)
	redisClient := lock.NewRedisClient(lock.RedisOpts{
		Address:  cfg.GetString("REDIS_ADDRESS"),
		Password: cfg.GetString("REDIS_PASSWORD"),
		DB:       cfg.GetInt("REDIS_DB", 0),
	})
	cleanup.Register(&cleanup.Job{
		Name: "closing redis client",
		F:    redisClient.Close,
	})
	reminderService := service.NewReminderService(
		repository.NewRemindersRepo(pool),
		mailer.NewLoopsMailer(mailer.LoopsOpts{
			APIKey:          cfg.GetString("LOOPS_API_KEY"),
			TransactionalID: cfg.GetString("LOOPS_INACTIVE_NUDGE_TRANSACTIONAL_ID"),
			AppURL:          cfg.GetString("APP_URL"),
		}),
		lock.NewRedisLocker(redisClient),
		service.ReminderOpts{
			MailRate: cfg.GetFloat("MAIL_RATE_PER_SECOND", 5),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	spec := cfg.GetStringOr("SCHEDULER_SPEC", defaultSpec)
	err := c.AddFunc(spec, func() {
		runBatch(ctx, reminderService)
	})
	if err != nil {
		log.Fatal("invalid scheduler spec " + spec + ": " + err.Error())
	}
	if addr := cfg.GetString("METRICS_ADDRESS"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			err := http.ListenAndServe(addr, mux)
			if err != nil {
				slog.Error("metrics server error", slog.String("error", err.Error()))
			}
		}()
	}
	c.Start()
	slog.Info("reminders scheduler started", slog.String("spec", spec))
	<-ctx.Done()
	c.Stop()
	slog.Info("reminders scheduler stopped")
}

func runBatch(ctx context.Context, rs service.ReminderServiceI) {
	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()
	report, err := rs.RunBatch(ctx, time.Now().UTC(), false)
	if err != nil {
		if errors.Is(err, errorvalues.ErrBatchInProgress) {
			slog.Warn("reminders batch skipped: previous run still holds the lock")
			return
		}
		slog.Error("reminders batch error", slog.String("error", err.Error()))
		return
	}
	slog.Info("scheduled reminders batch done", slog.String("run_id", report.RunID), slog.Int("sent", report.Sent))
}
