// @title Place Between API
// @version 1.0
// @description Mirror analytics and reminder dispatch for "Place Between"
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/limbo/placebetween/internal/api"
	"github.com/limbo/placebetween/internal/repository"
	"github.com/limbo/placebetween/internal/service"
	"github.com/limbo/placebetween/pkg/cleanup"
	"github.com/limbo/placebetween/pkg/config"
	jwtservice "github.com/limbo/placebetween/pkg/jwt_service"
	"github.com/limbo/placebetween/pkg/lock"
	"github.com/limbo/placebetween/pkg/logger"
	"github.com/limbo/placebetween/pkg/mailer"
)

func init() {
	service.InitValidator()
}

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

	mirrorService := service.NewMirrorService(
		repository.NewSessionsRepo(pool),
		repository.NewCompletionsRepo(pool),
		repository.NewCheckinsRepo(pool),
	)
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
	serv := api.New(&api.ServicesList{
		UserService:     service.NewUserService(repository.NewUsersRepo(pool)),
		MirrorService:   mirrorService,
		ReminderService: reminderService,
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET")),
		InternalToken:   cfg.GetString("INTERNAL_TOKEN"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		addr := cfg.GetStringOr("API_ADDRESS", ":8080")
		slog.Info("api server started", slog.String("address", addr))
		err := serv.Run(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := serv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
