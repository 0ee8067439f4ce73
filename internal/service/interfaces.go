package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/limbo/placebetween/pkg/entity"
)

type RangeRequest struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02,date_not_before=Start"`
}

type UserServiceI interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type MirrorServiceI interface {
	// Builds dense per-day report for [start, end], both dates inclusive
	Range(ctx context.Context, userID int64, start, end time.Time) (*entity.RangeReport, error)
	// Last 7 days up to today (UTC)
	Week(ctx context.Context, userID int64) (*entity.RangeReport, error)
	// Last 30 days up to today (UTC)
	Month(ctx context.Context, userID int64) (*entity.RangeReport, error)
}

type ReminderServiceI interface {
	// Evaluates every active reminder at now and delivers the due ones
	RunBatch(ctx context.Context, now time.Time, force bool) (*entity.BatchReport, error)
}

type Mailer interface {
	Send(ctx context.Context, email, username string) error
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
