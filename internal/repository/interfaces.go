package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/placebetween/pkg/entity"
)

type UsersRepositoryI interface {
	// Looks up user by id. Used by authorization middleware
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}

type SessionsRepositoryI interface {
	// Lists user's sessions with session date inside [from, to]
	GetByUserAndRange(ctx context.Context, userID int64, from, to time.Time) ([]entity.Session, error)
}

type CompletionsRepositoryI interface {
	// Lists completions of given sessions joined with activity and category names
	GetBySessionIDs(ctx context.Context, sessionIDs []int64) ([]entity.Completion, error)
}

type CheckinsRepositoryI interface {
	// Lists emotion check-ins of given sessions joined with emotion names
	GetBySessionIDs(ctx context.Context, sessionIDs []int64) ([]entity.EmotionCheckin, error)
}

type RemindersRepositoryI interface {
	// Lists active reminders together with their owners
	ListActive(ctx context.Context) ([]entity.ReminderTarget, error)
	// Stores the instant of the last delivery
	MarkSent(ctx context.Context, reminderID int64, at time.Time) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
