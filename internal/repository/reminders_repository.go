package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/pkg/entity"
)

type RemindersRepository struct {
	conn PgConnection
}

func NewRemindersRepo(conn PgConnection) *RemindersRepository {
	mustPing(conn, "remindersRepo")
	return &RemindersRepository{
		conn: conn,
	}
}

func (rr *RemindersRepository) ListActive(ctx context.Context) ([]entity.ReminderTarget, error) {
	rows, err := rr.conn.Query(
		ctx,
		`SELECT r.id, r.user_id, r.reminder_type, r.mode, r.days_of_week, r.local_time, r.inactive_after_minutes, r.last_sent_at, r.is_active,
		u.username, u.email, u.timezone, u.last_activity_at, u.last_login_at, u.created_at, u.is_email_verified
		FROM reminders r
		JOIN users u ON u.id = r.user_id
		WHERE r.is_active = TRUE
		ORDER BY r.id;`,
	)
	if err != nil {
		return nil, errors.New("getting active reminders error: " + err.Error())
	}
	defer rows.Close()
	targets := make([]entity.ReminderTarget, 0)
	for rows.Next() {
		var (
			t              entity.ReminderTarget
			mode           string
			localTime      pgtype.Time
			inactiveAfter  pgtype.Int4
			lastSentAt     pgtype.Timestamptz
			lastActivityAt pgtype.Timestamptz
			lastLoginAt    pgtype.Timestamptz
		)
		err = rows.Scan(
			&t.Reminder.ID,
			&t.Reminder.UserID,
			&t.Reminder.Type,
			&mode,
			&t.Reminder.DaysOfWeek,
			&localTime,
			&inactiveAfter,
			&lastSentAt,
			&t.Reminder.IsActive,
			&t.Owner.Username,
			&t.Owner.Email,
			&t.Owner.Timezone,
			&lastActivityAt,
			&lastLoginAt,
			&t.Owner.CreatedAt,
			&t.Owner.IsEmailVerified,
		)
		if err != nil {
			return nil, errors.New("reminder row parsing error: " + err.Error())
		}
		t.Reminder.Mode = entity.ReminderMode(mode)
		t.Reminder.LocalTime = timeOfDay(localTime)
		t.Reminder.InactiveAfterMinutes = intPtr(inactiveAfter)
		t.Reminder.LastSentAt = timePtr(lastSentAt)
		t.Owner.ID = t.Reminder.UserID
		t.Owner.LastActivityAt = timePtr(lastActivityAt)
		t.Owner.LastLoginAt = timePtr(lastLoginAt)
		targets = append(targets, t)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected reminder rows error: " + err.Error())
	}
	return targets, nil
}

func (rr *RemindersRepository) MarkSent(ctx context.Context, reminderID int64, at time.Time) error {
	ct, err := rr.conn.Exec(ctx, `UPDATE reminders SET last_sent_at = $1 WHERE id = $2;`, at, reminderID)
	if err != nil {
		return errors.New("marking reminder as sent error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}

func timeOfDay(v pgtype.Time) *entity.TimeOfDay {
	if !v.Valid {
		return nil
	}
	minutes := v.Microseconds / int64(time.Minute/time.Microsecond)
	return &entity.TimeOfDay{
		Hour:   int(minutes / 60),
		Minute: int(minutes % 60),
	}
}
