package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/limbo/placebetween/pkg/entity"
)

type CheckinsRepository struct {
	conn PgConnection
}

func NewCheckinsRepo(conn PgConnection) *CheckinsRepository {
	mustPing(conn, "checkinsRepo")
	return &CheckinsRepository{
		conn: conn,
	}
}

func (cr *CheckinsRepository) GetBySessionIDs(ctx context.Context, sessionIDs []int64) ([]entity.EmotionCheckin, error) {
	checkins := make([]entity.EmotionCheckin, 0)
	if len(sessionIDs) == 0 {
		return checkins, nil
	}
	rows, err := cr.conn.Query(
		ctx,
		`SELECT ec.id, ec.daily_session_id, e.name, ec.intensity, ec.note, ec.created_at
		FROM emotion_checkins ec
		LEFT JOIN emotions e ON e.id = ec.emotion_id
		WHERE ec.daily_session_id = ANY($1);`,
		sessionIDs,
	)
	if err != nil {
		return nil, errors.New("getting checkins error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ch        entity.EmotionCheckin
			name      pgtype.Text
			intensity pgtype.Int4
			note      pgtype.Text
			createdAt pgtype.Timestamptz
		)
		err = rows.Scan(&ch.ID, &ch.SessionID, &name, &intensity, &note, &createdAt)
		if err != nil {
			return nil, errors.New("checkin row parsing error: " + err.Error())
		}
		ch.EmotionName = textPtr(name)
		ch.Intensity = intPtr(intensity)
		ch.Note = textPtr(note)
		ch.CreatedAt = timePtr(createdAt)
		checkins = append(checkins, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected checkin rows error: " + err.Error())
	}
	return checkins, nil
}
