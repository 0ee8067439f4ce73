package repository

import (
	"context"
	"errors"
	"time"

	"github.com/limbo/placebetween/pkg/entity"
)

type SessionsRepository struct {
	conn PgConnection
}

func NewSessionsRepo(conn PgConnection) *SessionsRepository {
	mustPing(conn, "sessionsRepo")
	return &SessionsRepository{
		conn: conn,
	}
}

func (sr *SessionsRepository) GetByUserAndRange(ctx context.Context, userID int64, from, to time.Time) ([]entity.Session, error) {
	rows, err := sr.conn.Query(
		ctx,
		`SELECT id, user_id, session_date, session_type, points_earned FROM daily_sessions WHERE user_id = $1 AND session_date >= $2 AND session_date <= $3 ORDER BY session_date, id;`,
		userID,
		from,
		to,
	)
	if err != nil {
		return nil, errors.New("getting sessions for period error: " + err.Error())
	}
	defer rows.Close()
	sessions := make([]entity.Session, 0)
	for rows.Next() {
		var (
			s    entity.Session
			kind string
		)
		err = rows.Scan(&s.ID, &s.UserID, &s.Date, &kind, &s.PointsEarned)
		if err != nil {
			return nil, errors.New("session row parsing error: " + err.Error())
		}
		s.Type = entity.SessionType(kind)
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected session rows error: " + err.Error())
	}
	return sessions, nil
}
