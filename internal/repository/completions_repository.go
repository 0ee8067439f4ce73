package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/limbo/placebetween/pkg/entity"
)

type CompletionsRepository struct {
	conn PgConnection
}

func NewCompletionsRepo(conn PgConnection) *CompletionsRepository {
	mustPing(conn, "completionsRepo")
	return &CompletionsRepository{
		conn: conn,
	}
}

func (cr *CompletionsRepository) GetBySessionIDs(ctx context.Context, sessionIDs []int64) ([]entity.Completion, error) {
	completions := make([]entity.Completion, 0)
	if len(sessionIDs) == 0 {
		return completions, nil
	}
	// LEFT JOINs: a deleted activity or category must not hide the completion
	rows, err := cr.conn.Query(
		ctx,
		`SELECT ac.id, ac.daily_session_id, ac.points_awarded, ac.completed_at, a.external_id, a.name, c.name
		FROM activity_completions ac
		LEFT JOIN activities a ON a.id = ac.activity_id
		LEFT JOIN activity_categories c ON c.id = a.category_id
		WHERE ac.daily_session_id = ANY($1);`,
		sessionIDs,
	)
	if err != nil {
		return nil, errors.New("getting completions error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c           entity.Completion
			completedAt pgtype.Timestamptz
			externalID  pgtype.Text
			activity    pgtype.Text
			category    pgtype.Text
		)
		err = rows.Scan(&c.ID, &c.SessionID, &c.PointsAwarded, &completedAt, &externalID, &activity, &category)
		if err != nil {
			return nil, errors.New("completion row parsing error: " + err.Error())
		}
		c.CompletedAt = timePtr(completedAt)
		c.ActivityExternalID = textPtr(externalID)
		c.ActivityName = textPtr(activity)
		c.CategoryName = textPtr(category)
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.New("unexpected completion rows error: " + err.Error())
	}
	return completions, nil
}
