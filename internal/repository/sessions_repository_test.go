package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/limbo/placebetween/internal/repository"
	"github.com/limbo/placebetween/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSessionsByUserAndRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewSessionsRepo(mock)
	query := regexp.QuoteMeta(`SELECT id, user_id, session_date, session_type, points_earned FROM daily_sessions WHERE user_id = $1 AND session_date >= $2 AND session_date <= $3 ORDER BY session_date, id;`)
	userID := int64(10)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "session_date", "session_type", "points_earned"}
	testCases := []struct {
		Desc         string
		Error        error
		Result       []entity.Session
		MockPrepFunc func()
	}{
		{
			Desc: "successful",
			Result: []entity.Session{
				{ID: 1, UserID: userID, Date: from, Type: entity.SessionDay, PointsEarned: 30},
				{ID: 2, UserID: userID, Date: from.AddDate(0, 0, 2), Type: entity.SessionNight, PointsEarned: 5},
			},
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, from, to).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(int64(1), userID, from, "day", 30).
						AddRow(int64(2), userID, from.AddDate(0, 0, 2), "night", 5))
			},
		},
		{
			Desc:   "no sessions",
			Result: []entity.Session{},
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, from, to).
					WillReturnRows(pgxmock.NewRows(columns))
			},
		},
		{
			Desc:  "db error",
			Error: errors.New("getting sessions for period error: db error"),
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(userID, from, to).
					WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			sessions, err := repo.GetByUserAndRange(ctx, userID, from, to)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.Result, sessions)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompletionsBySessionIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewCompletionsRepo(mock)
	query := regexp.QuoteMeta(`WHERE ac.daily_session_id = ANY($1);`)
	ids := []int64{1, 2}
	completedAt := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	extID, activity, category := "breath-01", "Respirar", "Calma"
	columns := []string{"id", "daily_session_id", "points_awarded", "completed_at", "external_id", "name", "name"}
	testCases := []struct {
		Desc         string
		Error        error
		IDs          []int64
		Result       []entity.Completion
		MockPrepFunc func()
	}{
		{
			Desc: "successful",
			IDs:  ids,
			Result: []entity.Completion{
				{
					ID:                 1,
					SessionID:          1,
					PointsAwarded:      20,
					CompletedAt:        &completedAt,
					ActivityExternalID: &extID,
					ActivityName:       &activity,
					CategoryName:       &category,
				},
				{ID: 2, SessionID: 2, PointsAwarded: 5},
			},
			MockPrepFunc: func() {
				mock.ExpectQuery(query).
					WithArgs(ids).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(
							int64(1), int64(1), 20,
							pgtype.Timestamptz{Time: completedAt, Valid: true},
							pgtype.Text{String: extID, Valid: true},
							pgtype.Text{String: activity, Valid: true},
							pgtype.Text{String: category, Valid: true},
						).
						AddRow(int64(2), int64(2), 5, nil, nil, nil, nil))
			},
		},
		{
			Desc:         "no sessions, no query",
			IDs:          nil,
			Result:       []entity.Completion{},
			MockPrepFunc: func() {},
		},
		{
			Desc:  "db error",
			IDs:   ids,
			Error: errors.New("getting completions error: db error"),
			MockPrepFunc: func() {
				mock.ExpectQuery(query).WithArgs(ids).WillReturnError(errors.New("db error"))
			},
		},
	}
	ctx := context.Background()
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			completions, err := repo.GetBySessionIDs(ctx, tc.IDs)
			if tc.Error != nil {
				assert.EqualError(t, err, tc.Error.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.Result, completions)
			}
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCheckinsBySessionIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := repository.NewCheckinsRepo(mock)
	query := regexp.QuoteMeta(`WHERE ec.daily_session_id = ANY($1);`)
	ids := []int64{3}
	createdAt := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)
	name, note, intensity := "Alegria", "buen dia", 7
	columns := []string{"id", "daily_session_id", "name", "intensity", "note", "created_at"}
	ctx := context.Background()

	t.Run("successful", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(ids).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(
					int64(1), int64(3),
					pgtype.Text{String: name, Valid: true},
					pgtype.Int4{Int32: int32(intensity), Valid: true},
					pgtype.Text{String: note, Valid: true},
					pgtype.Timestamptz{Time: createdAt, Valid: true},
				).
				AddRow(int64(2), int64(3), nil, nil, nil, nil))
		checkins, err := repo.GetBySessionIDs(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, []entity.EmotionCheckin{
			{ID: 1, SessionID: 3, EmotionName: &name, Intensity: &intensity, Note: &note, CreatedAt: &createdAt},
			{ID: 2, SessionID: 3},
		}, checkins)
	})
	t.Run("row error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(ids).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(1), int64(3), nil, nil, nil, nil).
				RowError(0, errors.New("broken row")))
		_, err := repo.GetBySessionIDs(ctx, ids)
		assert.Error(t, err)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(ids).WillReturnError(errors.New("db error"))
		_, err := repo.GetBySessionIDs(ctx, ids)
		assert.EqualError(t, err, "getting checkins error: db error")
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
