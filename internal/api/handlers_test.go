package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/mock/gomock"
	"github.com/limbo/placebetween/internal/api"
	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/internal/service"
	"github.com/limbo/placebetween/internal/service/mocks"
	"github.com/limbo/placebetween/pkg/entity"
	jwtservice "github.com/limbo/placebetween/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

var (
	userID        = int64(42)
	testUser      = &entity.User{ID: userID, Username: "ana", Email: "ana@example.com"}
	internalToken = "internal-secret"
	jwtSecret     = "jwt-secret"
)

func emptyReport(start, end string, days int) *entity.RangeReport {
	return &entity.RangeReport{
		Range: entity.RangeInfo{Start: start, End: end, DayCount: days, Timezone: "UTC"},
		Days:  []entity.DayReport{},
		Distributions: entity.Distributions{
			CategoriesPoints: map[string]int{},
			Emotions:         map[string]entity.EmotionStat{},
		},
	}
}

func withUID(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "User-ID", userID))
}

func TestHealth(t *testing.T) {
	serv := api.New(&api.ServicesList{})
	rr := httptest.NewRecorder()
	serv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	serv := api.New(&api.ServicesList{})
	rr := httptest.NewRecorder()
	serv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestSwaggerDoc(t *testing.T) {
	serv := api.New(&api.ServicesList{})
	rr := httptest.NewRecorder()
	serv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.Contains(t, rr.Body.String(), "/mirror/range")
	assert.Contains(t, rr.Body.String(), "/internal/reminders/send")
}

func TestMirrorRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	mService := mocks.NewMockMirrorServiceI(ctrl)
	serv := api.New(&api.ServicesList{
		MirrorService: mService,
	})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		Desc         string
		ExpectedCode int
		Query        string
		NoUID        bool
		MockPrepFunc func()
	}{
		{
			Desc:         "report",
			ExpectedCode: http.StatusOK,
			Query:        "?start=2024-01-01&end=2024-01-07",
			MockPrepFunc: func() {
				mService.EXPECT().Range(gomock.Any(), userID, start, end).Return(emptyReport("2024-01-01", "2024-01-07", 7), nil)
			},
		},
		{
			Desc:         "missing end",
			ExpectedCode: http.StatusBadRequest,
			Query:        "?start=2024-01-01",
			MockPrepFunc: func() {},
		},
		{
			Desc:         "unparseable date",
			ExpectedCode: http.StatusBadRequest,
			Query:        "?start=2024-13-01&end=2024-01-07",
			MockPrepFunc: func() {},
		},
		{
			Desc:         "start after end",
			ExpectedCode: http.StatusBadRequest,
			Query:        "?start=2024-01-07&end=2024-01-01",
			MockPrepFunc: func() {},
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			Query:        "?start=2024-01-01&end=2024-01-07",
			MockPrepFunc: func() {
				mService.EXPECT().Range(gomock.Any(), userID, start, end).Return(nil, errors.New("service error"))
			},
		},
		{
			Desc:         "no uid in context",
			ExpectedCode: http.StatusUnauthorized,
			Query:        "?start=2024-01-01&end=2024-01-07",
			NoUID:        true,
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/mirror/range"+tc.Query, nil)
			if !tc.NoUID {
				r = withUID(r)
			}
			serv.MirrorRange(rr, r)
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
			if tc.ExpectedCode == http.StatusOK {
				var got map[string]any
				require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, map[string]any{
					"start":     "2024-01-01",
					"end":       "2024-01-07",
					"day_count": float64(7),
					"timezone":  "UTC",
				}, got["range"])
			}
		})
	}
}

func TestMirrorWeekAndMonthThroughAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	uService := mocks.NewMockUserServiceI(ctrl)
	mService := mocks.NewMockMirrorServiceI(ctrl)
	jwt := jwtservice.New(jwtSecret)
	serv := api.New(&api.ServicesList{
		UserService:   uService,
		MirrorService: mService,
		JwtService:    jwt,
	})
	token, err := jwt.GenerateToken(testUser)
	require.NoError(t, err)
	foreignToken, err := jwtservice.New("other-secret").GenerateToken(testUser)
	require.NoError(t, err)

	testCases := []struct {
		Desc         string
		Path         string
		Token        string
		ExpectedCode int
		MockPrepFunc func()
	}{
		{
			Desc:         "week",
			Path:         "/api/v1/mirror/week",
			Token:        token,
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				uService.EXPECT().GetByID(gomock.Any(), userID).Return(testUser, nil)
				mService.EXPECT().Week(gomock.Any(), userID).Return(emptyReport("2024-03-05", "2024-03-11", 7), nil)
			},
		},
		{
			Desc:         "month",
			Path:         "/api/v1/mirror/month",
			Token:        token,
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				uService.EXPECT().GetByID(gomock.Any(), userID).Return(testUser, nil)
				mService.EXPECT().Month(gomock.Any(), userID).Return(emptyReport("2024-02-11", "2024-03-11", 30), nil)
			},
		},
		{
			Desc:         "month service error",
			Path:         "/api/v1/mirror/month",
			Token:        token,
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				uService.EXPECT().GetByID(gomock.Any(), userID).Return(testUser, nil)
				mService.EXPECT().Month(gomock.Any(), userID).Return(nil, errors.New("service error"))
			},
		},
		{
			Desc:         "no token",
			Path:         "/api/v1/mirror/week",
			ExpectedCode: http.StatusUnauthorized,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "token signed with another secret",
			Path:         "/api/v1/mirror/week",
			Token:        foreignToken,
			ExpectedCode: http.StatusUnauthorized,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "user deleted",
			Path:         "/api/v1/mirror/week",
			Token:        token,
			ExpectedCode: http.StatusNotFound,
			MockPrepFunc: func() {
				uService.EXPECT().GetByID(gomock.Any(), userID).Return(nil, errorvalues.ErrUserNotFound)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tc.Path, nil)
			if tc.Token != "" {
				r.Header.Set("Authorization", "Bearer "+tc.Token)
			}
			serv.ServeHTTP(rr, r)
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestSendReminders(t *testing.T) {
	ctrl := gomock.NewController(t)
	rService := mocks.NewMockReminderServiceI(ctrl)
	serv := api.New(&api.ServicesList{
		ReminderService: rService,
		InternalToken:   internalToken,
	})
	report := &entity.BatchReport{
		RunID: "run-1",
		Sent:  1,
		Decisions: []entity.ReminderDecision{
			{ReminderID: 1, UserID: 2, Sent: true, Reason: "sent"},
		},
	}

	testCases := []struct {
		Desc         string
		Query        string
		Token        string
		ExpectedCode int
		ExpectedBody string
		MockPrepFunc func()
	}{
		{
			Desc:         "batch sent",
			Token:        internalToken,
			ExpectedCode: http.StatusOK,
			ExpectedBody: `{"run_id":"run-1","sent":1,"decisions":[{"reminder_id":1,"user_id":2,"sent":true,"reason":"sent"}]}`,
			MockPrepFunc: func() {
				rService.EXPECT().RunBatch(gomock.Any(), gomock.Any(), false).Return(report, nil)
			},
		},
		{
			Desc:         "forced batch",
			Query:        "?force=1",
			Token:        internalToken,
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				rService.EXPECT().RunBatch(gomock.Any(), gomock.Any(), true).Return(report, nil)
			},
		},
		{
			Desc:         "batch already running",
			Token:        internalToken,
			ExpectedCode: http.StatusConflict,
			MockPrepFunc: func() {
				rService.EXPECT().RunBatch(gomock.Any(), gomock.Any(), false).Return(nil, errorvalues.ErrBatchInProgress)
			},
		},
		{
			Desc:         "service error",
			Token:        internalToken,
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				rService.EXPECT().RunBatch(gomock.Any(), gomock.Any(), false).Return(nil, errors.New("db error"))
			},
		},
		{
			Desc:         "wrong token",
			Token:        "guess",
			ExpectedCode: http.StatusUnauthorized,
			MockPrepFunc: func() {},
		},
		{
			Desc:         "no token",
			ExpectedCode: http.StatusUnauthorized,
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/v1/internal/reminders/send"+tc.Query, nil)
			if tc.Token != "" {
				r.Header.Set("X-Internal-Token", tc.Token)
			}
			serv.ServeHTTP(rr, r)
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
			if tc.ExpectedBody != "" {
				body, _ := io.ReadAll(rr.Result().Body)
				assert.JSONEq(t, tc.ExpectedBody, string(body))
			}
		})
	}
}

func TestInternalEndpointClosedWithoutToken(t *testing.T) {
	serv := api.New(&api.ServicesList{})
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/internal/reminders/send", nil)
	r.Header.Set("X-Internal-Token", "")
	serv.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
}
