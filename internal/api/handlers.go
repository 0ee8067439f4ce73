package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	errorvalues "github.com/limbo/placebetween/internal/error_values"
	"github.com/limbo/placebetween/internal/service"
	"github.com/limbo/placebetween/pkg/entity"
	"github.com/limbo/placebetween/pkg/httputil"
)

const batchTimeout = 2 * time.Minute

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// @Summary Report for a date range
// @Tags mirror
// @Produce json
// @Security BearerAuth
// @Param start query string true "First day, YYYY-MM-DD"
// @Param end query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} entity.RangeReport
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /mirror/range [get]
func (s *Server) MirrorRange(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("mirror range error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	start, end, err := service.ParseRange(&service.RangeRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	})
	if err != nil {
		logger.Error("mirror range error: invalid range", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "start and end are required (YYYY-MM-DD) and start must be <= end", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	report, err := s.mirrorService.Range(ctx, uid, start, end)
	s.writeReport(w, logger, report, err)
}

// @Summary Report for the last 7 days
// @Tags mirror
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.RangeReport
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /mirror/week [get]
func (s *Server) MirrorWeek(w http.ResponseWriter, r *http.Request) {
	s.lastDaysReport(w, r, s.mirrorService.Week)
}

// @Summary Report for the last 30 days
// @Tags mirror
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.RangeReport
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /mirror/month [get]
func (s *Server) MirrorMonth(w http.ResponseWriter, r *http.Request) {
	s.lastDaysReport(w, r, s.mirrorService.Month)
}

func (s *Server) lastDaysReport(w http.ResponseWriter, r *http.Request, build func(context.Context, int64) (*entity.RangeReport, error)) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("mirror report error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second*15)
	defer cancel()
	report, err := build(ctx, uid)
	s.writeReport(w, logger, report, err)
}

func (s *Server) writeReport(w http.ResponseWriter, logger *slog.Logger, report *entity.RangeReport, err error) {
	if err != nil {
		logger.Error("building mirror report error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while building report", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
	logger.Info("mirror report provided", slog.String("start", report.Range.Start), slog.String("end", report.Range.End))
}

// @Summary Run reminders batch
// @Description Evaluates every active reminder and delivers the due ones
// @Tags reminders
// @Produce json
// @Param X-Internal-Token header string true "Internal token"
// @Param force query string false "1, true or yes bypasses inactivity threshold and earliest send time"
// @Success 200 {object} entity.BatchReport
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 409 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /internal/reminders/send [post]
func (s *Server) SendReminders(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	force := false
	switch r.URL.Query().Get("force") {
	case "1", "true", "yes":
		force = true
	}
	ctx, cancel := context.WithTimeout(r.Context(), batchTimeout)
	defer cancel()
	report, err := s.reminderService.RunBatch(ctx, time.Now().UTC(), force)
	if err != nil {
		if errors.Is(err, errorvalues.ErrBatchInProgress) {
			logger.Warn("reminders batch skipped: already running")
			httputil.WriteErrorResponse(w, http.StatusConflict, "reminders batch already in progress", nil)
			return
		}
		logger.Error("reminders batch error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while sending reminders", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
	logger.Info("reminders batch done", slog.String("run_id", report.RunID), slog.Int("sent", report.Sent))
}
