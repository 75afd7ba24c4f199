package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"urap-polar/internal/client"
	"urap-polar/internal/domain"
	"urap-polar/internal/ingest"
	"urap-polar/internal/plot"
	"urap-polar/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SessionSource yields the session a server instance presents.
type SessionSource interface {
	Session(ctx context.Context) (*domain.Session, error)
}

type SessionHandler struct {
	source SessionSource
	logger *zap.Logger
}

func NewSessionHandler(source SessionSource, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{source: source, logger: logger}
}

// summaryResponse list item / session header
type summaryResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	Duration         float64    `json:"duration"`
	SensorCount      int        `json:"sensorCount"`
	TotalDataPoints  int        `json:"totalDataPoints,omitempty"`
	AverageHeartRate float64    `json:"averageHeartRate"`
	AverageSDNN      float64    `json:"averageSDNN"`
	AverageRMSSD     float64    `json:"averageRMSSD"`
}

func sessionSummary(s *domain.Session) summaryResponse {
	out := summaryResponse{
		ID:               s.ID(),
		Name:             s.Name(),
		Duration:         s.DurationSeconds(),
		SensorCount:      s.SensorCount(),
		TotalDataPoints:  s.TotalDataPoints(),
		AverageHeartRate: s.AverageHeartRate(),
		AverageSDNN:      s.AverageSDNN(),
		AverageRMSSD:     s.AverageRMSSD(),
	}
	if t, ok := s.StartDate(); ok {
		out.StartDate = &t
	}
	if t, ok := s.EndDate(); ok {
		out.EndDate = &t
	}
	return out
}

func (h *SessionHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	s, err := h.source.Session(r.Context())
	if err != nil {
		h.logger.Warn("session unavailable", zap.Error(err))
		writeJSON(w, errorStatus(err), Fail(err.Error()))
		return nil, false
	}
	return s, true
}

// GetSession full canonical document
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(s))
}

// GetSummary derived aggregates only
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(sessionSummary(s)))
}

// GetPlot ?kind=all|hr|rr&sensor=<id>
func (h *SessionHandler) GetPlot(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opt := plot.Options{SensorID: q.Get("sensor")}

	var buf bytes.Buffer
	err := plot.Render(&buf, s, q.Get("kind"), opt)
	if err != nil {
		if errors.Is(err, plot.ErrNoData) {
			writeJSON(w, http.StatusNotFound, Fail("No sensor data to plot."))
			return
		}
		if errors.Is(err, plot.ErrUnknownKind) {
			writeJSON(w, http.StatusBadRequest, Fail(plot.ErrUnknownKind.Error()))
			return
		}
		h.logger.Error("plot render failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to render plot"))
		return
	}
	writeBytes(w, "text/html; charset=utf-8", buf.Bytes())
}

// GetWorkbook .xlsx export
func (h *SessionHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	data, err := report.ExcelWorkbook(s)
	if err != nil {
		h.logger.Error("workbook export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to build workbook"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(s)+`.xlsx"`)
	writeBytes(w, xlsxContentType, data)
}

// GetCSV per-sensor statistics rows
func (h *SessionHandler) GetCSV(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, s); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to build csv"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportName(s)+`.csv"`)
	writeBytes(w, "text/csv; charset=utf-8", buf.Bytes())
}

func exportName(s *domain.Session) string {
	if s.ID() == "" {
		return "recording"
	}
	return "recording_" + s.ID()
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrFormat):
		return http.StatusUnprocessableEntity
	case client.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, client.ErrUnreachable):
		return http.StatusBadGateway
	default:
		var se *client.StatusError
		if errors.As(err, &se) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
