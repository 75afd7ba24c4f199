package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"urap-polar/internal/client"
	"urap-polar/internal/domain"
)

// RecordingsHandler read-only view of the phone's recording API
type RecordingsHandler struct {
	recordings client.Recordings
	logger     *zap.Logger
}

func NewRecordingsHandler(recordings client.Recordings, logger *zap.Logger) *RecordingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingsHandler{recordings: recordings, logger: logger}
}

func listItem(r domain.RecordingSummary) summaryResponse {
	return summaryResponse{
		ID:               r.ID,
		Name:             r.Name,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		Duration:         r.DurationSeconds,
		SensorCount:      r.SensorCount,
		AverageHeartRate: r.AverageHeartRate,
		AverageSDNN:      r.AverageSDNN,
		AverageRMSSD:     r.AverageRMSSD,
	}
}

func (h *RecordingsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.recordings.ListRecordings(r.Context())
	if err != nil {
		h.logger.Warn("list recordings failed", zap.Error(err))
		writeJSON(w, errorStatus(err), Fail(err.Error()))
		return
	}
	items := make([]summaryResponse, 0, len(list))
	for _, rec := range list {
		items = append(items, listItem(rec))
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (h *RecordingsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.recordings.GetRecording(r.Context(), id)
	if err != nil {
		h.logger.Warn("get recording failed", zap.String("recording_id", id), zap.Error(err))
		writeJSON(w, errorStatus(err), Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(s))
}
