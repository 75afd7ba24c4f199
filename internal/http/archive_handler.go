package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"urap-polar/internal/domain"
	"urap-polar/internal/ingest"
)

// DefaultMaxArchiveBytes upload limit for one zip export
const DefaultMaxArchiveBytes = 64 << 20

// ArchiveHandler parses uploaded zip exports without storing them.
type ArchiveHandler struct {
	loader   *ingest.Loader
	maxBytes int64
	logger   *zap.Logger
}

func NewArchiveHandler(loader *ingest.Loader, maxBytes int64, logger *zap.Logger) *ArchiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxArchiveBytes
	}
	return &ArchiveHandler{loader: loader, maxBytes: maxBytes, logger: logger}
}

type diagnosticResponse struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

type archiveResponse struct {
	Summary     summaryResponse      `json:"summary"`
	Session     *domain.Session      `json:"session"`
	Diagnostics []diagnosticResponse `json:"diagnostics"`
}

// Upload accepts the zip as the raw body or as multipart field "file".
func (h *ArchiveHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, err := h.readArchive(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Fail("archive too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	res, err := h.loader.LoadReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.logger.Info("rejected archive upload", zap.Error(err))
		writeJSON(w, errorStatus(err), Fail(err.Error()))
		return
	}

	diags := make([]diagnosticResponse, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		diags = append(diags, diagnosticResponse{File: d.File, Line: d.Line, Reason: d.Reason})
	}
	writeJSON(w, http.StatusOK, Ok(archiveResponse{
		Summary:     sessionSummary(res.Session),
		Session:     res.Session,
		Diagnostics: diags,
	}))
}

func (h *ArchiveHandler) readArchive(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("multipart field \"file\" is required")
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty body, expected a zip archive")
	}
	return data, nil
}
