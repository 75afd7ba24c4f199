package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router plain http.ServeMux; the route set is small and fixed.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes GET /healthz
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}

// RegisterSessionRoutes the session being served and its renderings.
func (r *Router) RegisterSessionRoutes(h *SessionHandler) {
	r.Handle("/api/v1/session", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.GetSession(w, req)
	})
	r.Handle("/api/v1/session/summary", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.GetSummary(w, req)
	})
	r.Handle("/plot", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.GetPlot(w, req)
	})
	r.Handle("/report.xlsx", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.GetWorkbook(w, req)
	})
	r.Handle("/report.csv", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.GetCSV(w, req)
	})
}

// RegisterRecordingRoutes proxies the phone's recording API.
func (r *Router) RegisterRecordingRoutes(h *RecordingsHandler) {
	r.Handle("/api/v1/recordings", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		h.List(w, req)
	})
	r.Handle("/api/v1/recordings/", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodGet) {
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/api/v1/recordings/")
		if id == "" || strings.Contains(id, "/") {
			writeJSON(w, http.StatusNotFound, Fail("recording id is required"))
			return
		}
		h.Get(w, req, id)
	})
}

// RegisterArchiveRoutes POST /api/v1/archives (zip upload)
func (r *Router) RegisterArchiveRoutes(h *ArchiveHandler) {
	r.Handle("/api/v1/archives", func(w http.ResponseWriter, req *http.Request) {
		if !allowMethod(w, req, http.MethodPost) {
			return
		}
		h.Upload(w, req)
	})
}
