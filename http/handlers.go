package http

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"heartcheck/assessment"
	"heartcheck/db"
	"heartcheck/monitoring"
	"heartcheck/provision"
)

// Assessor runs one risk assessment per submission.
type Assessor interface {
	Assess(ctx context.Context, s assessment.Submission) (assessment.Result, error)
}

// ArtifactLedger reports how the model artifact was provisioned.
type ArtifactLedger interface {
	LatestFetch(ctx context.Context, path string) (provision.Record, error)
}

// ModelInfo describes the loaded classifier for the page sidebar.
type ModelInfo struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Features int    `json:"features"`
	Trees    int    `json:"trees,omitempty"`
}

type Dependencies struct {
	Assessor Assessor
	Ledger   ArtifactLedger
	Metrics  *monitoring.Metrics
	Model    ModelInfo
	Logger   *zap.Logger
	// MaxMessageBytes bounds one websocket message; zero means 64 KiB.
	MaxMessageBytes int64
	// MessageTimeout bounds one websocket assessment; zero means 30s.
	MessageTimeout time.Duration
}

type Handlers struct {
	assessor Assessor
	ledger   ArtifactLedger
	metrics  *monitoring.Metrics
	model    ModelInfo
	logger   *zap.Logger
	page     *template.Template
	maxMsg   int64
	msgTTL   time.Duration
}

func NewHandlers(deps Dependencies) (*Handlers, error) {
	if deps.Assessor == nil {
		return nil, errors.New("assessor is required")
	}
	page, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxMsg := deps.MaxMessageBytes
	if maxMsg <= 0 {
		maxMsg = 64 << 10
	}
	msgTTL := deps.MessageTimeout
	if msgTTL <= 0 {
		msgTTL = 30 * time.Second
	}
	return &Handlers{
		assessor: deps.Assessor,
		ledger:   deps.Ledger,
		metrics:  deps.Metrics,
		model:    deps.Model,
		logger:   logger,
		page:     page,
		maxMsg:   maxMsg,
		msgTTL:   msgTTL,
	}, nil
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /assess", h.handleFormSubmit)
	mux.HandleFunc("POST /api/assess", h.handleAssess)
	mux.HandleFunc("GET /api/options", h.handleOptions)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/artifact", h.handleArtifact)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/ws/assess", h.handleAssessSocket)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assessment.Options())
}

func (h *Handlers) handleAssess(w http.ResponseWriter, r *http.Request) {
	submission := assessment.DefaultSubmission()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&submission); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.assessor.Assess(r.Context(), submission)
	if err != nil {
		h.logFailure(r, err)
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeJSONError(w, http.StatusNotFound, "artifact ledger disabled")
		return
	}
	rec, err := h.ledger.LatestFetch(r.Context(), h.model.Path)
	if errors.Is(err, db.ErrNoFetch) {
		writeJSONError(w, http.StatusNotFound, "artifact was not fetched by this installation")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source_id":   rec.SourceID,
		"path":        rec.Path,
		"bytes":       rec.Bytes,
		"sha256":      rec.SHA256,
		"duration_ms": rec.Duration.Milliseconds(),
		"fetched_at":  rec.FetchedAt,
	})
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.metrics.WriteJSON(w); err != nil {
		h.logger.Warn("write metrics", zap.Error(err))
	}
}

func (h *Handlers) logFailure(r *http.Request, err error) {
	h.logger.Warn("assessment failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err),
	)
}

// statusFor maps assessment errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, assessment.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
