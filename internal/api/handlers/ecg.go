package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/session"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// ECGHandler serves the feature and session endpoints
// ⭐ SSOT: ECG API 핸들러는 이 구조체에서만
type ECGHandler struct {
	processor contracts.SegmentProcessor
	sessions  *session.Service
	logger    *logger.Logger
}

// NewECGHandler creates a new ECG handler
func NewECGHandler(processor contracts.SegmentProcessor, sessions *session.Service, log *logger.Logger) *ECGHandler {
	return &ECGHandler{
		processor: processor,
		sessions:  sessions,
		logger:    log.WithModule("ecg-handler"),
	}
}

// SegmentFeatures computes the feature record of one segment
// POST /ecg/features
func (h *ECGHandler) SegmentFeatures(w http.ResponseWriter, r *http.Request) {
	var seg contracts.RawSegment
	if !decodeJSON(w, r, &seg) {
		return
	}

	feat, err := h.processor.Process(r.Context(), &seg)
	if err != nil {
		respondPipelineError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, feat)
}

// EndSession aggregates a finished work session
// POST /ecg/pomodoro/end
func (h *ECGHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req contracts.WorkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.sessions.EndSession(r.Context(), &req)
	if err != nil {
		respondPipelineError(w, h.logger, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":    summary.UserID,
		"session_id": summary.SessionID,
		"signal_ok":  summary.Quality.SignalOK,
		"rr_n":       summary.RRSummary.N,
	}).Info("Session summarized")

	respondJSON(w, http.StatusOK, summary)
}

// GetSession returns a stored summary
// GET /api/sessions/{session_id}
func (h *ECGHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	summary, err := h.sessions.Summary(r.Context(), sessionID)
	if err != nil {
		respondPipelineError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ListUserSessions returns the latest summaries of a user
// GET /api/users/{user_id}/sessions?limit=20
func (h *ECGHandler) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected positive integer)")
			return
		}
		limit = n
	}

	summaries, err := h.sessions.ListSummaries(r.Context(), userID, limit)
	if err != nil {
		respondPipelineError(w, h.logger, err)
		return
	}
	if summaries == nil {
		summaries = []contracts.SessionSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"count":    len(summaries),
		"sessions": summaries,
	})
}

// GetUserBaseline returns the per-hour baselines of a user
// GET /api/users/{user_id}/baseline
func (h *ECGHandler) GetUserBaseline(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	baselines, err := h.sessions.Baselines(r.Context(), userID)
	if err != nil {
		respondPipelineError(w, h.logger, err)
		return
	}
	if baselines == nil {
		baselines = []contracts.UserBaseline{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"baselines": baselines,
	})
}
