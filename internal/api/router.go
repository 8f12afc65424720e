package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ecg-pomodoro/backend/internal/api/handlers"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// Routes groups the handlers mounted by NewRouter
type Routes struct {
	Health *handlers.HealthHandler
	ECG    *handlers.ECGHandler
	// Summaries streams finished summaries; nil disables /ws/summaries
	Summaries http.Handler
}

// RouterOptions holds cross-cutting settings
type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    *RateLimiter // nil disables rate limiting
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", routes.Health.Health).Methods(http.MethodGet)

	// 레이트 리밋은 라우트 단위로 적용 (서브라우터는 메서드 불일치 시 405 대신 404)
	limited := func(h http.HandlerFunc) http.Handler {
		if opts.RateLimiter == nil {
			return h
		}
		return opts.RateLimiter.middleware()(h)
	}

	// Pipeline endpoints
	r.Handle("/ecg/features", limited(routes.ECG.SegmentFeatures)).Methods(http.MethodPost)
	r.Handle("/ecg/pomodoro/end", limited(routes.ECG.EndSession)).Methods(http.MethodPost)

	// Stored summaries
	r.Handle("/api/sessions/{session_id}", limited(routes.ECG.GetSession)).Methods(http.MethodGet)
	r.Handle("/api/users/{user_id}/sessions", limited(routes.ECG.ListUserSessions)).Methods(http.MethodGet)
	r.Handle("/api/users/{user_id}/baseline", limited(routes.ECG.GetUserBaseline)).Methods(http.MethodGet)

	if routes.Summaries != nil {
		r.Handle("/ws/summaries", routes.Summaries).Methods(http.MethodGet)
	}

	// Apply middleware
	r.Use(requestIDMiddleware())
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))

	return corsMiddleware(opts.AllowedOrigins, r)
}
