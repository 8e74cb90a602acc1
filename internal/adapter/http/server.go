// Package http exposes the service's HTTP surface: health, readiness and
// metrics probes plus a small JSON API over the engine state, alert
// history and user settings.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bayanihan-labs/typhoon-watch/internal/domain"
	"github.com/bayanihan-labs/typhoon-watch/internal/engine"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineAPI is the slice of the refresh engine the HTTP layer consumes.
type EngineAPI interface {
	Current() (engine.State, bool)
	TriggerRefresh()
	Settings() domain.Settings
	UpdateSettings(ctx context.Context, s domain.Settings) error
	CheckReadiness(ctx context.Context) error
}

// AlertStore is the slice of the alert ledger the HTTP layer consumes.
type AlertStore interface {
	History() domain.AlertHistory
	Reset(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and API HTTP endpoints.
type Server struct {
	httpServer *http.Server
	engine     EngineAPI
	alerts     AlertStore
	logger     *slog.Logger
}

// NewServer creates an HTTP server with probe and API routes.
func NewServer(addr string, eng EngineAPI, alerts AlertStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: eng,
		alerts: alerts,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/state", s.handleState)
	mux.HandleFunc("GET /v1/alerts", s.handleAlerts)
	mux.HandleFunc("DELETE /v1/alerts", s.handleAlertsReset)
	mux.HandleFunc("GET /v1/settings", s.handleSettingsGet)
	mux.HandleFunc("PUT /v1/settings", s.handleSettingsPut)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.engine.Current()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no refresh cycle has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": s.alerts.History(),
	})
}

func (s *Server) handleAlertsReset(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.Reset(r.Context()); err != nil {
		s.logger.Error("alert history reset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "reset failed",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Settings())
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid settings payload: " + err.Error(),
		})
		return
	}
	if err := validateSettings(settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}
	if err := s.engine.UpdateSettings(r.Context(), settings); err != nil {
		s.logger.Error("settings update failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "settings update failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.engine.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}

func validateSettings(s domain.Settings) error {
	switch s.Language {
	case domain.LanguageFilipino, domain.LanguageEnglish:
	default:
		return &validationError{field: "language", value: string(s.Language)}
	}
	switch s.Theme {
	case domain.ThemeLight, domain.ThemeDark:
	default:
		return &validationError{field: "theme", value: string(s.Theme)}
	}
	return nil
}

type validationError struct {
	field, value string
}

func (e *validationError) Error() string {
	return "invalid " + e.field + ": " + e.value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
