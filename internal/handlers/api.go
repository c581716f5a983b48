package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/models"
)

// Runner triggers a reconciliation run. Satisfied by the reconciler
// service; kept narrow so handlers stay decoupled from the pipeline.
type Runner interface {
	Run(ctx context.Context, from, to time.Time, userIDs []string) (*models.RunSummary, []models.MatchedRecord, error)
}

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	storage   interfaces.Storage
	logger    arbor.ILogger
	runner    Runner
	wsHub     *WebSocketHub
	startTime time.Time
	runMutex  sync.Mutex
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// StatusResponse represents the reconciler status response
type StatusResponse struct {
	Running          bool               `json:"running"`
	Uptime           float64            `json:"uptime_seconds"`
	LastCacheUpdate  string             `json:"last_cache_update,omitempty"`
	RunCount         int                `json:"run_count"`
	LastRun          *models.RunSummary `json:"last_run,omitempty"`
	WebSocketClients int                `json:"websocket_clients"`
}

// ConfigResponse represents the configuration display response. Secrets
// are never echoed back.
type ConfigResponse struct {
	Reconciler *common.ReconcilerConfig `json:"reconciler"`
	Matcher    *common.MatcherConfig    `json:"matcher"`
	Report     *common.ReportConfig     `json:"report"`
	Storage    *common.StorageConfig    `json:"storage"`
	Logging    *common.LoggingConfig    `json:"logging"`
}

// ReconcileRequest is the body of a run trigger.
type ReconcileRequest struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	UserIDs []string `json:"user_ids,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, storage interfaces.Storage, logger arbor.ILogger, runner Runner, wsHub *WebSocketHub) *APIHandlers {
	return &APIHandlers{
		config:    config,
		storage:   storage,
		logger:    logger,
		runner:    runner,
		wsHub:     wsHub,
		startTime: time.Now(),
	}
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, health)
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// StatusHandler returns reconciler status and run history metrics
func (h *APIHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{
		Running: true,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.ClientCount()
	}

	if lastRefresh, err := h.storage.LastRefresh(); err == nil {
		status.LastCacheUpdate = lastRefresh
	}

	summaries, err := h.storage.LoadRunSummaries()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load run history for status")
	} else {
		status.RunCount = len(summaries)
		if len(summaries) > 0 {
			status.LastRun = summaries[0]
		}
	}

	h.writeJSON(w, http.StatusOK, status)
}

// ConfigHandler returns the active configuration without credentials
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ConfigResponse{
		Reconciler: &h.config.Reconciler,
		Matcher:    &h.config.Matcher,
		Report:     &h.config.Report,
		Storage:    &h.config.Storage,
		Logging:    &h.config.Logging,
	})
}

// ReportsHandler returns the stored run history, newest first
func (h *APIHandlers) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.storage.LoadRunSummaries()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load run summaries")
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load run history"})
		return
	}
	if summaries == nil {
		summaries = []*models.RunSummary{}
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// ReconcileHandler triggers a reconciliation run for a date range. Only
// one run at a time; a second trigger gets 409.
func (h *APIHandlers) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if !h.runMutex.TryLock() {
		h.writeJSON(w, http.StatusConflict, ErrorResponse{Error: "a reconciliation run is already in progress"})
		return
	}
	defer h.runMutex.Unlock()

	summary, _, err := h.runner.Run(r.Context(), from, to, req.UserIDs)
	if err != nil {
		h.logger.Error().Err(err).Msg("Reconciliation run failed")
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// parseRange validates a YYYY-MM-DD date range, extending the end date
// to the last instant of its day.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("from and to dates are required")
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", fromStr)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", toStr)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date %s is before from date %s", toStr, fromStr)
	}

	return from, to.Add(24*time.Hour - time.Second), nil
}

func (h *APIHandlers) testDatabaseConnection() bool {
	_, err := h.storage.LastRefresh()
	return err == nil
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
