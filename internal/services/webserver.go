package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/handlers"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/middleware"
)

// webServer provides HTTP endpoints for monitoring, run history and
// triggering reconciliation runs.
type webServer struct {
	config      *common.Config
	storage     interfaces.Storage
	server      *http.Server
	logger      arbor.ILogger
	apiHandlers *handlers.APIHandlers
	wsHub       *handlers.WebSocketHub
	running     bool
	startTime   time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, storage interfaces.Storage, reconciler *Reconciler, logger arbor.ILogger) (interfaces.WebService, error) {
	mux := http.NewServeMux()

	// WebSocket hub first so run progress streams from the start
	wsHub := handlers.NewWebSocketHub(logger)
	reconciler.SetProgress(wsHub.SendRunUpdate)

	apiHandlers := handlers.NewAPIHandlers(cfg, storage, logger, reconciler, wsHub)

	ws := &webServer{
		config:      cfg,
		storage:     storage,
		logger:      logger,
		apiHandlers: apiHandlers,
		wsHub:       wsHub,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Reconciler.Port),
			Handler: mux,
		},
	}

	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS

	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/status", logMiddleware(corsMiddleware(apiHandlers.StatusHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))
	mux.HandleFunc("/reports", logMiddleware(corsMiddleware(apiHandlers.ReportsHandler)))
	mux.HandleFunc("/reconcile", logMiddleware(corsMiddleware(apiHandlers.ReconcileHandler)))

	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return ws, nil
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running = true
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Reconciler.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
		}
	}()
	return nil
}

// Stop stops the web server and the websocket hub
func (ws *webServer) Stop() error {
	ws.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	err := ws.server.Shutdown(ctx)
	ws.wsHub.Close()
	return err
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running
}
