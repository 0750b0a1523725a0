package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/handlers"
	web "github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the dashboard server.
type Options struct {
	Addr string
	// PasswordHash is a bcrypt hash guarding every route but /health. Empty disables auth.
	PasswordHash string
	// APIRate limits API requests per client IP per minute.
	APIRate int
}

// Server handles HTTP and WebSocket connections for the dashboard.
type Server struct {
	Addr         string
	PasswordHash string
	APIRate      int

	WSManager        *web.WSManager
	DashboardHandler *handlers.DashboardHandler
	HistoryHandler   *handlers.HistoryHandler
	ReportHandler    *handlers.ReportHandler
	ExportHandler    *handlers.ExportHandler

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(opts Options, wsManager *web.WSManager, dashboard *handlers.DashboardHandler, store ports.SnapshotStore, reports *handlers.ReportHandler) *Server {
	if opts.APIRate <= 0 {
		opts.APIRate = 120
	}
	return &Server{
		Addr:             opts.Addr,
		PasswordHash:     opts.PasswordHash,
		APIRate:          opts.APIRate,
		WSManager:        wsManager,
		DashboardHandler: dashboard,
		HistoryHandler:   handlers.NewHistoryHandler(store),
		ReportHandler:    reports,
		ExportHandler:    handlers.NewExportHandler(dashboard.Service, store, dashboard.Location),
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "heatmap-server")
}

// Run starts the server and the websocket manager. It returns once ctx ends
// and the server has shut down.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.WSManager.Start(ctx)

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Web server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown error", "error", err)
		}
	}()

	slog.Info("Web server listening", "addr", lis.Addr().String())
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
