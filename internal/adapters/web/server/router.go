package server

import (
	"net/http"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.BasicAuthMiddleware("", s.PasswordHash)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// Rate limited JSON/PDF API
	apiLimiter := middleware.NewRateLimiter(s.APIRate, 1*time.Minute)
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.RateLimitMiddleware(apiLimiter)(protect(h))
	}

	// Public liveness
	mux.HandleFunc("GET /health", s.DashboardHandler.HandleHealth)

	mux.Handle("GET /{$}", protect(s.DashboardHandler.HandleIndex))
	mux.Handle("GET /ws", protect(s.WSManager.HandleWebSocket))

	mux.Handle("GET /api/state", api(s.DashboardHandler.HandleState))
	mux.Handle("GET /api/history", api(s.HistoryHandler.HandleHistory))
	mux.Handle("GET /api/reports/coverage.pdf", api(s.ReportHandler.HandleCoverageReport))
	mux.Handle("GET /api/export/points.csv", api(s.ExportHandler.HandlePointsCSV))
	mux.Handle("GET /api/export/points.json", api(s.ExportHandler.HandlePointsJSON))
	mux.Handle("GET /api/export/history.csv", api(s.ExportHandler.HandleHistoryCSV))

	mux.Handle("GET /metrics", protect(func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	}))

	return mux
}
