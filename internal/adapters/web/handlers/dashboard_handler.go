package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/display"
	"github.com/lcalzada-xor/campaign-heatmap/internal/adapters/web/templates"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// DashboardReader is the part of the dashboard service the page needs.
type DashboardReader interface {
	State() domain.DashboardState
	LayerOptions() domain.LayerOptions
}

// DashboardPage is the template data for the dashboard.
type DashboardPage struct {
	Title       string
	Header      display.Header
	Legend      display.Legend
	Loading     bool
	LoadingText string
	State       display.State
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(templates.DashboardHTML))

// DashboardHandler serves the page and its JSON state.
type DashboardHandler struct {
	Service  DashboardReader
	Location *time.Location
	Title    string
	// StaleAfter marks /health degraded when nothing was applied for that
	// long. Zero disables the check.
	StaleAfter time.Duration
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardReader, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		Service:  service,
		Location: loc,
		Title:    "Campaign Heatmap",
	}
}

func (h *DashboardHandler) state() display.State {
	return display.NewState(h.Service.State(), h.Service.LayerOptions(), h.Location)
}

// HandleIndex renders the dashboard page.
func (h *DashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	state := h.state()
	page := DashboardPage{
		Title:       h.Title,
		Header:      state.Header,
		Legend:      state.Legend,
		Loading:     state.View.IsLoading,
		LoadingText: display.LoadingText,
		State:       state,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, page); err != nil {
		slog.Error("Dashboard render failed", "error", err)
	}
}

// HandleState returns the dashboard state as JSON.
func (h *DashboardHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

// HandleHealth reports liveness plus whether a poll has succeeded yet.
func (h *DashboardHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.Service.State()
	stale := h.StaleAfter > 0 && st.Polled && st.View.IsStale(h.StaleAfter)
	status := "ok"
	if !st.Polled || st.PollFailures > 0 || stale {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        status,
		"stale":         stale,
		"poll_failures": st.PollFailures,
		"last_update":   st.View.LastUpdate,
		"points":        len(st.Points),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("JSON response write failed", "error", err)
	}
}
