package handlers

import (
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryHandler lists stored polls.
type HistoryHandler struct {
	Store ports.SnapshotStore
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(store ports.SnapshotStore) *HistoryHandler {
	return &HistoryHandler{Store: store}
}

// HandleHistory returns recent snapshot summaries, newest first.
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		http.Error(w, "History not available", http.StatusServiceUnavailable)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	rows, err := h.Store.ListSnapshots(r.Context(), limit)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
