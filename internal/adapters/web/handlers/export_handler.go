package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/services/export"
)

// ExportHandler serves downloads of the displayed points and the poll history.
type ExportHandler struct {
	Service  DashboardReader
	Store    ports.SnapshotStore
	Location *time.Location
}

// NewExportHandler creates a new ExportHandler. store may be nil.
func NewExportHandler(service DashboardReader, store ports.SnapshotStore, loc *time.Location) *ExportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportHandler{Service: service, Store: store, Location: loc}
}

// HandlePointsCSV exports the displayed points as CSV.
func (h *ExportHandler) HandlePointsCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.ExportPointsCSV(&buf, h.Service.State().Points); err != nil {
		http.Error(w, "Failed to export points", http.StatusInternalServerError)
		return
	}
	h.attach(w, "text/csv", "heatmap_points", "csv", buf.Bytes())
}

// HandlePointsJSON exports the displayed points as a JSON array.
func (h *ExportHandler) HandlePointsJSON(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.ExportPointsJSON(&buf, h.Service.State().Points); err != nil {
		http.Error(w, "Failed to export points", http.StatusInternalServerError)
		return
	}
	h.attach(w, "application/json", "heatmap_points", "json", buf.Bytes())
}

// HandleHistoryCSV exports stored poll summaries as CSV.
func (h *ExportHandler) HandleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		http.Error(w, "History not available", http.StatusServiceUnavailable)
		return
	}

	rows, err := h.Store.ListSnapshots(r.Context(), maxHistoryLimit)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.ExportHistoryCSV(&buf, rows, h.Location); err != nil {
		http.Error(w, "Failed to export history", http.StatusInternalServerError)
		return
	}
	h.attach(w, "text/csv", "coverage_history", "csv", buf.Bytes())
}

func (h *ExportHandler) attach(w http.ResponseWriter, contentType, name, ext string, body []byte) {
	filename := fmt.Sprintf("%s_%s.%s", name, time.Now().In(h.Location).Format("20060102_150405"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
