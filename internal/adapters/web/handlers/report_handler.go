package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// ReportGenerator builds a coverage report from current state.
type ReportGenerator interface {
	Generate(ctx context.Context) (*domain.CoverageReport, error)
}

// ReportExporter renders a coverage report.
type ReportExporter interface {
	ExportCoverageReport(report *domain.CoverageReport) ([]byte, error)
}

// ReportHandler handles report generation
type ReportHandler struct {
	Generator ReportGenerator
	Exporter  ReportExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(gen ReportGenerator, exp ReportExporter) *ReportHandler {
	return &ReportHandler{Generator: gen, Exporter: exp}
}

// HandleCoverageReport downloads the coverage report as PDF.
func (h *ReportHandler) HandleCoverageReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Generator.Generate(r.Context())
	if err != nil {
		slog.Error("Coverage report failed", "error", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	pdf, err := h.Exporter.ExportCoverageReport(report)
	if err != nil {
		slog.Error("Coverage report export failed", "error", err)
		http.Error(w, "Failed to export report", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("coverage_report_%s.pdf", report.GeneratedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(pdf)
}
