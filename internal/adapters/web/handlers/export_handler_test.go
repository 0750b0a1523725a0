package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandlePointsCSV(t *testing.T) {
	svc := dashboardWith(domain.DashboardState{
		Points: []domain.HeatPoint{{Latitude: 25.87, Longitude: 85.18, Intensity: 0.5}},
	})
	h := NewExportHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	h.HandlePointsCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export/points.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "heatmap_points_")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHandlePointsJSON(t *testing.T) {
	h := NewExportHandler(dashboardWith(domain.DashboardState{}), nil, nil)

	rec := httptest.NewRecorder()
	h.HandlePointsJSON(rec, httptest.NewRequest(http.MethodGet, "/api/export/points.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleHistoryCSV(t *testing.T) {
	store := new(MockStore)
	store.On("ListSnapshots", mock.Anything, maxHistoryLimit).Return([]domain.SnapshotSummary{{ID: "a"}, {ID: "b"}}, nil)
	h := NewExportHandler(dashboardWith(domain.DashboardState{}), store, nil)

	rec := httptest.NewRecorder()
	h.HandleHistoryCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export/history.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	store.AssertExpectations(t)
}

func TestHandleHistoryCSV_Errors(t *testing.T) {
	h := NewExportHandler(dashboardWith(domain.DashboardState{}), nil, nil)
	rec := httptest.NewRecorder()
	h.HandleHistoryCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export/history.csv", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	store := new(MockStore)
	store.On("ListSnapshots", mock.Anything, maxHistoryLimit).Return(nil, errors.New("disk"))
	h = NewExportHandler(dashboardWith(domain.DashboardState{}), store, nil)
	rec = httptest.NewRecorder()
	h.HandleHistoryCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export/history.csv", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
