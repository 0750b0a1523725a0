package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	HeatmapPath       = "/api/v1/locations/heatmap-data"
	CoverageStatsPath = "/api/v1/locations/coverage-stats"

	maxBodyBytes = 32 << 20
)

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError reports a non-2xx answer from the campaign API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Ensure compliance
var _ ports.LocationAPI = (*Client)(nil)

// Client reads heatmap snapshots and coverage stats from the campaign API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. Requests are traced through otelhttp.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// FetchHeatmap retrieves the full heatmap snapshot.
func (c *Client) FetchHeatmap(ctx context.Context) ([]domain.HeatPoint, error) {
	var snap domain.HeatmapSnapshot
	if err := c.getJSON(ctx, HeatmapPath, &snap); err != nil {
		return nil, err
	}
	if snap.Points == nil {
		snap.Points = []domain.HeatPoint{}
	}
	return snap.Points, nil
}

// FetchCoverageStats retrieves the coverage summary.
func (c *Client) FetchCoverageStats(ctx context.Context) (domain.CoverageStats, error) {
	var stats domain.CoverageStats
	if err := c.getJSON(ctx, CoverageStatsPath, &stats); err != nil {
		return domain.CoverageStats{}, err
	}
	return stats, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
