// Package display turns dashboard state into what the page shows: header
// stats, the map configuration and the default marker icons.
package display

import (
	"strconv"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without a tz database

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
)

// DefaultTimeZone is where campaign staff read the dashboard.
const DefaultTimeZone = "Asia/Kolkata"

const (
	LoadingText = "Loading campaign data..."
	LegendTitle = "Campaign Intensity"

	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// Header is the five-value stats strip above the map.
type Header struct {
	UniqueLocations int64  `json:"unique_locations"`
	TotalVisits     int64  `json:"total_visits"`
	AvgStay         string `json:"avg_stay"`
	Efficiency      string `json:"efficiency"`
	LastUpdate      string `json:"last_update"`
}

// NewHeader formats stats for display. Absent values are already zero.
func NewHeader(stats domain.CoverageStats, lastUpdate time.Time, loc *time.Location) Header {
	return Header{
		UniqueLocations: stats.UniqueLocationsCovered,
		TotalVisits:     stats.TotalVisits,
		AvgStay:         formatNumber(stats.AverageStayDuration) + "s",
		Efficiency:      formatNumber(stats.CoverageEfficiency) + "%",
		LastUpdate:      FormatClock(lastUpdate, loc),
	}
}

// FormatClock renders t as a 12-hour wall clock with a lowercase meridiem,
// the way en-IN locales print it: "3:04:05 pm".
func FormatClock(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("3:04:05 pm")
}

// LoadLocation resolves a zone name, falling back to UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Legend describes the low-to-high colour key.
type Legend struct {
	Title     string `json:"title"`
	LowColor  string `json:"low_color"`
	HighColor string `json:"high_color"`
}

// NewLegend derives the legend from the overlay gradient.
func NewLegend(opts domain.LayerOptions) Legend {
	return Legend{
		Title:     LegendTitle,
		LowColor:  opts.LowColor(),
		HighColor: opts.HighColor(),
	}
}

// MapConfig is everything the page needs to build the Leaflet map.
type MapConfig struct {
	Center             [2]float64    `json:"center"`
	Zoom               int           `json:"zoom"`
	MaxBounds          [2][2]float64 `json:"maxBounds"`
	MaxBoundsViscosity float64       `json:"maxBoundsViscosity"`
	TileURL            string        `json:"tileUrl"`
	Attribution        string        `json:"attribution"`
	Icons              IconSet       `json:"icons"`
}

// NewMapConfig returns the campaign map configuration.
func NewMapConfig() MapConfig {
	return MapConfig{
		Center:             [2]float64{geo.CampaignCenter.Latitude, geo.CampaignCenter.Longitude},
		Zoom:               geo.DefaultZoom,
		MaxBounds:          geo.CampaignBounds.LeafletBounds(),
		MaxBoundsViscosity: geo.MaxBoundsViscosity,
		TileURL:            TileURL,
		Attribution:        TileAttribution,
		Icons:              Icons(),
	}
}

// State is the JSON document served to browsers.
type State struct {
	Points  [][3]float64         `json:"points"`
	Stats   domain.CoverageStats `json:"stats"`
	View    domain.ViewState     `json:"view"`
	Header  Header               `json:"header"`
	Loading string               `json:"loading_text,omitempty"`
	Layer   domain.LayerOptions  `json:"layer"`
	Legend  Legend               `json:"legend"`
	Map     MapConfig            `json:"map"`
}

// NewState builds the browser document for state.
func NewState(state domain.DashboardState, opts domain.LayerOptions, loc *time.Location) State {
	s := State{
		Points: domain.Tuples(state.Points),
		Stats:  state.Stats,
		View:   state.View,
		Header: NewHeader(state.Stats, state.View.LastUpdate, loc),
		Layer:  opts,
		Legend: NewLegend(opts),
		Map:    NewMapConfig(),
	}
	if state.View.IsLoading {
		s.Loading = LoadingText
	}
	return s
}
