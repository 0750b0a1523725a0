package heatlayer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
)

// Binder owns the single heat overlay installed on a map view.
// At most one overlay is installed at any time: the previous one is always
// removed before a replacement goes in.
type Binder struct {
	view    ports.MapView
	options domain.LayerOptions

	mu      sync.Mutex
	current *domain.HeatLayer
	newID   func() string
}

// NewBinder creates a binder with the fixed campaign layer options.
func NewBinder(view ports.MapView) *Binder {
	return &Binder{
		view:    view,
		options: domain.DefaultLayerOptions(),
		newID:   func() string { return uuid.NewString() },
	}
}

// Options returns the visual configuration used for every overlay.
func (b *Binder) Options() domain.LayerOptions {
	return b.options
}

// BuildTuples converts points into [lat, lng, intensity] rows.
func BuildTuples(points []domain.HeatPoint) [][3]float64 {
	return domain.Tuples(points)
}

// Bind replaces the installed overlay with one built from points.
// An empty point set leaves the map without an overlay.
func (b *Binder) Bind(points []domain.HeatPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.releaseLocked(); err != nil {
		return err
	}

	if len(points) == 0 {
		return nil
	}

	layer := domain.HeatLayer{
		ID:      b.newID(),
		Points:  BuildTuples(points),
		Options: b.options,
	}
	if err := b.view.AddLayer(layer); err != nil {
		return fmt.Errorf("install heat layer: %w", err)
	}
	b.current = &layer
	telemetry.LayerRebuilds.Inc()
	return nil
}

// Current returns a copy of the installed overlay, or nil.
func (b *Binder) Current() *domain.HeatLayer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	c := *b.current
	return &c
}

// Close removes the installed overlay. Calling it twice is harmless.
func (b *Binder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.releaseLocked()
}

func (b *Binder) releaseLocked() error {
	if b.current == nil {
		return nil
	}
	id := b.current.ID
	b.current = nil
	if err := b.view.RemoveLayer(id); err != nil {
		return fmt.Errorf("remove heat layer %s: %w", id, err)
	}
	return nil
}
