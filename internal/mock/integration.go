package mock

import (
	"context"
	"log"
	"net"
	"time"
)

// DefaultSimulateEvery is the pause between simulated visits in mock mode.
const DefaultSimulateEvery = 5 * time.Second

// Options configures the in-process mock campaign API.
type Options struct {
	Addr string
	// SeedVisits is the number of historical visits generated at start.
	SeedVisits int
	// SimulateEvery is the pause between simulated live visits; zero disables them.
	SimulateEvery time.Duration
	Seed          int64
}

// MockIntegration runs the mock campaign API with simulated field teams.
type MockIntegration struct {
	opts      Options
	store     *VisitStore
	server    *CampaignServer
	generator *DataGenerator
}

// NewMockIntegration creates a new mock integration
func NewMockIntegration(opts Options) *MockIntegration {
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	store := NewVisitStore()
	gen := NewDataGenerator(opts.Seed, 4)
	gen.GenerateScenario(store, opts.SeedVisits)

	log.Printf("Initializing mock campaign API with %d visits", store.Len())

	return &MockIntegration{
		opts:      opts,
		store:     store,
		server:    NewCampaignServer(store),
		generator: gen,
	}
}

// Server returns the underlying campaign server.
func (m *MockIntegration) Server() *CampaignServer {
	return m.server
}

// Run listens on the configured address until ctx ends.
func (m *MockIntegration) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", m.opts.Addr)
	if err != nil {
		return err
	}
	return m.Serve(ctx, lis)
}

// Serve is Run on an existing listener.
func (m *MockIntegration) Serve(ctx context.Context, lis net.Listener) error {
	if m.opts.SimulateEvery > 0 {
		go m.simulate(ctx)
	}
	return m.server.Serve(ctx, lis)
}

// simulate records a generated visit on every tick.
func (m *MockIntegration) simulate(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SimulateEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.server.Record(m.generator.NextVisit()); err != nil {
				log.Printf("Mock visit rejected: %v", err)
			}
		}
	}
}
