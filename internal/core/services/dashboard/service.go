package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/services/heatlayer"
	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
)

// DefaultPollInterval is the snapshot refresh period.
const DefaultPollInterval = 30 * time.Second

var (
	ErrAlreadyMounted = errors.New("dashboard already mounted")
	ErrNotMounted     = errors.New("dashboard not mounted")
	// ErrStale is returned when a result arrives after the mount that requested it ended.
	ErrStale = errors.New("dashboard result discarded: mount ended")
)

// Options tunes a Service.
type Options struct {
	PollInterval time.Duration
	// DedupeLive skips live points already displayed at the same spot.
	DedupeLive bool
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Service keeps the heatmap dashboard state in sync with the campaign API:
// a periodic snapshot poll replaces everything, live updates append.
type Service struct {
	api    ports.LocationAPI
	feed   ports.LiveFeed
	binder *heatlayer.Binder

	store     ports.SnapshotStore
	recorder  ports.SnapshotRecorder
	listeners []ports.StateListener

	interval time.Duration
	dedupe   bool
	now      func() time.Time
	log      *slog.Logger

	// pubMu orders publication: it is taken before mu and held while the
	// overlay is rebound and listeners run, so they observe changes in the
	// order they were applied without mu being held across view I/O.
	pubMu sync.Mutex

	mu       sync.RWMutex
	version  uint64
	points   []domain.HeatPoint
	keys     map[string]struct{}
	stats    domain.CoverageStats
	view     domain.ViewState
	inFlight int
	failures int
	polled   bool

	// generation is the lifetime token: bumped on every mount and unmount so
	// results belonging to an ended mount are recognisable.
	generation uint64
	mounted    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a dashboard service. It does nothing until Mount.
func New(api ports.LocationAPI, feed ports.LiveFeed, binder *heatlayer.Binder, opts Options) *Service {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		api:      api,
		feed:     feed,
		binder:   binder,
		interval: opts.PollInterval,
		dedupe:   opts.DedupeLive,
		now:      opts.Clock,
		log:      opts.Logger.With("component", "dashboard"),
		keys:     make(map[string]struct{}),
		view: domain.ViewState{
			IsLoading:  true,
			LastUpdate: opts.Clock(),
		},
	}
}

// SetStore enables warm starts from the latest persisted snapshot.
func (s *Service) SetStore(store ports.SnapshotStore) {
	s.store = store
}

// SetRecorder receives every successfully polled snapshot.
func (s *Service) SetRecorder(rec ports.SnapshotRecorder) {
	s.recorder = rec
}

// AddListener registers a listener. Call before Mount.
func (s *Service) AddListener(l ports.StateListener) {
	s.listeners = append(s.listeners, l)
}

// LayerOptions exposes the overlay configuration for rendering.
func (s *Service) LayerOptions() domain.LayerOptions {
	return s.binder.Options()
}

// CurrentLayer returns the installed overlay, if any.
func (s *Service) CurrentLayer() *domain.HeatLayer {
	return s.binder.Current()
}

// Mount starts the poll and live loops. They run until Unmount or until ctx ends.
func (s *Service) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.generation++
	gen := s.generation
	lifeCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mounted = true
	s.inFlight = 0
	s.view.IsLoading = true
	s.mu.Unlock()

	s.warmStart(lifeCtx, gen)

	s.wg.Add(2)
	go s.pollLoop(lifeCtx, gen)
	go s.listenLoop(lifeCtx, gen)

	s.log.Info("Dashboard mounted", "interval", s.interval, "dedupe", s.dedupe)
	return nil
}

// Unmount stops both loops, waits for them and releases the overlay.
// Results still in flight are discarded when they land.
func (s *Service) Unmount() error {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return ErrNotMounted
	}
	s.mounted = false
	s.generation++
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if err := s.binder.Close(); err != nil {
		s.log.Warn("Failed to release heat layer", "error", err)
	}
	s.log.Info("Dashboard unmounted")
	return nil
}

// Mounted reports whether the loops are running.
func (s *Service) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// State returns a consistent copy of the dashboard state.
func (s *Service) State() domain.DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Service) stateLocked() domain.DashboardState {
	points := make([]domain.HeatPoint, len(s.points))
	copy(points, s.points)
	return domain.DashboardState{
		Points:       points,
		Stats:        s.stats,
		View:         s.view,
		Version:      s.version,
		PollFailures: s.failures,
		Polled:       s.polled,
	}
}

// commit applies mutate to the state belonging to mount gen and publishes
// the result. mutate runs under mu and reports whether anything changed and
// whether the overlay must be rebuilt. Changes for an ended mount are dropped.
func (s *Service) commit(gen uint64, mutate func() (changed, rebind bool)) (domain.DashboardState, bool) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		return domain.DashboardState{}, false
	}
	changed, rebind := mutate()
	if !changed {
		s.mu.Unlock()
		return domain.DashboardState{}, false
	}
	s.version++
	state := s.stateLocked()
	s.mu.Unlock()

	if rebind {
		if err := s.binder.Bind(state.Points); err != nil {
			s.log.Error("Failed to bind heat layer", "error", err)
		}
	}
	for _, l := range s.listeners {
		l.OnStateChange(state)
	}
	return state, true
}

// currentLocked reports whether gen still identifies the active mount.
func (s *Service) currentLocked(gen uint64) bool {
	return s.mounted && gen == s.generation
}

func (s *Service) warmStart(ctx context.Context, gen uint64) {
	if s.store == nil {
		return
	}
	snap, err := s.store.LatestSnapshot(ctx)
	if err != nil {
		s.log.Warn("Warm start skipped", "error", err)
		return
	}
	if snap == nil {
		return
	}

	_, ok := s.commit(gen, func() (bool, bool) {
		s.replaceLocked(snap.Points, snap.Stats, snap.TakenAt)
		return true, true
	})
	if ok {
		s.log.Info("Warm start from snapshot", "id", snap.ID, "points", len(snap.Points), "taken_at", snap.TakenAt)
	}
}

// replaceLocked swaps in a full snapshot. The caller rebinds the overlay.
func (s *Service) replaceLocked(points []domain.HeatPoint, stats domain.CoverageStats, at time.Time) {
	owned := make([]domain.HeatPoint, len(points))
	copy(owned, points)

	s.points = owned
	s.stats = stats
	s.view.LastUpdate = at
	s.rebuildKeysLocked()
}

func (s *Service) rebuildKeysLocked() {
	if !s.dedupe {
		return
	}
	s.keys = make(map[string]struct{}, len(s.points))
	for _, p := range s.points {
		s.keys[pointKey(p)] = struct{}{}
	}
}

func pointKey(p domain.HeatPoint) string {
	return geo.Identity(geo.Location{Latitude: p.Latitude, Longitude: p.Longitude})
}
