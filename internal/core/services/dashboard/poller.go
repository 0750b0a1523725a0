package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Refresh runs one snapshot poll against the current mount.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.RLock()
	gen, mounted := s.generation, s.mounted
	s.mu.RUnlock()
	if !mounted {
		return ErrNotMounted
	}
	return s.refresh(ctx, gen)
}

func (s *Service) pollLoop(ctx context.Context, gen uint64) {
	defer s.wg.Done()

	// First fetch happens right away, then on every tick.
	_ = s.refresh(ctx, gen)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.refresh(ctx, gen)
		}
	}
}

// refresh fetches the heatmap snapshot and then, only once it resolved, the
// coverage stats. State changes only when both succeed. No retry.
func (s *Service) refresh(ctx context.Context, gen uint64) error {
	ctx, span := otel.Tracer("dashboard").Start(ctx, "Refresh")
	defer span.End()

	start := time.Now()
	s.setLoading(gen, +1)
	defer s.setLoading(gen, -1)

	points, err := s.api.FetchHeatmap(ctx)
	if err != nil {
		err = fmt.Errorf("fetch heatmap: %w", err)
		s.pollFailed(ctx, gen, "heatmap_error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "heatmap fetch failed")
		return err
	}

	stats, err := s.api.FetchCoverageStats(ctx)
	if err != nil {
		err = fmt.Errorf("fetch coverage stats: %w", err)
		s.pollFailed(ctx, gen, "stats_error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "stats fetch failed")
		return err
	}

	span.SetAttributes(attribute.Int("heatmap.points", len(points)))
	telemetry.PollDuration.Observe(time.Since(start).Seconds())

	if !s.applySnapshot(gen, points, stats) {
		return ErrStale
	}
	telemetry.Polls.WithLabelValues("ok").Inc()
	return nil
}

func (s *Service) setLoading(gen uint64, delta int) {
	s.commit(gen, func() (bool, bool) {
		s.inFlight = max(s.inFlight+delta, 0)
		loading := s.inFlight > 0
		if loading == s.view.IsLoading {
			return false, false
		}
		s.view.IsLoading = loading
		return true, false
	})
}

func (s *Service) pollFailed(ctx context.Context, gen uint64, result string, err error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		s.log.Debug("Poll cancelled", "error", err)
		return
	}

	telemetry.Polls.WithLabelValues(result).Inc()
	s.log.Error("Failed to fetch heatmap data", "error", err)

	s.commit(gen, func() (bool, bool) {
		s.failures++
		return true, false
	})
}

func (s *Service) applySnapshot(gen uint64, points []domain.HeatPoint, stats domain.CoverageStats) bool {
	now := s.now()

	state, ok := s.commit(gen, func() (bool, bool) {
		s.replaceLocked(points, stats, now)
		s.failures = 0
		s.polled = true
		return true, true
	})
	if !ok {
		s.log.Debug("Discarding snapshot from ended mount", "points", len(points))
		return false
	}

	telemetry.Points.Set(float64(len(state.Points)))
	s.log.Debug("Snapshot applied", "points", len(state.Points), "visits", stats.TotalVisits)

	if s.recorder != nil {
		s.recorder.Record(domain.Snapshot{
			TakenAt: now,
			Points:  state.Points,
			Stats:   stats,
		})
	}
	return true
}
