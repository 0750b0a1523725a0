package dashboard

import (
	"context"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/telemetry"
)

func (s *Service) listenLoop(ctx context.Context, gen uint64) {
	defer s.wg.Done()

	err := s.feed.Subscribe(ctx, func(u domain.LocationUpdate) {
		s.applyLive(gen, u)
	})
	if err != nil && ctx.Err() == nil {
		// Live updates stop here; polling carries on.
		s.log.Error("Live feed stopped", "error", err)
	}
}

// applyLive appends one pushed point. The collection is copied so every
// change produces a new slice for the overlay.
func (s *Service) applyLive(gen uint64, u domain.LocationUpdate) {
	p := u.Point()

	stale, duplicate := true, false
	state, ok := s.commit(gen, func() (bool, bool) {
		stale = false
		if s.dedupe {
			key := pointKey(p)
			if _, seen := s.keys[key]; seen {
				duplicate = true
				return false, false
			}
			s.keys[key] = struct{}{}
		}

		next := make([]domain.HeatPoint, len(s.points), len(s.points)+1)
		copy(next, s.points)
		s.points = append(next, p)
		s.view.LastUpdate = s.now()
		return true, true
	})

	switch {
	case stale:
		telemetry.LiveUpdates.WithLabelValues("stale").Inc()
		return
	case duplicate:
		telemetry.LiveUpdates.WithLabelValues("duplicate").Inc()
		return
	case !ok:
		return
	}

	telemetry.LiveUpdates.WithLabelValues("applied").Inc()
	telemetry.Points.Set(float64(len(state.Points)))
	s.log.Debug("New location received", "lat", p.Latitude, "lng", p.Longitude, "intensity", p.Intensity)
}
