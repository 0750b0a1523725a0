package ports

import (
	"context"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// LocationAPI is the campaign API the dashboard polls.
type LocationAPI interface {
	// FetchHeatmap retrieves the full heatmap snapshot.
	FetchHeatmap(ctx context.Context) ([]domain.HeatPoint, error)
	// FetchCoverageStats retrieves the coverage summary.
	FetchCoverageStats(ctx context.Context) (domain.CoverageStats, error)
}

// LiveFeed is the push channel carrying location updates.
type LiveFeed interface {
	// Subscribe blocks, delivering every location_update to handler until ctx
	// ends or the connection is lost for good. The connection is closed on return.
	Subscribe(ctx context.Context, handler func(domain.LocationUpdate)) error
}

// MapView is where heat overlays are installed.
type MapView interface {
	AddLayer(layer domain.HeatLayer) error
	RemoveLayer(id string) error
}

// StateListener is told about every applied dashboard change.
type StateListener interface {
	OnStateChange(state domain.DashboardState)
}

// SnapshotStore persists successful polls.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error)
	Close() error
}

// SnapshotRecorder accepts snapshots for background persistence.
type SnapshotRecorder interface {
	Record(snap domain.Snapshot)
}
