package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
)

var _ ports.SnapshotRecorder = (*Recorder)(nil)

// Pruner is implemented by stores that can drop old history.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// Recorder writes polled snapshots to storage in the background so a slow
// disk never holds up the poll loop.
type Recorder struct {
	store    ports.SnapshotStore
	queue    chan domain.Snapshot
	keep     int
	interval time.Duration
	log      *slog.Logger
	done     chan struct{}
}

// NewRecorder creates a recorder. keep bounds the stored history; 0 keeps everything.
func NewRecorder(store ports.SnapshotStore, bufferSize, keep int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Recorder{
		store:    store,
		queue:    make(chan domain.Snapshot, bufferSize),
		keep:     keep,
		interval: 5 * time.Minute,
		log:      slog.Default().With("component", "persistence"),
		done:     make(chan struct{}),
	}
}

// Record queues a snapshot. It never blocks; when the queue is full the
// snapshot is dropped, the next poll supersedes it anyway.
func (r *Recorder) Record(snap domain.Snapshot) {
	select {
	case r.queue <- snap:
	default:
		r.log.Warn("snapshot queue full, dropping", "taken_at", snap.TakenAt)
	}
}

// Start runs the write loop until ctx is done, draining queued snapshots on exit.
func (r *Recorder) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)

	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.drain()
				return
			case snap := <-r.queue:
				r.save(context.Background(), snap)
			case <-ticker.C:
				r.prune(ctx)
			}
		}
	}()
}

// Wait blocks until the write loop started by Start has drained and exited.
func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) drain() {
	for {
		select {
		case snap := <-r.queue:
			r.save(context.Background(), snap)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, snap domain.Snapshot) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveSnapshot(ctx, snap); err != nil {
		r.log.Error("failed to save snapshot", "error", err)
	}
}

func (r *Recorder) prune(ctx context.Context) {
	p, ok := r.store.(Pruner)
	if !ok || r.keep <= 0 {
		return
	}
	n, err := p.Prune(ctx, r.keep)
	if err != nil {
		r.log.Error("failed to prune snapshots", "error", err)
		return
	}
	if n > 0 {
		r.log.Debug("pruned snapshots", "removed", n)
	}
}
