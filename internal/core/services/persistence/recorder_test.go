package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

// MockStorage implements ports.SnapshotStore and Pruner for testing
type MockStorage struct {
	mu     sync.Mutex
	saved  []domain.Snapshot
	prunes []int
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, snap)
	return nil
}

func (m *MockStorage) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) { return nil, nil }
func (m *MockStorage) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	return nil, nil
}
func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) Prune(ctx context.Context, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunes = append(m.prunes, keep)
	return 0, nil
}

func (m *MockStorage) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *MockStorage) pruneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prunes)
}

func TestRecorder_SavesInBackground(t *testing.T) {
	store := &MockStorage{}
	rec := NewRecorder(store, 4, 0)
	rec.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Record(domain.Snapshot{ID: "a"})
	rec.Record(domain.Snapshot{ID: "b"})

	assert.Eventually(t, func() bool { return store.savedCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	rec := NewRecorder(&MockStorage{}, 1, 0)

	rec.Record(domain.Snapshot{ID: "a"})
	rec.Record(domain.Snapshot{ID: "b"})
	assert.Len(t, rec.queue, 1)
}

func TestRecorder_DrainsOnShutdown(t *testing.T) {
	store := &MockStorage{}
	rec := NewRecorder(store, 4, 0)
	rec.interval = time.Hour

	rec.Record(domain.Snapshot{ID: "a"})
	rec.Record(domain.Snapshot{ID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Start(ctx)
	rec.Wait()

	assert.Equal(t, 2, store.savedCount())
}

func TestRecorder_PrunesOnTimer(t *testing.T) {
	store := &MockStorage{}
	rec := NewRecorder(store, 4, 10)
	rec.interval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	assert.Eventually(t, func() bool { return store.pruneCount() > 0 }, time.Second, 10*time.Millisecond)
	store.mu.Lock()
	assert.Equal(t, 10, store.prunes[0])
	store.mu.Unlock()
}
