package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Ensure compliance
var _ ports.SnapshotStore = (*SQLiteAdapter)(nil)

// SQLiteAdapter implements ports.SnapshotStore using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// SnapshotModel is the GORM model for one successful poll.
type SnapshotModel struct {
	ID         string    `gorm:"primaryKey"`
	TakenAt    time.Time `gorm:"index"`
	PointCount int

	// Coverage stats
	UniqueLocations  int64
	TotalVisits      int64
	AvgStayDuration  float64
	Efficiency       float64
	ProductiveVisits int64

	// Points is the JSON encoded [lat, lng, intensity] rows
	Points string
}

// NewSQLiteAdapter opens the database, migrates the schema and enables tracing.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newAdapter(db)
}

func newAdapter(db *gorm.DB) (*SQLiteAdapter, error) {
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("enable db tracing: %w", err)
	}
	if err := db.AutoMigrate(&SnapshotModel{}); err != nil {
		return nil, err
	}
	return &SQLiteAdapter{db: db}, nil
}

// SaveSnapshot stores a snapshot, assigning an ID when it has none.
func (a *SQLiteAdapter) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	model, err := toModel(snap)
	if err != nil {
		return err
	}
	return a.db.WithContext(ctx).Create(&model).Error
}

// LatestSnapshot returns the most recent snapshot, or nil when none exists.
func (a *SQLiteAdapter) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var model SnapshotModel
	err := a.db.WithContext(ctx).Order("taken_at desc").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomain(model)
}

// ListSnapshots returns summaries, newest first.
func (a *SQLiteAdapter) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []SnapshotModel
	err := a.db.WithContext(ctx).
		Omit("points").
		Order("taken_at desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.SnapshotSummary, len(models))
	for i, m := range models {
		out[i] = toSummary(m)
	}
	return out, nil
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (a *SQLiteAdapter) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	newest := a.db.Model(&SnapshotModel{}).Select("id").Order("taken_at desc").Limit(keep)
	res := a.db.WithContext(ctx).Where("id NOT IN (?)", newest).Delete(&SnapshotModel{})
	return res.RowsAffected, res.Error
}

// Close closes the storage connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
