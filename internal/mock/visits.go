package mock

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
)

const (
	// ProductiveStay is the minimum stay, in seconds, of a productive visit.
	ProductiveStay = 120
	// StatsWindowDays is how far back coverage stats look.
	StatsWindowDays = 7
	// gridSize snaps locations when counting unique coverage.
	gridSize = 0.001
)

// Visit is one recorded door-to-door stop.
type Visit struct {
	ID           int64
	UserID       int64
	Location     geo.Location
	Accuracy     *float64
	StayDuration int
	VisitType    string
	Notes        string
	CreatedAt    time.Time
}

// VisitStore keeps visits in memory and answers the campaign API queries.
type VisitStore struct {
	mu     sync.RWMutex
	visits []Visit
	nextID int64
	bounds geo.Bounds
}

// NewVisitStore creates an empty store scoped to the campaign bounds.
func NewVisitStore() *VisitStore {
	return &VisitStore{bounds: geo.CampaignBounds, nextID: 1}
}

// Add records a visit and returns it with its assigned ID.
func (s *VisitStore) Add(v Visit) Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID
	s.nextID++
	if v.VisitType == "" {
		v.VisitType = "door_to_door"
	}
	s.visits = append(s.visits, v)
	return v
}

// Len returns the number of stored visits.
func (s *VisitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}

type heatGroup struct {
	lat, lng float64
	stay     int
	count    int
	totalDur float64
	first    int
}

// HeatmapPoints groups in-bounds visits by location and stay, weighting each
// group by min(count*0.1 + avg_stay/300, 1). Busiest groups come first.
func (s *VisitStore) HeatmapPoints() []domain.HeatPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		lat, lng float64
		stay     int
	}
	groups := make(map[key]*heatGroup)
	for i, v := range s.visits {
		if !s.bounds.Contains(v.Location) {
			continue
		}
		k := key{v.Location.Latitude, v.Location.Longitude, v.StayDuration}
		g, ok := groups[k]
		if !ok {
			g = &heatGroup{lat: k.lat, lng: k.lng, stay: k.stay, first: i}
			groups[k] = g
		}
		g.count++
		g.totalDur += float64(v.StayDuration)
	}

	ordered := make([]*heatGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].first < ordered[j].first
	})

	points := make([]domain.HeatPoint, 0, len(ordered))
	for _, g := range ordered {
		points = append(points, domain.HeatPoint{
			Latitude:  g.lat,
			Longitude: g.lng,
			Intensity: Intensity(g.count, g.totalDur/float64(g.count)),
		})
	}
	return points
}

// Intensity weights a group of visits for the heat overlay.
func Intensity(count int, avgStay float64) float64 {
	return math.Min(float64(count)*0.1+avgStay/300, 1.0)
}

// CoverageStats summarises visits since the start of the day seven days ago.
func (s *VisitStore) CoverageStats(now time.Time) domain.CoverageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := now.Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -StatsWindowDays)

	cells := make(map[[2]int64]struct{})
	var total, productive int64
	var stay float64
	for _, v := range s.visits {
		if v.CreatedAt.Before(since) {
			continue
		}
		total++
		stay += float64(v.StayDuration)
		if v.StayDuration >= ProductiveStay {
			productive++
		}
		cells[snap(v.Location)] = struct{}{}
	}

	stats := domain.CoverageStats{
		UniqueLocationsCovered: int64(len(cells)),
		TotalVisits:            total,
		ProductiveVisits:       productive,
	}
	if total > 0 {
		stats.AverageStayDuration = round2(stay / float64(total))
		stats.CoverageEfficiency = round2(float64(productive) / float64(total) * 100)
	}
	return stats
}

func snap(loc geo.Location) [2]int64 {
	return [2]int64{
		int64(math.Round(loc.Latitude / gridSize)),
		int64(math.Round(loc.Longitude / gridSize)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
