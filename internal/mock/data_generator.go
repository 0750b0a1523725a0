package mock

import (
	"math/rand"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
)

// Neighbourhoods field teams work through, inside the campaign bounds.
var hotspots = []geo.Location{
	{Latitude: 25.8738, Longitude: 85.1797}, // town centre
	{Latitude: 25.8612, Longitude: 85.1433},
	{Latitude: 25.8855, Longitude: 85.2210},
	{Latitude: 25.8341, Longitude: 85.1186},
	{Latitude: 25.8520, Longitude: 85.2012},
}

var visitTypes = []string{"door_to_door", "door_to_door", "door_to_door", "rally", "follow_up"}

// Stay durations cluster around short doorstep chats with a productive tail.
var stayDurations = []int{0, 30, 45, 60, 90, 120, 150, 180, 240, 300}

// DataGenerator produces plausible field team visits.
type DataGenerator struct {
	rand    *rand.Rand
	bounds  geo.Bounds
	teams   int
	now     func() time.Time
	walkers []geo.Location
}

// NewDataGenerator creates a generator; seed 0 picks a random seed.
func NewDataGenerator(seed int64, teams int) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if teams <= 0 {
		teams = 4
	}
	g := &DataGenerator{
		rand:   rand.New(rand.NewSource(seed)),
		bounds: geo.CampaignBounds,
		teams:  teams,
		now:    time.Now,
	}
	for i := 0; i < teams; i++ {
		g.walkers = append(g.walkers, hotspots[i%len(hotspots)])
	}
	return g
}

// GenerateScenario seeds n visits spread over the last week.
func (g *DataGenerator) GenerateScenario(store *VisitStore, n int) {
	now := g.now()
	for i := 0; i < n; i++ {
		v := g.NextVisit()
		v.CreatedAt = now.Add(-time.Duration(g.rand.Int63n(int64(6 * 24 * time.Hour))))
		store.Add(v)
	}
}

// NextVisit moves one team a short step and records a stop there.
func (g *DataGenerator) NextVisit() Visit {
	team := g.rand.Intn(g.teams)

	// Occasionally a team relocates to another neighbourhood
	if g.rand.Float32() < 0.05 {
		g.walkers[team] = hotspots[g.rand.Intn(len(hotspots))]
	}

	// ~100m random walk
	step := g.bounds.Pan(g.walkers[team], (g.rand.Float64()-0.5)*0.002, (g.rand.Float64()-0.5)*0.002)
	g.walkers[team] = step

	// Round to ~10m so repeat visits to a house group together
	loc := geo.Location{
		Latitude:  float64(int64(step.Latitude*10000+0.5)) / 10000,
		Longitude: float64(int64(step.Longitude*10000+0.5)) / 10000,
	}

	accuracy := 5 + g.rand.Float64()*15
	return Visit{
		UserID:       int64(team + 1),
		Location:     loc,
		Accuracy:     &accuracy,
		StayDuration: stayDurations[g.rand.Intn(len(stayDurations))],
		VisitType:    visitTypes[g.rand.Intn(len(visitTypes))],
		CreatedAt:    g.now(),
	}
}
