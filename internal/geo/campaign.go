package geo

// Lalganj constituency map defaults.
var (
	CampaignCenter = Location{Latitude: 25.8738, Longitude: 85.1797}
	CampaignBounds = NewBounds(
		Location{Latitude: 25.82, Longitude: 85.10},
		Location{Latitude: 25.90, Longitude: 85.25},
	)
)

// DefaultZoom is the initial map zoom.
const DefaultZoom = 13

// MaxBoundsViscosity of 1.0 makes the bounds fully solid when panning.
const MaxBoundsViscosity = 1.0
