package display

import (
	"strings"
	"sync"
)

// DefaultIconBase serves Leaflet's stock marker images.
const DefaultIconBase = "https://unpkg.com/leaflet@1.9.4/dist/images/"

// IconSet is the resolved default marker icon configuration.
type IconSet struct {
	IconURL       string `json:"iconUrl"`
	IconRetinaURL string `json:"iconRetinaUrl"`
	ShadowURL     string `json:"shadowUrl"`
}

var (
	iconsOnce sync.Once
	icons     IconSet
)

// InitIcons resolves the default marker icons against base. Only the first
// call has any effect; later calls return the set already in use.
func InitIcons(base string) IconSet {
	iconsOnce.Do(func() {
		icons = resolveIcons(base)
	})
	return icons
}

// Icons returns the configured icon set, initialising defaults if needed.
func Icons() IconSet {
	return InitIcons(DefaultIconBase)
}

func resolveIcons(base string) IconSet {
	if base == "" {
		base = DefaultIconBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return IconSet{
		IconURL:       base + "marker-icon.png",
		IconRetinaURL: base + "marker-icon-2x.png",
		ShadowURL:     base + "marker-shadow.png",
	}
}
