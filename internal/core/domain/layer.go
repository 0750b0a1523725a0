package domain

// GradientStop is one colour stop of the heat gradient.
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// LayerOptions is the fixed visual configuration of the heat overlay.
type LayerOptions struct {
	Radius   int            `json:"radius"`
	Blur     int            `json:"blur"`
	MaxZoom  int            `json:"maxZoom"`
	Gradient []GradientStop `json:"gradient"`
}

// DefaultLayerOptions returns the cool-to-warm campaign intensity configuration.
func DefaultLayerOptions() LayerOptions {
	return LayerOptions{
		Radius:  25,
		Blur:    15,
		MaxZoom: 17,
		Gradient: []GradientStop{
			{Offset: 0.0, Color: "#313695"},
			{Offset: 0.1, Color: "#4575b4"},
			{Offset: 0.2, Color: "#74add1"},
			{Offset: 0.4, Color: "#abd9e9"},
			{Offset: 0.6, Color: "#fee090"},
			{Offset: 0.8, Color: "#fdae61"},
			{Offset: 1.0, Color: "#d73027"},
		},
	}
}

// LowColor and HighColor are the gradient ends shown in the legend.
func (o LayerOptions) LowColor() string {
	if len(o.Gradient) == 0 {
		return ""
	}
	return o.Gradient[0].Color
}

func (o LayerOptions) HighColor() string {
	if len(o.Gradient) == 0 {
		return ""
	}
	return o.Gradient[len(o.Gradient)-1].Color
}

// HeatLayer is one installed overlay instance.
type HeatLayer struct {
	ID      string       `json:"id"`
	Points  [][3]float64 `json:"points"`
	Options LayerOptions `json:"options"`
}
