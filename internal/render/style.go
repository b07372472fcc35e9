// Package render turns the styled feature set into GeoJSON for a map client
// and caches the encoded layers per widget revision.
package render

import "github.com/sells-group/kommune-map/internal/feature"

// Paint is the drawing instruction for one feature. Zero fields are omitted.
type Paint struct {
	StrokeColor string  `json:"stroke_color,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	FillColor   string  `json:"fill_color,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
}

// RegionPaint maps a region style to paint.
func RegionPaint(s feature.RegionStyle) Paint {
	switch s {
	case feature.StyleHighlighted:
		return Paint{StrokeColor: "crimson", StrokeWidth: 3, FillColor: "gold"}
	case feature.StyleSelected:
		return Paint{StrokeColor: "darkgoldenrod", StrokeWidth: 3, FillColor: "gold"}
	default:
		return Paint{StrokeColor: "crimson", StrokeWidth: 5}
	}
}

// PointPaint maps a point style to paint. Hidden points draw with radius 0.
func PointPaint(s feature.PointStyle) Paint {
	if s == feature.StyleContained {
		return Paint{StrokeColor: "white", StrokeWidth: 2, FillColor: "blue", Radius: 6}
	}
	return Paint{}
}

func (p Paint) properties() map[string]any {
	props := make(map[string]any, 4)
	if p.StrokeColor != "" {
		props["stroke_color"] = p.StrokeColor
	}
	if p.StrokeWidth != 0 {
		props["stroke_width"] = p.StrokeWidth
	}
	if p.FillColor != "" {
		props["fill_color"] = p.FillColor
	}
	props["radius"] = p.Radius
	return props
}
