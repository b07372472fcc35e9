// Package widget implements the map selection widget: hover highlighting,
// click selection with a count of the points inside the selected region, an
// accent flag for one configured region name, and region layer visibility.
package widget

import (
	"github.com/paulmach/orb"

	"github.com/sells-group/kommune-map/internal/feature"
)

// Defaults for Options.
const (
	DefaultAccentName   = "Bærum"
	DefaultFallbackName = "her er det ikke noe"
)

// Options holds the display constants of the widget.
type Options struct {
	AccentName   string
	FallbackName string
}

func (o Options) withDefaults() Options {
	if o.AccentName == "" {
		o.AccentName = DefaultAccentName
	}
	if o.FallbackName == "" {
		o.FallbackName = DefaultFallbackName
	}
	return o
}

// Selection is the current selection. Count and Accent describe the last
// selected region that had a geometry.
type Selection struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Count    int    `json:"count"`
	Accent   bool   `json:"accent"`
}

// StyleChange sets the style of the region at Index.
type StyleChange struct {
	Index int
	Style feature.RegionStyle
}

// PointChange sets the style of the point at Index.
type PointChange struct {
	Index int
	Style feature.PointStyle
}

// Update is the result of a selection: the new selection and the style
// changes to apply. Changed is false when nothing was under the click.
type Update struct {
	Selection Selection
	Regions   []StyleChange
	Points    []PointChange
	Changed   bool
}

// Hover returns a style change for every region: highlighted where the region
// contains at, default everywhere else.
func Hover(regions []feature.Region, at orb.Point) []StyleChange {
	changes := make([]StyleChange, len(regions))
	for i := range regions {
		changes[i] = StyleChange{Index: i, Style: feature.StyleDefault}
	}
	for _, i := range feature.RegionsAt(regions, at) {
		changes[i].Style = feature.StyleHighlighted
	}
	return changes
}

// Select computes the selection for the regions at indices hits, processed in
// order so the last one wins. A region without geometry updates only the
// name; count, point styles and accent keep their previous values.
func Select(set *feature.Set, hits []int, opts Options, prev Selection) Update {
	if len(hits) == 0 {
		return Update{Selection: prev}
	}
	opts = opts.withDefaults()

	sel := prev
	var points []PointChange
	selected := -1

	for _, idx := range hits {
		if idx < 0 || idx >= len(set.Regions) {
			continue
		}
		r := &set.Regions[idx]
		selected = idx

		sel.Selected = true
		sel.Name = opts.FallbackName
		if r.Named {
			sel.Name = r.Name
		}

		if r.Geometry == nil {
			continue
		}

		points, sel.Count = containment(r, set.Points)
		sel.Accent = feature.NormalizeName(sel.Name) == feature.NormalizeName(opts.AccentName)
	}

	if selected < 0 {
		return Update{Selection: prev}
	}

	regions := make([]StyleChange, len(set.Regions))
	for i := range set.Regions {
		regions[i] = StyleChange{Index: i, Style: feature.StyleDefault}
	}
	regions[selected].Style = feature.StyleSelected

	return Update{
		Selection: sel,
		Regions:   regions,
		Points:    points,
		Changed:   true,
	}
}

// containment styles every point-geometry feature by whether r contains it and
// returns the contained total. Other geometries get no change.
func containment(r *feature.Region, points []feature.Point) ([]PointChange, int) {
	changes := make([]PointChange, 0, len(points))
	count := 0
	for i := range points {
		pt, ok := points[i].Location()
		if !ok {
			continue
		}
		style := feature.StyleHidden
		if r.Contains(pt) {
			style = feature.StyleContained
			count++
		}
		changes = append(changes, PointChange{Index: i, Style: style})
	}
	return changes, count
}
