// Package feature holds the region and point layers of the map: the feature
// model, loaders for GeoJSON, shapefile and CSV sources, and the
// point-in-region test.
package feature

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RegionStyle is the display style of a region feature.
type RegionStyle int

// Region styles.
const (
	StyleDefault RegionStyle = iota
	StyleHighlighted
	StyleSelected
)

func (s RegionStyle) String() string {
	switch s {
	case StyleHighlighted:
		return "highlighted"
	case StyleSelected:
		return "selected"
	default:
		return "default"
	}
}

// PointStyle is the display style of a point feature.
type PointStyle int

// Point styles.
const (
	StyleHidden PointStyle = iota
	StyleContained
)

func (s PointStyle) String() string {
	if s == StyleContained {
		return "contained"
	}
	return "hidden"
}

// Region is a named polygon, e.g. a municipality boundary. Geometry may be nil
// and Name may be absent (Named false); both are fixed after load.
type Region struct {
	ID       string
	Name     string
	Named    bool
	Geometry orb.Geometry
	Style    RegionStyle

	bound orb.Bound
}

// NewRegion builds a region and precomputes its bounding box.
func NewRegion(id, name string, named bool, g orb.Geometry) Region {
	r := Region{ID: id, Name: normalizeName(name), Named: named, Geometry: g}
	if g != nil {
		r.bound = g.Bound()
	}
	return r
}

// Bound returns the precomputed bounding box of the region geometry.
func (r *Region) Bound() orb.Bound {
	return r.bound
}

// Contains reports whether pt lies inside the region. Points on the boundary
// count as inside. Regions without areal geometry contain nothing.
func (r *Region) Contains(pt orb.Point) bool {
	if r.Geometry == nil || !r.bound.Contains(pt) {
		return false
	}
	return Contains(r.Geometry, pt)
}

// Point is a point feature, e.g. a school. Only orb.Point geometries take
// part in containment; anything else is carried but never tested.
type Point struct {
	ID       string
	Name     string
	Geometry orb.Geometry
	Style    PointStyle
}

// Location returns the point coordinate and whether the geometry is a point.
func (p *Point) Location() (orb.Point, bool) {
	pt, ok := p.Geometry.(orb.Point)
	return pt, ok
}

// Set is the loaded feature set: the region layer and the optional point layer.
type Set struct {
	Regions []Region
	Points  []Point
}

// HasPoints reports whether a point layer is present.
func (s *Set) HasPoints() bool {
	return s != nil && s.Points != nil
}

// RegionByName returns the index of the first region with the given name,
// or -1 when none matches.
func (s *Set) RegionByName(name string) int {
	name = normalizeName(name)
	for i := range s.Regions {
		if s.Regions[i].Named && s.Regions[i].Name == name {
			return i
		}
	}
	return -1
}

// RegionsAt returns the indices, in layer order, of every region containing pt.
func RegionsAt(regions []Region, pt orb.Point) []int {
	var hits []int
	for i := range regions {
		if regions[i].Contains(pt) {
			hits = append(hits, i)
		}
	}
	return hits
}

// CountIn returns the number of point-geometry features inside region r.
func CountIn(r *Region, points []Point) int {
	n := 0
	for i := range points {
		pt, ok := points[i].Location()
		if ok && r.Contains(pt) {
			n++
		}
	}
	return n
}

// Contains is the planar point-in-geometry test for areal geometries.
func Contains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return false
		}
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) == 0 || len(p[0]) == 0 {
				continue
			}
			if planar.PolygonContains(p, pt) {
				return true
			}
		}
		return false
	case orb.Ring:
		if len(g) == 0 {
			return false
		}
		return planar.RingContains(g, pt)
	case orb.Bound:
		return g.Contains(pt)
	default:
		return false
	}
}
