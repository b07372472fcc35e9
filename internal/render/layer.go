package render

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"

	"github.com/sells-group/kommune-map/internal/feature"
	"github.com/sells-group/kommune-map/internal/mapview"
)

// Layers that can be rendered.
var Layers = []string{mapview.LayerRegions, mapview.LayerPoints}

// ErrUnknownLayer is returned for layer names other than regions and points.
var ErrUnknownLayer = eris.New("render: unknown layer")

// Layer builds a styled FeatureCollection for the named layer. Each feature
// carries name, style and paint properties. Features without geometry are
// left out.
func Layer(set *feature.Set, name string) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	switch name {
	case mapview.LayerRegions:
		for i := range set.Regions {
			r := &set.Regions[i]
			if r.Geometry == nil {
				continue
			}
			f := geojson.NewFeature(r.Geometry)
			f.ID = r.ID
			if r.Named {
				f.Properties["name"] = r.Name
			}
			f.Properties["style"] = r.Style.String()
			f.Properties["paint"] = RegionPaint(r.Style).properties()
			fc.Append(f)
		}
	case mapview.LayerPoints:
		for i := range set.Points {
			p := &set.Points[i]
			if p.Geometry == nil {
				continue
			}
			f := geojson.NewFeature(p.Geometry)
			f.ID = p.ID
			if p.Name != "" {
				f.Properties["name"] = p.Name
			}
			f.Properties["style"] = p.Style.String()
			f.Properties["paint"] = PointPaint(p.Style).properties()
			fc.Append(f)
		}
	default:
		return nil, eris.Wrapf(ErrUnknownLayer, "render: layer %q", name)
	}

	return fc, nil
}

// Encode renders the named layer to GeoJSON bytes.
func Encode(set *feature.Set, name string) ([]byte, error) {
	fc, err := Layer(set, name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal layer")
	}
	return data, nil
}
