package feature

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ParseRegionsGeoJSON parses a FeatureCollection into regions, reading the
// name from nameProp. Features with a null geometry are kept.
func ParseRegionsGeoJSON(data []byte, nameProp string) ([]Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "feature: parse regions geojson")
	}

	regions := make([]Region, 0, len(fc.Features))
	var missingGeom int
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		name, named := stringProp(f.Properties, nameProp)
		if f.Geometry == nil {
			missingGeom++
		}
		regions = append(regions, NewRegion(featureID(f.ID, "region", i), name, named, f.Geometry))
	}

	zap.L().Debug("feature: regions parsed",
		zap.Int("regions", len(regions)),
		zap.Int("missing_geometry", missingGeom),
	)
	return regions, nil
}

// ParsePointsGeoJSON parses a FeatureCollection into point features. Non-point
// geometries are kept but never take part in containment.
func ParsePointsGeoJSON(data []byte, nameProp string) ([]Point, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "feature: parse points geojson")
	}

	points := make([]Point, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		name, _ := stringProp(f.Properties, nameProp)
		points = append(points, Point{
			ID:       featureID(f.ID, "point", i),
			Name:     normalizeName(name),
			Geometry: f.Geometry,
		})
	}

	zap.L().Debug("feature: points parsed", zap.Int("points", len(points)))
	return points, nil
}
