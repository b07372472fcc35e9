package feature

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/fetcher"
)

// PointColumns names the CSV columns of a point source.
type PointColumns struct {
	Lon  string
	Lat  string
	Name string
}

// PointsFromRecords converts CSV records into point features. Rows whose
// coordinates do not parse are skipped.
func PointsFromRecords(records []fetcher.Record, cols PointColumns) ([]Point, error) {
	if cols.Lon == "" || cols.Lat == "" {
		return nil, eris.New("feature: lon and lat columns are required")
	}

	points := make([]Point, 0, len(records))
	var skipped int
	for i, rec := range records {
		lon, lonErr := parseCoord(rec, cols.Lon)
		lat, latErr := parseCoord(rec, cols.Lat)
		if lonErr != nil || latErr != nil {
			skipped++
			continue
		}

		var name string
		if cols.Name != "" {
			name, _ = rec.Get(cols.Name)
		}

		points = append(points, Point{
			ID:       featureID(nil, "point", i),
			Name:     normalizeName(name),
			Geometry: orb.Point{lon, lat},
		})
	}

	if skipped > 0 {
		zap.L().Warn("feature: skipped csv rows with bad coordinates", zap.Int("skipped", skipped))
	}
	return points, nil
}

func parseCoord(rec fetcher.Record, column string) (float64, error) {
	v, ok := rec.Get(column)
	if !ok || v == "" {
		return 0, eris.Errorf("feature: missing column %q", column)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "feature: parse %s", column)
	}
	return f, nil
}
