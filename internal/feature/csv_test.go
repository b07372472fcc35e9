package feature

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kommune-map/internal/fetcher"
)

func TestPointsFromRecords(t *testing.T) {
	records := []fetcher.Record{
		{"navn": "Haslum skole", "lon": "10.55", "lat": "59.91"},
		{"navn": "Ugyldig", "lon": "abc", "lat": "59.91"},
		{"navn": "Mangler", "lon": "10.1"},
		{"lon": "10.30", "lat": "59.80"},
	}

	points, err := PointsFromRecords(records, PointColumns{Lon: "lon", Lat: "lat", Name: "navn"})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "Haslum skole", points[0].Name)
	assert.Equal(t, "point-0", points[0].ID)
	assert.Equal(t, orb.Point{10.55, 59.91}, points[0].Geometry)

	assert.Equal(t, "", points[1].Name)
	assert.Equal(t, "point-3", points[1].ID)
}

func TestPointsFromRecords_ColumnsRequired(t *testing.T) {
	_, err := PointsFromRecords(nil, PointColumns{Lon: "lon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lon and lat columns are required")
}

func TestPointsFromRecords_CaseInsensitiveColumns(t *testing.T) {
	records := []fetcher.Record{{"x": "1", "y": "2"}}
	points, err := PointsFromRecords(records, PointColumns{Lon: "X", Lat: "Y"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, orb.Point{1, 2}, points[0].Geometry)
}
