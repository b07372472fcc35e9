//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/kommune-map/internal/config"
)

const testKommuner = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "3201", "properties": {"name": "Bærum"},
     "geometry": {"type": "Polygon", "coordinates": [[[10.4,59.8],[10.7,59.8],[10.7,60.0],[10.4,60.0],[10.4,59.8]]]}},
    {"type": "Feature", "id": "3203", "properties": {"name": "Asker"},
     "geometry": {"type": "Polygon", "coordinates": [[[10.2,59.7],[10.4,59.7],[10.4,59.8],[10.2,59.8],[10.2,59.7]]]}},
    {"type": "Feature", "id": "9999", "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[11.0,59.0],[11.2,59.0],[11.2,59.2],[11.0,59.2],[11.0,59.0]]]}}
  ]
}`

const testSkoler = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"navn": "Haslum skole"},
     "geometry": {"type": "Point", "coordinates": [10.55, 59.91]}},
    {"type": "Feature", "properties": {"navn": "Bekkestua skole"},
     "geometry": {"type": "Point", "coordinates": [10.58, 59.92]}},
    {"type": "Feature", "properties": {"navn": "Hvalstad skole"},
     "geometry": {"type": "Point", "coordinates": [10.30, 59.75]}}
  ]
}`

// testConfig writes the fixture layers into a temp dir and returns a config
// that points at them.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	regions := filepath.Join(dir, "kommuner.geojson")
	points := filepath.Join(dir, "skoler.geojson")
	require.NoError(t, os.WriteFile(regions, []byte(testKommuner), 0o644))
	require.NoError(t, os.WriteFile(points, []byte(testSkoler), 0o644))

	return &config.Config{
		Layers: config.LayersConfig{
			Regions: config.RegionSourceConfig{Source: regions, Format: "geojson", NameProperty: "name"},
			Points:  config.PointSourceConfig{Source: points, Format: "geojson", NameProperty: "navn"},
		},
		Selection: config.SelectionConfig{AccentName: "Bærum", FallbackName: "her er det ikke noe"},
		View:      config.ViewConfig{CenterLon: 9.7, CenterLat: 59.9, Zoom: 7.1},
		Fetch:     config.FetchConfig{TimeoutSecs: 5, MaxRetries: 1, RatePerSec: 5, TempDir: filepath.Join(dir, "tmp")},
		Summary:   config.SummaryConfig{Concurrency: 2},
		Server:    config.ServerConfig{Port: 8080},
		Cache:     config.CacheConfig{Enabled: true},
		Log:       config.LogConfig{Level: "info", Format: "console"},
	}
}

// withConfig swaps the package-level cfg for the duration of the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	old := cfg
	cfg = c
	t.Cleanup(func() { cfg = old })
}
