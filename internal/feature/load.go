package feature

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/config"
	"github.com/sells-group/kommune-map/internal/fetcher"
)

// Opener opens layer sources; *fetcher.Sources satisfies it.
type Opener interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
	Localize(ctx context.Context, source, dir string) (string, error)
}

// Load fetches and parses both layers described by cfg. The point layer is
// optional: an empty source leaves Set.Points nil.
func Load(ctx context.Context, cfg config.LayersConfig, src Opener, tempDir string) (*Set, error) {
	log := zap.L().With(zap.String("component", "feature.load"))

	regions, err := loadRegions(ctx, cfg.Regions, src, tempDir)
	if err != nil {
		return nil, err
	}
	log.Info("regions loaded",
		zap.String("source", cfg.Regions.Source),
		zap.Int("count", len(regions)),
	)

	set := &Set{Regions: regions}
	if cfg.Points.Source == "" {
		log.Info("no point layer configured")
		return set, nil
	}

	points, err := loadPoints(ctx, cfg.Points, src)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []Point{}
	}
	set.Points = points
	log.Info("points loaded",
		zap.String("source", cfg.Points.Source),
		zap.Int("count", len(points)),
	)

	return set, nil
}

func loadRegions(ctx context.Context, cfg config.RegionSourceConfig, src Opener, tempDir string) ([]Region, error) {
	switch strings.ToLower(cfg.Format) {
	case "", "geojson":
		data, err := readAll(ctx, src, cfg.Source)
		if err != nil {
			return nil, err
		}
		return ParseRegionsGeoJSON(data, cfg.NameProperty)

	case "shapefile":
		path, err := src.Localize(ctx, cfg.Source, tempDir)
		if err != nil {
			return nil, eris.Wrap(err, "feature: localize shapefile")
		}
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			if err := os.MkdirAll(tempDir, 0o755); err != nil {
				return nil, eris.Wrap(err, "feature: create temp dir")
			}
			dir, err := os.MkdirTemp(tempDir, "regions-")
			if err != nil {
				return nil, eris.Wrap(err, "feature: create extract dir")
			}
			defer os.RemoveAll(dir) //nolint:errcheck

			path, err = fetcher.ExtractShapefile(path, dir)
			if err != nil {
				return nil, eris.Wrap(err, "feature: extract shapefile")
			}
		}
		return ReadRegionsShapefile(path, cfg.NameProperty)

	default:
		return nil, eris.Errorf("feature: unsupported region format %q", cfg.Format)
	}
}

func loadPoints(ctx context.Context, cfg config.PointSourceConfig, src Opener) ([]Point, error) {
	switch strings.ToLower(cfg.Format) {
	case "", "geojson":
		data, err := readAll(ctx, src, cfg.Source)
		if err != nil {
			return nil, err
		}
		return ParsePointsGeoJSON(data, cfg.NameProperty)

	case "csv":
		rc, err := src.Open(ctx, cfg.Source)
		if err != nil {
			return nil, eris.Wrap(err, "feature: open points")
		}
		defer rc.Close() //nolint:errcheck

		records, err := fetcher.ReadRecords(ctx, rc, fetcher.CSVOptions{LazyQuotes: true})
		if err != nil {
			return nil, eris.Wrap(err, "feature: read points csv")
		}
		return PointsFromRecords(records, PointColumns{
			Lon:  cfg.LonColumn,
			Lat:  cfg.LatColumn,
			Name: cfg.NameProperty,
		})

	default:
		return nil, eris.Errorf("feature: unsupported point format %q", cfg.Format)
	}
}

func readAll(ctx context.Context, src Opener, source string) ([]byte, error) {
	rc, err := src.Open(ctx, source)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: open %s", source)
	}
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "feature: read %s", source)
	}
	return data, nil
}
