package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/config"
	"github.com/sells-group/kommune-map/internal/feature"
	"github.com/sells-group/kommune-map/internal/fetcher"
	"github.com/sells-group/kommune-map/internal/widget"
)

// loadLayers validates cfg for mode and loads both feature layers.
func loadLayers(ctx context.Context, c *config.Config, mode string) (*feature.Set, error) {
	if c == nil {
		return nil, eris.New("config not loaded")
	}
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	src := fetcher.NewSources(
		fetcher.HTTPOptions{
			UserAgent:  c.Fetch.UserAgent,
			Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: c.Fetch.MaxRetries,
			RatePerSec: c.Fetch.RatePerSec,
		},
		fetcher.FTPOptions{
			Timeout: time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		},
	)

	start := time.Now()
	set, err := feature.Load(ctx, c.Layers, src, c.Fetch.TempDir)
	if err != nil {
		return nil, eris.Wrap(err, "load layers")
	}

	zap.L().Info("layers loaded",
		zap.Int("regions", len(set.Regions)),
		zap.Int("points", len(set.Points)),
		zap.Bool("has_points", set.HasPoints()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return set, nil
}

func widgetOptions(c *config.Config) widget.Options {
	return widget.Options{
		AccentName:   c.Selection.AccentName,
		FallbackName: c.Selection.FallbackName,
	}
}
