// Package summary counts the points inside every region and ranks the
// regions by that count.
package summary

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/kommune-map/internal/feature"
)

// Options controls Count.
type Options struct {
	Concurrency  int
	AccentName   string
	FallbackName string
	// Limit caps the number of ranked rows returned; 0 means all.
	Limit int
}

// Row is one ranked region.
type Row struct {
	Rank        int    `json:"rank" yaml:"rank"`
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Count       int    `json:"count" yaml:"count"`
	Accent      bool   `json:"accent" yaml:"accent"`
	HasGeometry bool   `json:"has_geometry" yaml:"has_geometry"`
}

// Count computes, for every region, the number of point features it contains.
// It only reads geometry and never touches styles. Rows are ranked by count
// descending, then by name.
func Count(ctx context.Context, set *feature.Set, opts Options) ([]Row, error) {
	if set == nil {
		return nil, eris.New("summary: nil feature set")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	log := zap.L().With(zap.String("component", "summary"))
	rows := make([]Row, len(set.Regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range set.Regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := &set.Regions[i]

			name := opts.FallbackName
			if r.Named {
				name = r.Name
			}
			row := Row{
				ID:          r.ID,
				Name:        name,
				HasGeometry: r.Geometry != nil,
			}
			if row.HasGeometry {
				row.Count = feature.CountIn(r, set.Points)
			}
			if opts.AccentName != "" {
				row.Accent = feature.NormalizeName(name) == feature.NormalizeName(opts.AccentName)
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "summary: count")
	}

	Rank(rows)
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	log.Info("summary computed",
		zap.Int("regions", len(set.Regions)),
		zap.Int("points", len(set.Points)),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// Rank sorts rows by count descending, then name, then ID, and numbers them
// from 1.
func Rank(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}
