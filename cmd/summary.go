package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/summary"
)

var (
	summaryFormat string
	summaryOut    string
	summaryLimit  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Rank every municipality by the number of schools it contains",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(summaryFormat)
		if format == summary.FormatXLSX && summaryOut == "" {
			return eris.New("summary: --format xlsx requires --out")
		}

		set, err := loadLayers(cmd.Context(), cfg, "summary")
		if err != nil {
			return err
		}

		rows, err := summary.Count(cmd.Context(), set, summary.Options{
			Concurrency:  cfg.Summary.Concurrency,
			AccentName:   cfg.Selection.AccentName,
			FallbackName: cfg.Selection.FallbackName,
			Limit:        summaryLimit,
		})
		if err != nil {
			return err
		}

		if format == summary.FormatXLSX {
			if err := summary.WriteXLSX(summaryOut, rows); err != nil {
				return err
			}
			zap.L().Info("summary written", zap.String("path", summaryOut), zap.Int("rows", len(rows)))
			return nil
		}
		return summary.Write(cmd.OutOrStdout(), format, rows)
	},
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryFormat, "format", "table", "output format: table, json, yaml or xlsx")
	f.StringVar(&summaryOut, "out", "", "output file (required for xlsx)")
	f.IntVar(&summaryLimit, "limit", 0, "maximum number of rows (0 = all)")
	rootCmd.AddCommand(summaryCmd)
}
