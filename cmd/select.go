package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/kommune-map/internal/feature"
	"github.com/sells-group/kommune-map/internal/widget"
)

var (
	selectLon  float64
	selectLat  float64
	selectName string
	selectJSON bool
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select a municipality by coordinate or name and print its school count",
	RunE: func(cmd *cobra.Command, args []string) error {
		hasCoord := cmd.Flags().Changed("lon") || cmd.Flags().Changed("lat")
		if hasCoord && !(cmd.Flags().Changed("lon") && cmd.Flags().Changed("lat")) {
			return eris.New("select: --lon and --lat must be given together")
		}
		if hasCoord == (selectName != "") {
			return eris.New("select: give either --lon/--lat or --name")
		}

		set, err := loadLayers(cmd.Context(), cfg, "select")
		if err != nil {
			return err
		}

		var at *orb.Point
		if hasCoord {
			at = &orb.Point{selectLon, selectLat}
		}
		w, err := runSelect(set, widgetOptions(cfg), at, selectName)
		if err != nil {
			return err
		}
		return printSelection(cmd.OutOrStdout(), w, selectJSON)
	},
}

// runSelect applies a click at the coordinate, or a by-name selection, to a
// widget without an event loop.
func runSelect(set *feature.Set, opts widget.Options, at *orb.Point, name string) (*widget.Widget, error) {
	w := widget.New(set, nil, opts)
	if at != nil {
		w.HandleClick(*at)
		return w, nil
	}
	if !w.SelectByName(name) {
		return nil, eris.Errorf("select: no municipality named %q", name)
	}
	return w, nil
}

func printSelection(out io.Writer, w *widget.Widget, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(out, w.Display().Heading)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		widget.State
		widget.Display
	}{w.State(), w.Display()})
}

func init() {
	f := selectCmd.Flags()
	f.Float64Var(&selectLon, "lon", 0, "longitude of the click")
	f.Float64Var(&selectLat, "lat", 0, "latitude of the click")
	f.StringVar(&selectName, "name", "", "municipality name to select")
	f.BoolVar(&selectJSON, "json", false, "print the widget state as JSON")
	rootCmd.AddCommand(selectCmd)
}
