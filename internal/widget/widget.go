package widget

import (
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/feature"
	"github.com/sells-group/kommune-map/internal/mapview"
)

// Display strings.
const (
	PromptHeading = "Klikk på en kommune for å begynne!"
	ToggleLabel   = "Skru av/på kommuner"
	ColorAccent   = "gold"
	ColorNormal   = "black"
)

// State is the widget-local state.
type State struct {
	Selection      Selection `json:"selection"`
	RegionsVisible bool      `json:"regions_visible"`
	Revision       uint64    `json:"revision"`
}

// Display is the text and colour the widget shows above the map.
type Display struct {
	Heading      string `json:"heading"`
	HeadingColor string `json:"heading_color"`
	ToggleLabel  string `json:"toggle_label"`
}

// DisplayFor renders the heading for a selection.
func DisplayFor(sel Selection) Display {
	d := Display{
		Heading:      PromptHeading,
		HeadingColor: ColorNormal,
		ToggleLabel:  ToggleLabel,
	}
	if sel.Selected {
		d.Heading = fmt.Sprintf("Det er %d skoler i %s kommune.", sel.Count, sel.Name)
	}
	if sel.Accent {
		d.HeadingColor = ColorAccent
	}
	return d
}

// Widget applies hover and selection to a feature set. It is not safe for
// concurrent use; when bound to a view every call must run on the view's
// event goroutine (handlers do, HTTP callers go through View.Do).
type Widget struct {
	set   *feature.Set
	view  *mapview.View
	opts  Options
	state State
	log   *zap.Logger
}

// New creates a widget over set. When view is non-nil the widget registers
// its pointer-move and click handlers on it.
func New(set *feature.Set, view *mapview.View, opts Options) *Widget {
	w := &Widget{
		set:   set,
		view:  view,
		opts:  opts.withDefaults(),
		state: State{RegionsVisible: true},
		log:   zap.L().With(zap.String("component", "widget")),
	}
	if view != nil {
		view.SetLayerVisible(mapview.LayerRegions, true)
		view.On(mapview.PointerMove, func(ev mapview.Event) { w.HandlePointerMove(ev.Coordinate) })
		view.On(mapview.Click, func(ev mapview.Event) { w.HandleClick(ev.Coordinate) })
	}
	return w
}

// Set returns the feature set the widget styles.
func (w *Widget) Set() *feature.Set {
	return w.set
}

// State returns a copy of the widget state.
func (w *Widget) State() State {
	return w.state
}

// Display returns the current heading and toggle label.
func (w *Widget) Display() Display {
	return DisplayFor(w.state.Selection)
}

// HandlePointerMove highlights the regions under at. No-op while the region
// layer is hidden.
func (w *Widget) HandlePointerMove(at orb.Point) {
	if !w.state.RegionsVisible {
		return
	}
	if w.applyRegions(Hover(w.set.Regions, at)) {
		w.state.Revision++
	}
}

// HandleClick selects the region under at. Clicks outside every region
// change nothing. Clicks are honoured while the region layer is hidden.
func (w *Widget) HandleClick(at orb.Point) {
	hits := feature.RegionsAt(w.set.Regions, at)
	if len(hits) == 0 {
		w.log.Debug("click outside all regions",
			zap.Float64("lon", at[0]),
			zap.Float64("lat", at[1]),
		)
		return
	}
	w.apply(Select(w.set, hits, w.opts, w.state.Selection))
}

// SelectByName selects the first region with the given name. Reports false
// when no region matches.
func (w *Widget) SelectByName(name string) bool {
	idx := w.set.RegionByName(name)
	if idx < 0 {
		w.log.Debug("select by name: no such region", zap.String("name", name))
		return false
	}
	if w.set.Regions[idx].Geometry == nil {
		w.log.Debug("select by name: region has no geometry", zap.String("name", name))
	}
	w.apply(Select(w.set, []int{idx}, w.opts, w.state.Selection))
	return true
}

// ToggleRegions flips region layer visibility and returns the new value.
func (w *Widget) ToggleRegions() bool {
	w.state.RegionsVisible = !w.state.RegionsVisible
	if w.view != nil {
		w.view.SetLayerVisible(mapview.LayerRegions, w.state.RegionsVisible)
	}
	w.state.Revision++
	w.log.Debug("region layer toggled", zap.Bool("visible", w.state.RegionsVisible))
	return w.state.RegionsVisible
}

func (w *Widget) apply(u Update) {
	if !u.Changed {
		return
	}
	w.state.Selection = u.Selection
	w.applyRegions(u.Regions)
	for _, c := range u.Points {
		w.set.Points[c.Index].Style = c.Style
	}
	w.state.Revision++

	w.log.Debug("region selected",
		zap.String("name", u.Selection.Name),
		zap.Int("count", u.Selection.Count),
		zap.Bool("accent", u.Selection.Accent),
	)
}

// applyRegions applies region style changes and reports whether any style
// actually changed.
func (w *Widget) applyRegions(changes []StyleChange) bool {
	changed := false
	for _, c := range changes {
		r := &w.set.Regions[c.Index]
		if r.Style != c.Style {
			r.Style = c.Style
			changed = true
		}
	}
	return changed
}
