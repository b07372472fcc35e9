// Package mapview is a headless map view: it holds the view centre and zoom,
// the ordered layer list with visibility, and dispatches pointer events to
// registered handlers on a single event goroutine.
package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/config"
)

// Layer names.
const (
	LayerBase    = "osm"
	LayerRegions = "regions"
	LayerPoints  = "points"
)

// ErrStopped is returned by Post and Do once the event loop has exited.
var ErrStopped = eris.New("mapview: event loop stopped")

// EventKind identifies the kind of input event.
type EventKind string

// Event kinds.
const (
	PointerMove EventKind = "pointermove"
	Click       EventKind = "click"
)

// Event is a pointer event at a map coordinate (lon, lat).
type Event struct {
	ID         string
	Kind       EventKind
	Coordinate orb.Point
	Time       time.Time
}

// Handler handles one event. Handlers run on the event goroutine.
type Handler func(ev Event)

// Layer is a named map layer and its visibility.
type Layer struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Snapshot is a copy of the view state.
type Snapshot struct {
	Center [2]float64 `json:"center"`
	Zoom   float64    `json:"zoom"`
	Layers []Layer    `json:"layers"`
}

type request struct {
	fn   func()
	done chan struct{}
}

// View is the map view. Create with New, register handlers with On, then
// start Run in its own goroutine.
type View struct {
	mu       sync.RWMutex
	center   orb.Point
	zoom     float64
	layers   []Layer
	handlers map[EventKind][]Handler

	queue   chan request
	stopped chan struct{}
	once    sync.Once
}

// New creates a view with the base, region and point layers, all visible.
func New(cfg config.ViewConfig) *View {
	return &View{
		center: orb.Point{cfg.CenterLon, cfg.CenterLat},
		zoom:   cfg.Zoom,
		layers: []Layer{
			{Name: LayerBase, Visible: true},
			{Name: LayerRegions, Visible: true},
			{Name: LayerPoints, Visible: true},
		},
		handlers: make(map[EventKind][]Handler),
		queue:    make(chan request),
		stopped:  make(chan struct{}),
	}
}

// On registers a handler for events of the given kind.
func (v *View) On(kind EventKind, h Handler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handlers[kind] = append(v.handlers[kind], h)
}

// Dispatch delivers ev to every handler of its kind, in registration order,
// on the calling goroutine.
func (v *View) Dispatch(ev Event) {
	v.mu.RLock()
	hs := append([]Handler(nil), v.handlers[ev.Kind]...)
	v.mu.RUnlock()

	for _, h := range hs {
		h(ev)
	}
}

// SetLayerVisible sets the visibility of a named layer. Unknown names
// report false.
func (v *View) SetLayerVisible(name string, visible bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.layers {
		if v.layers[i].Name == name {
			v.layers[i].Visible = visible
			return true
		}
	}
	return false
}

// LayerVisible reports whether a named layer exists and is visible.
func (v *View) LayerVisible(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, l := range v.layers {
		if l.Name == name {
			return l.Visible
		}
	}
	return false
}

// HasLayer reports whether the view has a layer with the given name.
func (v *View) HasLayer(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, l := range v.layers {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of centre, zoom and layers.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		Center: [2]float64{v.center[0], v.center[1]},
		Zoom:   v.zoom,
		Layers: append([]Layer(nil), v.layers...),
	}
}

// Run processes queued events and functions one at a time until ctx is
// cancelled. It blocks.
func (v *View) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "mapview"))
	log.Info("event loop started")
	defer v.once.Do(func() { close(v.stopped) })

	for {
		select {
		case <-ctx.Done():
			log.Info("event loop stopped")
			return
		case req := <-v.queue:
			req.fn()
			close(req.done)
		}
	}
}

// Do runs fn on the event goroutine and waits for it to finish.
func (v *View) Do(ctx context.Context, fn func()) error {
	req := request{fn: fn, done: make(chan struct{})}

	select {
	case v.queue <- req:
	case <-v.stopped:
		return ErrStopped
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "mapview: enqueue")
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "mapview: wait")
	}
}

// Post stamps ev with an ID and time if missing, dispatches it on the event
// goroutine and waits for all handlers to return.
func (v *View) Post(ctx context.Context, ev Event) (Event, error) {
	return v.PostThen(ctx, ev, nil)
}

// PostThen is Post with a function that runs on the event goroutine right
// after the handlers, before any other queued work. Use it to read state that
// reflects exactly this event.
func (v *View) PostThen(ctx context.Context, ev Event, then func(Event)) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	err := v.Do(ctx, func() {
		v.Dispatch(ev)
		if then != nil {
			then(ev)
		}
		zap.L().Debug("mapview: event handled",
			zap.String("id", ev.ID),
			zap.String("kind", string(ev.Kind)),
			zap.Float64("lon", ev.Coordinate[0]),
			zap.Float64("lat", ev.Coordinate[1]),
			zap.Duration("latency", time.Since(ev.Time)),
		)
	})
	return ev, err
}
