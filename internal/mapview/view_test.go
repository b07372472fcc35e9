package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kommune-map/internal/config"
)

func newTestView() *View {
	return New(config.ViewConfig{CenterLon: 9.7, CenterLat: 59.9, Zoom: 7.1})
}

// startView runs the event loop until the test ends.
func startView(t *testing.T, v *View) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestNew_Defaults(t *testing.T) {
	v := newTestView()
	snap := v.Snapshot()
	assert.Equal(t, [2]float64{9.7, 59.9}, snap.Center)
	assert.InDelta(t, 7.1, snap.Zoom, 0.0001)
	require.Len(t, snap.Layers, 3)
	assert.Equal(t, LayerBase, snap.Layers[0].Name)
	assert.Equal(t, LayerRegions, snap.Layers[1].Name)
	assert.Equal(t, LayerPoints, snap.Layers[2].Name)
	for _, l := range snap.Layers {
		assert.True(t, l.Visible)
	}
}

func TestLayerVisibility(t *testing.T) {
	v := newTestView()

	assert.True(t, v.SetLayerVisible(LayerRegions, false))
	assert.False(t, v.LayerVisible(LayerRegions))
	assert.True(t, v.LayerVisible(LayerPoints))

	assert.False(t, v.SetLayerVisible("satellite", true))
	assert.False(t, v.LayerVisible("satellite"))
	assert.False(t, v.HasLayer("satellite"))
	assert.True(t, v.HasLayer(LayerBase))

	// Snapshot is a copy.
	snap := v.Snapshot()
	snap.Layers[1].Visible = true
	assert.False(t, v.LayerVisible(LayerRegions))
}

func TestDispatch_OrderAndKind(t *testing.T) {
	v := newTestView()

	var got []string
	v.On(Click, func(ev Event) { got = append(got, "click-1") })
	v.On(PointerMove, func(ev Event) { got = append(got, "move") })
	v.On(Click, func(ev Event) { got = append(got, "click-2") })

	v.Dispatch(Event{Kind: Click})
	assert.Equal(t, []string{"click-1", "click-2"}, got)

	got = nil
	v.Dispatch(Event{Kind: PointerMove})
	assert.Equal(t, []string{"move"}, got)

	got = nil
	v.Dispatch(Event{Kind: "dblclick"})
	assert.Empty(t, got)
}

func TestPost_StampsAndWaits(t *testing.T) {
	v := newTestView()
	startView(t, v)

	var handled Event
	v.On(Click, func(ev Event) { handled = ev })

	ev, err := v.Post(context.Background(), Event{Kind: Click, Coordinate: orb.Point{10.5, 59.9}})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Time.IsZero())

	// Post returns only after handlers ran.
	assert.Equal(t, ev.ID, handled.ID)
	assert.Equal(t, orb.Point{10.5, 59.9}, handled.Coordinate)
}

func TestPostThen_RunsBeforeQueuedWork(t *testing.T) {
	v := newTestView()
	startView(t, v)

	var trace []string
	v.On(Click, func(Event) { trace = append(trace, "handler") })

	// A Do queued from the handler cannot run until the current turn ends.
	var wg sync.WaitGroup
	wg.Add(1)
	v.On(Click, func(Event) {
		go func() {
			defer wg.Done()
			_ = v.Do(context.Background(), func() { trace = append(trace, "queued") })
		}()
	})

	var seen string
	ev, err := v.PostThen(context.Background(), Event{Kind: Click}, func(ev Event) {
		trace = append(trace, "then")
		seen = ev.ID
	})
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, ev.ID, seen)
	require.NoError(t, v.Do(context.Background(), func() {}))
	assert.Equal(t, []string{"handler", "then", "queued"}, trace)
}

func TestPost_KeepsID(t *testing.T) {
	v := newTestView()
	startView(t, v)

	ev, err := v.Post(context.Background(), Event{ID: "fixed", Kind: PointerMove})
	require.NoError(t, err)
	assert.Equal(t, "fixed", ev.ID)
}

func TestDo_Serialised(t *testing.T) {
	v := newTestView()
	startView(t, v)

	counter := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Do(context.Background(), func() { counter++ }))
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, v.Do(context.Background(), func() { final = counter }))
	assert.Equal(t, 50, final)
}

func TestDo_ContextCancelledBeforeEnqueue(t *testing.T) {
	v := newTestView() // loop not running

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := v.Do(ctx, func() {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDo_AfterStop(t *testing.T) {
	v := newTestView()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	err := v.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestRun_StopsOnCancel(t *testing.T) {
	v := newTestView()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
