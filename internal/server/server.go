// Package server exposes the map widget over HTTP. Every handler that reads
// or changes feature styles runs its work on the map view's event goroutine.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/mapview"
	"github.com/sells-group/kommune-map/internal/render"
	"github.com/sells-group/kommune-map/internal/widget"
)

// Server wires the view, the widget and the render cache to HTTP routes.
type Server struct {
	view    *mapview.View
	widget  *widget.Widget
	cache   *render.Cache
	origins []string
}

// New creates a Server. cache may be nil to disable layer caching.
func New(view *mapview.View, w *widget.Widget, cache *render.Cache, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{view: view, widget: w, cache: cache, origins: origins}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/state", s.handleState)
		r.Post("/pointermove", s.handlePointer(mapview.PointerMove))
		r.Post("/click", s.handlePointer(mapview.Click))
		r.Post("/select", s.handleSelect)
		r.Post("/layers/regions/toggle", s.handleToggle)
		r.Get("/layers/{layer}", s.handleLayer)
		r.Get("/cache/stats", s.handleCacheStats)
	})
	return r
}

// stateResponse is the widget state plus the heading derived from it.
type stateResponse struct {
	widget.State
	widget.Display
	EventID string `json:"event_id,omitempty"`
}

type pointRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

type selectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var resp stateResponse
	if err := s.view.Do(r.Context(), func() { resp = s.snapshot() }); err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePointer(kind mapview.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Lon == nil || req.Lat == nil {
			writeError(w, http.StatusBadRequest, "lon and lat are required")
			return
		}
		if *req.Lon < -180 || *req.Lon > 180 || *req.Lat < -90 || *req.Lat > 90 {
			writeError(w, http.StatusBadRequest, "coordinate out of range")
			return
		}

		// The snapshot is taken in the same loop turn as the dispatch so no
		// other request can change the state in between.
		var resp stateResponse
		ev, err := s.view.PostThen(r.Context(), mapview.Event{
			Kind:       kind,
			Coordinate: orb.Point{*req.Lon, *req.Lat},
		}, func(mapview.Event) { resp = s.snapshot() })
		if err != nil {
			writeLoopError(w, err)
			return
		}
		resp.EventID = ev.ID
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var resp stateResponse
	err := s.view.Do(r.Context(), func() {
		s.widget.SelectByName(req.Name)
		resp = s.snapshot()
	})
	if err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var resp stateResponse
	err := s.view.Do(r.Context(), func() {
		s.widget.ToggleRegions()
		resp = s.snapshot()
	})
	if err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "layer"))
	if !renderable(name) || !s.view.HasLayer(name) {
		writeError(w, http.StatusNotFound, "unknown layer")
		return
	}

	var (
		data    []byte
		hit     bool
		visible bool
		encErr  error
	)
	err := s.view.Do(r.Context(), func() {
		rev := s.widget.State().Revision
		visible = s.view.LayerVisible(name)
		if s.cache != nil {
			if cached := s.cache.Get(name, rev); cached != nil {
				data, hit = cached, true
				return
			}
		}
		data, encErr = render.Encode(s.widget.Set(), name)
		if encErr == nil && s.cache != nil {
			s.cache.Put(name, rev, data)
		}
	})
	if err != nil {
		writeLoopError(w, err)
		return
	}
	if errors.Is(encErr, render.ErrUnknownLayer) {
		writeError(w, http.StatusNotFound, "unknown layer")
		return
	}
	if encErr != nil {
		zap.L().Error("server: render layer failed", zap.String("layer", name), zap.Error(encErr))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if visible {
		w.Header().Set("X-Layer-Visible", "true")
	} else {
		w.Header().Set("X-Layer-Visible", "false")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func renderable(name string) bool {
	for _, l := range render.Layers {
		if l == name {
			return true
		}
	}
	return false
}

// snapshot must run on the event goroutine.
func (s *Server) snapshot() stateResponse {
	return stateResponse{State: s.widget.State(), Display: s.widget.Display()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLoopError maps event loop failures to 503.
func writeLoopError(w http.ResponseWriter, err error) {
	msg := "event loop unavailable"
	if errors.Is(err, mapview.ErrStopped) {
		msg = "event loop stopped"
	}
	zap.L().Warn("server: event loop call failed", zap.Error(err))
	writeError(w, http.StatusServiceUnavailable, msg)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
