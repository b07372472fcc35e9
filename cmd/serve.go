package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/kommune-map/internal/config"
	"github.com/sells-group/kommune-map/internal/feature"
	"github.com/sells-group/kommune-map/internal/mapview"
	"github.com/sells-group/kommune-map/internal/render"
	"github.com/sells-group/kommune-map/internal/server"
	"github.com/sells-group/kommune-map/internal/widget"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive map over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		} else {
			cfg.Server.Port = port
		}

		set, err := loadLayers(ctx, cfg, "serve")
		if err != nil {
			return err
		}

		view, handler := buildApp(cfg, set)

		loopDone := make(chan struct{})
		go func() {
			defer close(loopDone)
			view.Run(ctx)
		}()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stop()
			<-loopDone
			return eris.Wrap(err, "server listen")
		}

		<-loopDone
		return nil
	},
}

// buildApp wires the view, the widget, the layer cache and the HTTP routes.
// The returned view's Run loop must be started by the caller.
func buildApp(c *config.Config, set *feature.Set) (*mapview.View, http.Handler) {
	view := mapview.New(c.View)
	w := widget.New(set, view, widgetOptions(c))

	var cache *render.Cache
	if c.Cache.Enabled {
		cache = render.NewCache()
	}

	s := server.New(view, w, cache, c.Server.AllowedOrigins)
	return view, s.Router()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
