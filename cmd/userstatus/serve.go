package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/api"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/api/validator"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/metrics"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/render"
)

const pruneInterval = 5 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return e.serve(ctx)
	},
}

func (e *env) serve(ctx context.Context) error {
	pg, rdb, closeAll, err := e.stores(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	svc := e.service(pg, rdb)
	svc.Metrics = collector

	throttle := api.NewThrottle(e.cfg.PostRatePerMinute, e.cfg.PostBurst)
	a := &api.API{
		Logger:   e.logger,
		Statuses: svc,
		Auth:     api.HeaderAuthenticator{},
		Render:   render.New(),
		Val:      validator.New(),
		Metrics:  collector,
		Throttle: throttle,
		CSRF:     api.CSRFConfig{CookieSecure: e.cfg.CookieSecure},
		PerPage:  e.cfg.PerPage,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/", a)

	srv := &http.Server{
		Addr:              e.cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go prune(ctx, throttle, e)

	errc := make(chan error, 1)
	go func() {
		e.logger.Info("Server starting", "addr", srv.Addr, "read_only", e.cfg.ReadOnly)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	e.logger.Info("Server stopped")
	return nil
}

// prune drops idle posting limiters until ctx is done.
func prune(ctx context.Context, t *api.Throttle, e *env) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Prune(); n > 0 {
				e.logger.Debug("Pruned idle limiters", "count", n)
			}
		}
	}
}
