package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brunoga/layerstack/internal/watch"
	"github.com/brunoga/layerstack/metrics"
)

func newWatchCmd(a *app) *cobra.Command {
	f := &stackFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile whenever the project or the catalog changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, f)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) watch(ctx context.Context, f *stackFlags) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector("layerstack", reg)

	if a.cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              a.cfg.Metrics.Listen,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.WithField("listen", srv.Addr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.WithError(err).Error("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	recompile := func() error {
		s, err := a.loadStack(f, collector)
		if err != nil {
			return err
		}
		c := s.Compiled()
		a.logger.WithFields(logrus.Fields{
			"base_id":   c.BaseDocument.ID,
			"applied":   c.LayerCount,
			"skipped":   len(c.Skipped),
			"conflicts": c.ConflictCount,
		}).Info("compiled")
		return nil
	}
	if err := recompile(); err != nil {
		return err
	}

	w, err := watch.New([]string{f.project, f.catalog},
		watch.WithDebounce(a.cfg.Compile.Debounce),
		watch.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	return w.Run(ctx, recompile)
}
