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
	"github.com/spf13/cobra"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/internal/logger"
	"github.com/zekoder/zegraphql/internal/metrics"
	"github.com/zekoder/zegraphql/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve creates missing tables, then serves the CRUD API under /api/:entity,
a health check at /health and Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	rt, err := setup(cmd, business.WithObserver(m))
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.bootstrap(ctx); err != nil {
		return NewStoreError("bootstrap", "", err)
	}

	srv := server.New(rt.service, server.Options{
		Mode:         rt.cfg.Server.Mode,
		RolePrefix:   rt.cfg.Auth.RolePrefix,
		EnforceRoles: rt.cfg.Auth.EnforceRoles,
		ZeAuthURL:    rt.cfg.Auth.ZeAuthURL,
		Logger:       logger.Component(rt.logger, "http"),
		Metrics:      m,
		Gatherer:     reg,
	})

	httpServer := &http.Server{
		Addr:              rt.cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info().Str("addr", httpServer.Addr).Str("db", rt.cfg.Database.Path).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	rt.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
