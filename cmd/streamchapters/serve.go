package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/streamchapters/internal/browser"
	"github.com/v0xg/streamchapters/internal/controller"
	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/server"
)

var httpAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose start/stop commands and a live event stream over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	cmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address (default: HTTP_ADDR or 127.0.0.1:8787)")
	cmd.Flags().StringVar(&snapshotsDir, "snapshots", "", "Save a screenshot here for every failed chapter")
	addBrowserFlags(cmd)
	return cmd
}

// targetResolver finds targets in a connected browser
type targetResolver struct {
	browser *browser.Browser
}

func (r targetResolver) Resolve(_ context.Context, match string) (controller.Invoker, error) {
	t, err := r.browser.FindTarget(match)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r targetResolver) Pages(context.Context) ([]browser.PageInfo, error) {
	return r.browser.Pages()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, logger := loadConfig(cmd)
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}

	runs, closeStore, err := openRunStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	if cleared, err := runs.RecoverStale(appCtx); err != nil {
		logger.Warn("Failed to check for a stale run", "error", err)
	} else if cleared {
		logger.Info("Cleared a run left over from a previous process")
	}

	b, err := connectBrowser(appCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	bus := events.NewBus(logger)
	ctrl := controller.New(bus, runs, controller.Options{
		InterJobDelay: cfg.Timing.InterJobDelay,
		Logger:        logger,
	})

	srv := server.New(server.Deps{
		Runner:      ctrl,
		Runs:        runs,
		Bus:         bus,
		Targets:     targetResolver{browser: b},
		Logger:      logger,
		RunContext:  appCtx,
		HTTPLogPath: cfg.HTTPLogPath,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
		// event streams end when the app context is cancelled
		BaseContext: func(net.Listener) context.Context { return appCtx },
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-sig
		logger.Info("Shutdown signal received")

		// let the chapter in flight finish before tearing down the browser
		ctrl.Stop()
		select {
		case <-ctrl.Done():
		case <-time.After(30 * time.Second):
			logger.Warn("Run did not settle, cancelling")
		}
		appCancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Server starting", "address", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		return err
	}
	<-shutdownDone
	logger.Info("Server stopped")
	return nil
}
