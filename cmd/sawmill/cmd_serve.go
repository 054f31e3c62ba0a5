package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/sawmill/internal/config"
	"github.com/crimson-sun/sawmill/internal/logging"
	"github.com/crimson-sun/sawmill/internal/notify"
	"github.com/crimson-sun/sawmill/internal/server"
	"github.com/crimson-sun/sawmill/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis service",
	Long: `Starts the ingestion API. Configuration is read from SAWMILL_* environment
variables; see the README for the full list.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logging.Init(true, logging.ParseLevel(cfg.Log.Level))

	eng, norm, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	sink, err := buildSink(cfg.Notify)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.New(eng, norm, st, sink).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("sawmill serving", "addr", cfg.Server.ListenAddr, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildSink assembles the configured notification sinks, wrapped so that
// delivery never blocks the ingest path. Returns nil when none are enabled.
func buildSink(cfg config.NotifyConfig) (notify.Sink, error) {
	var sinks []notify.Sink
	for _, name := range strings.Split(cfg.Sinks, ",") {
		switch strings.TrimSpace(name) {
		case "":
		case "file":
			fs, err := notify.NewFileSink(cfg.FilePath)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, fs)
		case "webhook":
			if cfg.WebhookURL == "" {
				return nil, fmt.Errorf("webhook sink enabled but SAWMILL_NOTIFY_WEBHOOK_URL is empty")
			}
			sinks = append(sinks, notify.NewWebhookSink(cfg.WebhookURL))
		default:
			return nil, fmt.Errorf("unknown notify sink %q", name)
		}
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return notify.NewAsync(sinks[0]), nil
	default:
		return notify.NewAsync(notify.NewMulti(sinks...)), nil
	}
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemStore(), nil
	case "sqlite":
		return store.OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
