package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/EgorLis/FactorioRelay/internal/config"
	"github.com/EgorLis/FactorioRelay/internal/relay"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "factoriorelay",
		Short: "Bridge a Factorio server's logs with a chat platform channel",
		Long: `factoriorelay tails a Factorio server's console log (and, when enabled,
the events-logger side channel) and renders recognized lines as chat
notifications.

The chat platform and RCON collaborators are supplied by the embedding
deployment; on its own the binary runs in tap mode, printing what would be
sent to each sink. That is enough to verify a server's log and event-log
wiring end to end.`,
		RunE:         run,
		SilenceUsage: true,
	}
	root.Flags().StringVar(&configPath, "config", "conf/config.json", "path to the relay config file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := relay.New(cfg, tapChat{logger}, tapConsole{logger}, logger)
	eng.OnFatal = func(err error) {
		logger.Error("relay failed", "error", err)
		cancel()
	}

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	logger.Info("running, press Ctrl+C to stop")
	return g.Wait()
}
