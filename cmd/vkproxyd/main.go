// Command vkproxyd hosts the vendor engine in its own process and serves it
// to clients over a local socket or named pipe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-ctap/vkapi/pkg/config"
	"github.com/go-ctap/vkapi/pkg/dynload"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/sim"
	"github.com/go-ctap/vkapi/pkg/vkproxy"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

func main() {
	cfgPath := flag.String("config", "", "Path to the YAML configuration")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()

	cfg, err := config.FromFlags(*cfgPath, *envPath)
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *metricsAddr, logger); err != nil {
		logger.Error("vkproxyd failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, metricsAddr string, logger *slog.Logger) error {
	engine, err := openEngine(cfg, logger)
	if err != nil {
		return err
	}

	opts := []options.Option{
		options.WithLogger(logger),
		options.WithAddress(cfg.Engine.Address),
		options.WithRegisterer(prometheus.DefaultRegisterer),
	}

	ln, err := vkproxy.Listen(ctx, opts...)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("serving engine", "address", ln.Addr().String(), "engine", cfg.Engine.Kind)

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	return vkproxy.NewServer(engine, opts...).ListenAndServe(ctx, ln)
}

// openEngine picks the engine to host. A proxy engine is rejected since the
// daemon would only forward to another daemon.
func openEngine(cfg config.Config, logger *slog.Logger) (vkx.Engine, error) {
	switch cfg.Engine.Kind {
	case config.EngineSim:
		return sim.New(
			sim.WithDelay(cfg.SimDelay()),
			sim.WithStages(cfg.Engine.Sim.Stages),
			sim.WithLogger(logger),
		), nil
	case config.EngineNative:
		library := cfg.Engine.Library
		if library == "" {
			library = dynload.DefaultLibrary
		}
		return dynload.Load(library)
	}
	return nil, fmt.Errorf("engine kind %q cannot be served", cfg.Engine.Kind)
}
