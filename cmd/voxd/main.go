package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hushwire/voxd/internal/bus"
	"github.com/hushwire/voxd/internal/capture"
	"github.com/hushwire/voxd/internal/config"
	"github.com/hushwire/voxd/internal/journal"
	"github.com/hushwire/voxd/internal/natsserver"
	"github.com/hushwire/voxd/internal/permission"
	"github.com/hushwire/voxd/internal/runtime"
	"github.com/hushwire/voxd/internal/transcriber"
	"github.com/hushwire/voxd/internal/voice"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("voxd", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "voxd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Telemetry.LogLevel),
	}))
	slog.SetDefault(logger)
	logger.Info("starting voxd",
		slog.String("version", version),
		slog.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedded, err := natsserver.Start(cfg.Bus, logger)
	if err != nil {
		return fmt.Errorf("start embedded bus: %w", err)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(ctx, cfg.Bus, logger)
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}
	defer busClient.Close()

	store, err := journal.Open(ctx, cfg.Journal, logger)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	gate, err := permission.FromConfig(cfg.Permission)
	if err != nil {
		return fmt.Errorf("build permission gate: %w", err)
	}

	controller, err := capture.NewExecController(cfg.Capture)
	if err != nil {
		return fmt.Errorf("build capture controller: %w", err)
	}

	backend, err := transcriber.FromConfig(cfg.Transcriber)
	if err != nil {
		return fmt.Errorf("build transcription backend: %w", err)
	}

	orch := voice.NewOrchestrator(gate, controller, backend, logger, store)
	vm := voice.NewViewModel(orch, logger)

	service := voice.NewService(ctx, busClient, vm, logger)
	if err := service.Start(); err != nil {
		return fmt.Errorf("start voice service: %w", err)
	}
	defer service.Close()

	healthy := func() bool {
		return busClient.Healthy() && service.Healthy()
	}
	return runtime.New(cfg, logger, healthy).Start(ctx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
