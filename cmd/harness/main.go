package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tetherharness/internal/harness"
	"tetherharness/internal/shared/config"
	"tetherharness/internal/shared/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		controller = flag.String("controller", "", "controller command, comma separated (overrides config)")
		timeout    = flag.Duration("timeout", -1, "controller timeout, 0 waits forever (overrides config)")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *controller != "" {
		cfg.Controller.Command = strings.Split(*controller, ",")
	}
	if *timeout >= 0 {
		cfg.Scenario.Timeout = *timeout
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scenario := harness.WordCountScenario()
	h := harness.New(cfg, logger)

	start := time.Now()
	if err := h.Run(ctx, scenario); err != nil {
		logger.Fatal("Scenario failed", "scenario", scenario.Name, "error", err)
	}

	logger.Info("Scenario verified", "scenario", scenario.Name, "elapsed", time.Since(start).String())
}
