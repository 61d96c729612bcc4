package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/simulate"
	"github.com/Stefanbotes/GeneralSchemaQ-sub001/pkg/logger"
)

func main() {
	cfg := &simulate.Config{}
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the engine")
	flag.IntVar(&cfg.Assessments, "assessments", 100, "number of synthetic assessments to submit")
	flag.IntVar(&cfg.Workers, "workers", 0, "concurrent workers (default CPU cores * 2)")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every submission and profile")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := simulate.Run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "simulation aborted", logger.Error(err))
		os.Exit(1)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
