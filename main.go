package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/simon-0215/advanced-data-project/config"
	"github.com/simon-0215/advanced-data-project/data/repos"
	"github.com/simon-0215/advanced-data-project/service/core"
	"github.com/simon-0215/advanced-data-project/service/render"
)

func main() {
	// an interrupt stops the run between stages
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// optional, EDA_ overrides may live in .env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logging, os.Stderr)
	if envErr != nil {
		logger.Debug(".env not loaded", "error", envErr)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	source, err := repos.NewPriceSource(cfg.DataPath, cfg.Sheet)
	if err != nil {
		return err
	}

	ac := core.NewAnalysisContext(ctx, cfg.Analysis, logger)
	res, err := ac.RunAnalysis(source)
	if err != nil {
		return err
	}

	paths, err := render.NewRenderer(cfg, logger).RenderAll(ctx, res)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d figures in %s\n", len(paths), cfg.OutputDir)
	return nil
}
