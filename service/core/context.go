package core

import (
	"context"
	"log/slog"

	"github.com/simon-0215/advanced-data-project/config"
)

type AnalysisContext struct {
	Context  context.Context
	Settings config.AnalysisConfig
	Logger   *slog.Logger
}

func NewAnalysisContext(ctx context.Context, settings config.AnalysisConfig, logger *slog.Logger) *AnalysisContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisContext{
		Context:  ctx,
		Settings: settings,
		Logger:   logger,
	}
}
