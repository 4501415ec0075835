package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simon-0215/advanced-data-project/config"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

var ErrTickerNotFound = errors.New("ticker not found in price table")

// Renderer writes the figure set for one analysis result into OutputDir
type Renderer struct {
	OutputDir string
	Settings  config.RenderConfig
	Analysis  config.AnalysisConfig
	Logger    *slog.Logger
}

type chart struct {
	file string
	draw func(path string, res *sm.AnalysisResult) error
}

func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		OutputDir: cfg.OutputDir,
		Settings:  cfg.Render,
		Analysis:  cfg.Analysis,
		Logger:    logger,
	}
}

// SpotlightFile is the return series file name for the spotlight ticker
func (r *Renderer) SpotlightFile() string {
	return fmt.Sprintf("return_ts_%s.png", strings.ToLower(r.Analysis.SpotlightTicker))
}

func (r *Renderer) charts() []chart {
	return []chart{
		{"price_sample.png", r.priceSample},
		{"return_hist.png", r.returnHistograms},
		{"rolling_vol.png", r.rollingVolatility},
		{"drawdown.png", r.drawdowns},
		{"corr_heatmap.png", r.correlationHeatmap},
		{"top_bottom_return.png", r.topBottomReturn},
		{"sharpe_ratio.png", r.sharpeRatio},
		{"top_bottom_metrics.png", r.topBottomMetrics},
		{"cum_returns.png", r.cumulativeReturns},
		{r.SpotlightFile(), r.spotlightReturns},
		{"return_boxplot.png", r.returnBoxPlot},
		{"risk_return_scatter.png", r.riskReturnScatter},
	}
}

// RenderAll writes every figure and returns the paths written, in figure order.
// Figures are drawn by at most Settings.Workers goroutines and the first failure stops the rest.
func (r *Renderer) RenderAll(ctx context.Context, res *sm.AnalysisResult) ([]string, error) {
	start := time.Now()

	if !res.Returns.HasTicker(r.Analysis.SpotlightTicker) {
		return nil, fmt.Errorf("spotlight ticker %s: %w", r.Analysis.SpotlightTicker, ErrTickerNotFound)
	}
	for _, t := range r.Analysis.RepresentativeTickers {
		if !res.Prices.HasTicker(t) {
			r.Logger.Warn("Representative ticker missing, skipping it", "ticker", t)
		}
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output dir %s: %w", r.OutputDir, err)
	}

	charts := r.charts()
	paths := make([]string, len(charts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Settings.Workers, 1))
	for i, c := range charts {
		path := filepath.Join(r.OutputDir, c.file)
		paths[i] = path

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			chartStart := time.Now()
			if err := c.draw(path, res); err != nil {
				r.Logger.Error("Error rendering figure", "file", c.file, "error", err)
				return fmt.Errorf("error rendering %s: %w", c.file, err)
			}
			r.Logger.Debug("Rendered figure", "file", c.file, "elapsed", time.Since(chartStart))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("Rendered figures", "count", len(paths), "dir", r.OutputDir, "elapsed", time.Since(start))
	return paths, nil
}

// representative lists the configured representative tickers present in the table, in config order
func (r *Renderer) representative(res *sm.AnalysisResult) []string {
	tickers := make([]string, 0, len(r.Analysis.RepresentativeTickers))
	for _, t := range r.Analysis.RepresentativeTickers {
		if res.Prices.HasTicker(t) {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
