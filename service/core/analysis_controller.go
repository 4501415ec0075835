package core

import (
	"fmt"
	"time"

	dm "github.com/simon-0215/advanced-data-project/data/models"
	"github.com/simon-0215/advanced-data-project/data/repos"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

// RunAnalysis loads, cleans and summarizes the price table. The context is checked between
// stages so an interrupt stops the run before the next one starts.
func (ac *AnalysisContext) RunAnalysis(source repos.PriceSource) (*sm.AnalysisResult, error) {
	start := time.Now()
	log := ac.Logger

	log.Info("Loading price table")
	raw, err := source.Load(ac.Context)
	if err != nil {
		log.Error("Error loading price table", "error", err)
		return nil, err
	}
	log.Info("Loaded price table", "rows", raw.Len(), "tickers", len(raw.Tickers), "elapsed", time.Since(start))

	if dupes := repos.DuplicateDates(raw); dupes > 0 {
		log.Warn("Price table has duplicate dates, keeping file order", "duplicates", dupes)
	}

	if err := ac.Context.Err(); err != nil {
		return nil, err
	}

	log.Info("Cleaning price table", "elapsed", time.Since(start))
	prices, stats := CleanPrices(raw)
	for _, t := range stats.EmptyTickers {
		log.Warn("Ticker has no observations, metrics will be undefined", "ticker", t)
	}
	log.Info("Cleaned price table",
		"missing", stats.Missing,
		"filled", stats.Filled,
		"dropped_rows", stats.DroppedRows,
		"rows", prices.Len(),
		"elapsed", time.Since(start))

	if prices.Len() == 0 {
		return nil, fmt.Errorf("no complete rows left after cleaning: %w", repos.ErrEmptyTable)
	}

	if err := ac.Context.Err(); err != nil {
		return nil, err
	}

	log.Info("Computing returns", "elapsed", time.Since(start))
	returns := ComputeReturns(prices)
	if returns.Len() == 0 {
		log.Warn("Price table has fewer than two usable dates, return based charts will be empty")
	}

	log.Info("Computing metrics",
		"annualization", annualizationLabel(ac.Settings.TradingDays),
		"risk_free_rate", ac.Settings.RiskFreeRate,
		"elapsed", time.Since(start))
	res := &sm.AnalysisResult{
		Prices:        prices,
		Returns:       returns,
		Metrics:       ComputeMetrics(returns, ac.Settings.TradingDays, ac.Settings.RiskFreeRate),
		RollingWindow: ac.Settings.RollingWindow,
	}

	if err := ac.Context.Err(); err != nil {
		return nil, err
	}

	log.Info("Computing derived views", "elapsed", time.Since(start))
	res.Correlation = GetCorrelationMatrix(returns)
	res.RollingVolatility, res.CumulativeReturns, res.Drawdowns = ac.derivedViews(returns)

	log.Info("Analysis completed", "elapsed", time.Since(start))
	return res, nil
}

func (ac *AnalysisContext) derivedViews(rt *dm.ReturnTable) (rolling, cumulative, drawdowns map[string][]float64) {
	rolling = make(map[string][]float64, len(rt.Tickers))
	cumulative = make(map[string][]float64, len(rt.Tickers))
	drawdowns = make(map[string][]float64, len(rt.Tickers))

	for _, t := range rt.Tickers {
		r := rt.Returns[t]
		rolling[t] = RollingVolatility(r, ac.Settings.RollingWindow, ac.Settings.TradingDays)
		cumulative[t] = CumulativeReturns(r)
		drawdowns[t] = DrawdownCurve(r)
	}
	return rolling, cumulative, drawdowns
}

func annualizationLabel(periodsPerYear int) string {
	unit := sm.ConvertFrequencyToString(periodsPerYear)
	if unit == "" {
		unit = "periods"
	}
	return fmt.Sprintf("%d %s per year", periodsPerYear, unit)
}
