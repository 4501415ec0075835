package models

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	dm "github.com/simon-0215/advanced-data-project/data/models"
)

// MetricField names one column of the metrics table
type MetricField int

const (
	AnnualizedReturn MetricField = iota
	AnnualizedVolatility
	SharpeRatio
	MaxDrawdown
)

func (f MetricField) String() string {
	switch f {
	case AnnualizedReturn:
		return "annualized_return"
	case AnnualizedVolatility:
		return "annualized_volatility"
	case SharpeRatio:
		return "sharpe_ratio"
	case MaxDrawdown:
		return "max_drawdown"
	default:
		return ""
	}
}

// TickerMetrics holds the four summary statistics for one ticker, NaN when undefined
type TickerMetrics struct {
	Ticker               string
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
	MaxDrawdown          float64
}

func (tm TickerMetrics) Value(field MetricField) float64 {
	switch field {
	case AnnualizedReturn:
		return tm.AnnualizedReturn
	case AnnualizedVolatility:
		return tm.AnnualizedVolatility
	case SharpeRatio:
		return tm.SharpeRatio
	case MaxDrawdown:
		return tm.MaxDrawdown
	default:
		return math.NaN()
	}
}

// MetricsTable is one row per ticker in the price table's column order
type MetricsTable []TickerMetrics

// SortedBy returns a ranked copy of the table, NaN values always last
func (mt MetricsTable) SortedBy(field MetricField, ascending bool) MetricsTable {
	res := slices.Clone(mt)
	slices.SortStableFunc(res, func(a, b TickerMetrics) int {
		va, vb := a.Value(field), b.Value(field)
		switch {
		case math.IsNaN(va) && math.IsNaN(vb):
			return 0
		case math.IsNaN(va):
			return 1
		case math.IsNaN(vb):
			return -1
		}
		if ascending {
			return cmp.Compare(va, vb)
		}
		return cmp.Compare(vb, va)
	})
	return res
}

// Tickers lists the tickers in table order
func (mt MetricsTable) Tickers() []string {
	res := make([]string, len(mt))
	for i, m := range mt {
		res[i] = m.Ticker
	}
	return res
}

// Values lists one metric in table order
func (mt MetricsTable) Values(field MetricField) []float64 {
	res := make([]float64, len(mt))
	for i, m := range mt {
		res[i] = m.Value(field)
	}
	return res
}

// CorrelationMatrix pairs a symmetric matrix with its ticker order
type CorrelationMatrix struct {
	Tickers []string
	Matrix  *mat.SymDense
}

func (cm CorrelationMatrix) At(a, b string) float64 {
	i, j := slices.Index(cm.Tickers, a), slices.Index(cm.Tickers, b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return cm.Matrix.At(i, j)
}

// AnalysisResult is everything the renderer reads, built once by the analysis pipeline
type AnalysisResult struct {
	Prices            *dm.PriceTable
	Returns           *dm.ReturnTable
	Metrics           MetricsTable
	Correlation       CorrelationMatrix
	RollingVolatility map[string][]float64 // percent, aligned with Returns.Dates
	CumulativeReturns map[string][]float64
	Drawdowns         map[string][]float64
	RollingWindow     int
}
