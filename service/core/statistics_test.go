package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	dm "github.com/simon-0215/advanced-data-project/data/models"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

const tolerance = 1e-9

func TestAnnualizedReturnShortSample(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03}
	growth := 1.01 * 0.98 * 1.03

	got := AnnualizedReturn(returns, sm.Daily)

	ex.AssertNear(t, "annualized return", math.Pow(growth, 252.0/3)-1, got, tolerance)
	// (1 + ann)^(T/252) recovers the gross product
	ex.AssertNear(t, "gross product", growth, math.Pow(1+got, 3.0/252), tolerance)
}

func TestAnnualizedReturnSkipsMissing(t *testing.T) {
	nan := math.NaN()
	ex.AssertNear(t, "with gaps",
		AnnualizedReturn([]float64{0.01, -0.02, 0.03}, sm.Daily),
		AnnualizedReturn([]float64{nan, 0.01, nan, -0.02, 0.03}, sm.Daily),
		tolerance)
	assert.True(t, math.IsNaN(AnnualizedReturn(nil, sm.Daily)))
	assert.True(t, math.IsNaN(AnnualizedReturn([]float64{nan, nan}, sm.Daily)))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03}
	mean := (0.01 - 0.02 + 0.03) / 3
	ss := 0.0
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	expected := math.Sqrt(ss/2) * math.Sqrt(252)

	ex.AssertNear(t, "volatility", expected, AnnualizedVolatility(returns, sm.Daily), tolerance)
	assert.True(t, math.IsNaN(AnnualizedVolatility([]float64{0.01}, sm.Daily)), "single observation")
	assert.True(t, math.IsNaN(AnnualizedVolatility([]float64{0.01, math.NaN()}, sm.Daily)))
}

func TestSharpeRatio(t *testing.T) {
	ex.AssertNear(t, "sharpe", 0.5, SharpeRatio(0.1, 0.2, 0), tolerance)
	ex.AssertNear(t, "sharpe with risk free", 0.4, SharpeRatio(0.1, 0.2, 0.02), tolerance)
	assert.True(t, math.IsNaN(SharpeRatio(0.1, 0, 0)), "zero volatility")
	assert.True(t, math.IsNaN(SharpeRatio(0.1, math.NaN(), 0)), "undefined volatility")
}

func TestDrawdownFromPriceExample(t *testing.T) {
	returns := []float64{0.05, 95.0/105 - 1, 110.0/95 - 1}

	ex.AssertSeriesNear(t, "cumulative", []float64{1.05, 0.95, 1.10}, CumulativeReturns(returns), tolerance)
	ex.AssertSeriesNear(t, "drawdown", []float64{0, (0.95 - 1.05) / 1.05, 0}, DrawdownCurve(returns), tolerance)
	ex.AssertNear(t, "max drawdown", (0.95-1.05)/1.05, MaxDrawdown(returns), tolerance)
}

func TestMaxDrawdownBounds(t *testing.T) {
	ex.AssertNear(t, "always rising", 0, MaxDrawdown([]float64{0.01, 0.02, 0, 0.03}), 0)
	// first return negative is the running peak itself
	ex.AssertNear(t, "single fall", 0, MaxDrawdown([]float64{-0.05}), 0)
	assert.True(t, math.IsNaN(MaxDrawdown(nil)))

	rng := rand.New(rand.NewPCG(1, 2))
	returns := make([]float64, 500)
	for i := range returns {
		returns[i] = rng.NormFloat64() * 0.02
	}
	assert.LessOrEqual(t, MaxDrawdown(returns), 0.0)
}

func TestCumulativeReturnsCarriesOverGaps(t *testing.T) {
	nan := math.NaN()
	ex.AssertSeriesNear(t, "cumulative",
		[]float64{1.1, nan, 1.1 * 0.9},
		CumulativeReturns([]float64{0.1, nan, -0.1}),
		tolerance)
	ex.AssertSeriesNear(t, "drawdown",
		[]float64{0, nan, -0.1},
		DrawdownCurve([]float64{0.1, nan, -0.1}),
		tolerance)
}

func TestRollingVolatility(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.01, 0.03, math.NaN(), 0.01, 0.02, 0.0}
	scale := math.Sqrt(252) * 100

	got := RollingVolatility(returns, 3, sm.Daily)

	require.Len(t, got, len(returns))
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	ex.AssertNear(t, "first window", stat.StdDev(returns[0:3], nil)*scale, got[2], tolerance)
	ex.AssertNear(t, "second window", stat.StdDev(returns[1:4], nil)*scale, got[3], tolerance)
	for i := 4; i <= 6; i++ {
		assert.True(t, math.IsNaN(got[i]), "window %d holds a gap", i)
	}
	ex.AssertNear(t, "after gap", stat.StdDev(returns[5:8], nil)*scale, got[7], tolerance)
}

func TestRollingVolatilityShortSeries(t *testing.T) {
	got := RollingVolatility([]float64{0.01, 0.02}, 21, sm.Daily)
	ex.AssertSeriesNear(t, "short", []float64{math.NaN(), math.NaN()}, got, 0)
}

func TestCorrelationMatrix(t *testing.T) {
	nan := math.NaN()
	rt := &dm.ReturnTable{
		Tickers: []string{"A", "B", "C", "FLAT", "EMPTY"},
		Returns: map[string][]float64{
			"A":     {0.01, 0.02, -0.01, 0.03, 0.00},
			"B":     {0.02, 0.04, -0.02, 0.06, 0.00},
			"C":     {-0.01, -0.02, 0.01, -0.03, nan},
			"FLAT":  {0.25, 0.25, 0.25, 0.25, 0.25},
			"EMPTY": {nan, nan, nan, nan, nan},
		},
	}

	cm := GetCorrelationMatrix(rt)
	n := len(rt.Tickers)
	require.Equal(t, n, cm.Matrix.SymmetricDim())

	for i := range n {
		for j := range n {
			ex.AssertNear(t, "symmetry", cm.Matrix.At(i, j), cm.Matrix.At(j, i), 0)
		}
	}

	ex.AssertNear(t, "diag A", 1, cm.At("A", "A"), 0)
	ex.AssertNear(t, "diag C", 1, cm.At("C", "C"), 0)
	ex.AssertNear(t, "A,B", 1, cm.At("A", "B"), tolerance)
	ex.AssertNear(t, "A,C pairwise", -1, cm.At("A", "C"), tolerance)
	assert.True(t, math.IsNaN(cm.At("A", "FLAT")), "zero variance")
	assert.True(t, math.IsNaN(cm.At("FLAT", "FLAT")))
	assert.True(t, math.IsNaN(cm.At("EMPTY", "A")), "no pairs")
	assert.True(t, math.IsNaN(cm.At("A", "MISSING")))
}

func TestComputeMetricsKeepsTickerOrder(t *testing.T) {
	nan := math.NaN()
	rt := &dm.ReturnTable{
		Tickers: []string{"Z", "A", "EMPTY"},
		Returns: map[string][]float64{
			"Z":     {0.01, -0.02, 0.03},
			"A":     {0.05, 95.0/105 - 1, 110.0/95 - 1},
			"EMPTY": {nan, nan, nan},
		},
	}

	mt := ComputeMetrics(rt, sm.Daily, 0)

	assert.Equal(t, []string{"Z", "A", "EMPTY"}, mt.Tickers())
	ex.AssertNear(t, "Z return", AnnualizedReturn(rt.Returns["Z"], sm.Daily), mt[0].AnnualizedReturn, 0)
	ex.AssertNear(t, "Z sharpe", mt[0].AnnualizedReturn/mt[0].AnnualizedVolatility, mt[0].SharpeRatio, tolerance)
	ex.AssertNear(t, "A drawdown", (0.95-1.05)/1.05, mt[1].MaxDrawdown, tolerance)

	empty := mt[2]
	assert.True(t, math.IsNaN(empty.AnnualizedReturn))
	assert.True(t, math.IsNaN(empty.AnnualizedVolatility))
	assert.True(t, math.IsNaN(empty.SharpeRatio))
	assert.True(t, math.IsNaN(empty.MaxDrawdown))
}

func TestGaussianKDEIntegratesToOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	values := make([]float64, 400)
	for i := range values {
		values[i] = rng.NormFloat64() * 0.02
	}

	xs, ys := GaussianKDE(values, 512)
	require.Len(t, xs, 512)
	require.Len(t, ys, 512)

	area := 0.0
	for i := 1; i < len(xs); i++ {
		area += (xs[i] - xs[i-1]) * (ys[i] + ys[i-1]) / 2
	}
	ex.AssertNear(t, "area", 1, area, 0.01)

	for _, y := range ys {
		assert.GreaterOrEqual(t, y, 0.0)
	}
}

func TestGaussianKDEDegenerate(t *testing.T) {
	xs, ys := GaussianKDE([]float64{0.25, 0.25, 0.25}, 100)
	assert.Nil(t, xs)
	assert.Nil(t, ys)

	xs, _ = GaussianKDE([]float64{0.01, math.NaN()}, 100)
	assert.Nil(t, xs)
}
