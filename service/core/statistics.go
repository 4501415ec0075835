package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	dm "github.com/simon-0215/advanced-data-project/data/models"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

// AnnualizedReturn compounds the non-missing returns and scales the growth to one year
func AnnualizedReturn(returns []float64, periodsPerYear int) float64 {
	obs := ex.Finite(returns)
	if len(obs) == 0 {
		return math.NaN()
	}

	growth := 1.0
	for _, r := range obs {
		growth *= 1 + r
	}

	return math.Pow(growth, float64(periodsPerYear)/float64(len(obs))) - 1
}

// AnnualizedVolatility is the sample standard deviation scaled by sqrt(periodsPerYear)
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	obs := ex.Finite(returns)
	if len(obs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(obs, nil) * math.Sqrt(float64(periodsPerYear))
}

// SharpeRatio is the excess annualized return per unit of volatility, NaN unless volatility is positive
func SharpeRatio(annualizedReturn, annualizedVolatility, riskFreeRate float64) float64 {
	if !(annualizedVolatility > 0) {
		return math.NaN()
	}
	return (annualizedReturn - riskFreeRate) / annualizedVolatility
}

// CumulativeReturns is the running product of (1+r). Missing positions stay NaN and the
// product carries over them.
func CumulativeReturns(returns []float64) []float64 {
	res := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		if math.IsNaN(r) {
			res[i] = math.NaN()
			continue
		}
		growth *= 1 + r
		res[i] = growth
	}
	return res
}

// DrawdownCurve measures each cumulative value against the running peak of the curve itself
func DrawdownCurve(returns []float64) []float64 {
	cumulative := CumulativeReturns(returns)
	res := make([]float64, len(cumulative))

	peak := math.NaN()
	for i, c := range cumulative {
		if math.IsNaN(c) {
			res[i] = math.NaN()
			continue
		}
		if math.IsNaN(peak) || c > peak {
			peak = c
		}
		res[i] = (c - peak) / peak
	}
	return res
}

// MaxDrawdown is the deepest point of the drawdown curve, 0 when the curve never falls
func MaxDrawdown(returns []float64) float64 {
	worst := math.NaN()
	for _, dd := range DrawdownCurve(returns) {
		if math.IsNaN(dd) {
			continue
		}
		if math.IsNaN(worst) || dd < worst {
			worst = dd
		}
	}
	return worst
}

// RollingVolatility is the trailing window volatility in percent, aligned with the input.
// A window holding any missing value yields NaN.
func RollingVolatility(returns []float64, window, periodsPerYear int) []float64 {
	res := ex.NaNs(len(returns))
	if window < 2 {
		return res
	}

	scale := math.Sqrt(float64(periodsPerYear)) * 100
	for i := window - 1; i < len(returns); i++ {
		w := returns[i-window+1 : i+1]
		if len(ex.Finite(w)) != window {
			continue
		}
		res[i] = stat.StdDev(w, nil) * scale
	}
	return res
}

// ComputeMetrics builds one metrics row per ticker in table order
func ComputeMetrics(rt *dm.ReturnTable, periodsPerYear int, riskFreeRate float64) sm.MetricsTable {
	res := make(sm.MetricsTable, 0, len(rt.Tickers))
	for _, t := range rt.Tickers {
		r := rt.Observations(t)
		annReturn := AnnualizedReturn(r, periodsPerYear)
		annVol := AnnualizedVolatility(r, periodsPerYear)

		res = append(res, sm.TickerMetrics{
			Ticker:               t,
			AnnualizedReturn:     annReturn,
			AnnualizedVolatility: annVol,
			SharpeRatio:          SharpeRatio(annReturn, annVol, riskFreeRate),
			MaxDrawdown:          MaxDrawdown(r),
		})
	}
	return res
}

// GetCorrelationMatrix computes pairwise Pearson correlation over dates where both tickers
// have a return
func GetCorrelationMatrix(rt *dm.ReturnTable) sm.CorrelationMatrix {
	n := len(rt.Tickers)
	res := sm.CorrelationMatrix{Tickers: append([]string(nil), rt.Tickers...)}
	if n == 0 {
		return res
	}

	res.Matrix = mat.NewSymDense(n, nil)
	for i := range n {
		for j := range i + 1 {
			res.Matrix.SetSym(i, j, pairwiseCorrelation(rt.Returns[rt.Tickers[i]], rt.Returns[rt.Tickers[j]], i == j))
		}
	}
	return res
}

func pairwiseCorrelation(a, b []float64, self bool) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range min(len(a), len(b)) {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}

	if len(x) < 2 {
		return math.NaN()
	}
	if stat.StdDev(x, nil) == 0 || stat.StdDev(y, nil) == 0 {
		return math.NaN()
	}
	if self {
		return 1
	}
	return stat.Correlation(x, y, nil)
}

// GaussianKDE estimates the density of values with Scott's rule bandwidth on an evenly spaced
// grid of points spanning the data plus three bandwidths each side. Fewer than two distinct
// observations give no estimate.
func GaussianKDE(values []float64, points int) (xs, ys []float64) {
	obs := ex.Finite(values)
	if len(obs) < 2 || points < 2 {
		return nil, nil
	}

	bandwidth := stat.StdDev(obs, nil) * math.Pow(float64(len(obs)), -0.2)
	if !(bandwidth > 0) {
		return nil, nil
	}

	lo := floats.Min(obs) - 3*bandwidth
	hi := floats.Max(obs) + 3*bandwidth
	step := (hi - lo) / float64(points-1)

	kernel := distuv.Normal{Mu: 0, Sigma: bandwidth}
	xs = make([]float64, points)
	ys = make([]float64, points)
	for k := range points {
		x := lo + float64(k)*step
		sum := 0.0
		for _, v := range obs {
			sum += kernel.Prob(x - v)
		}
		xs[k] = x
		ys[k] = sum / float64(len(obs))
	}
	return xs, ys
}
