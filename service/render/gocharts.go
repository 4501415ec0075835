package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vicanso/go-charts/v2"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

// lineOptions hides point symbols, thousands of daily points would bury the lines
func lineOptions(width float64) charts.OptionFunc {
	return func(opt *charts.ChartOption) {
		opt.SymbolShow = charts.FalseFlag()
		opt.LineStrokeWidth = width
	}
}

func (r *Renderer) pixels(inches float64) int {
	return int(inches * float64(r.Settings.DPI))
}

// carryForward fills gaps with the last seen value, leading gaps with the first one.
// Series without any value are reported as not ok.
func carryForward(values []float64) ([]float64, bool) {
	res := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			last = v
		}
		res[i] = last
	}

	first := ex.Finite(values)
	if len(first) == 0 {
		return nil, false
	}
	for i := 0; i < len(res) && math.IsNaN(res[i]); i++ {
		res[i] = first[0]
	}
	return res, true
}

func dateLabels(res *sm.AnalysisResult, returns bool) []string {
	dates := res.Prices.Dates
	if returns {
		dates = res.Returns.Dates
	}
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = ex.FmtShort(d)
	}
	return labels
}

// renderLines draws one line per named series over shared date labels
func (r *Renderer) renderLines(path, title string, width, height float64, labels []string, names []string, values [][]float64) error {
	if len(values) == 0 || len(labels) < 2 {
		return r.emptyFigure(path, width, height, title)
	}

	painter, err := charts.LineRender(values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 12}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(r.pixels(width)),
		charts.HeightOptionFunc(r.pixels(height)),
		charts.PNGTypeOption(),
		lineOptions(1.5),
	)
	if err != nil {
		return err
	}

	buf, err := painter.Bytes()
	if err != nil {
		return err
	}
	return writeFile(path, bytes.NewReader(buf))
}

func (r *Renderer) priceSample(path string, res *sm.AnalysisResult) error {
	var names []string
	var values [][]float64
	for _, t := range r.representative(res) {
		v, ok := carryForward(res.Prices.Values(t))
		if !ok {
			continue
		}
		names = append(names, t)
		values = append(values, v)
	}

	err := r.renderLines(path, "Adjusted Close Prices - Representative Tickers", 12, 5, dateLabels(res, false), names, values)
	if err != nil {
		return fmt.Errorf("price lines: %w", err)
	}
	return nil
}

func (r *Renderer) cumulativeReturns(path string, res *sm.AnalysisResult) error {
	var names []string
	var values [][]float64
	for _, t := range r.representative(res) {
		v, ok := carryForward(res.CumulativeReturns[t])
		if !ok {
			continue
		}
		names = append(names, t)
		values = append(values, v)
	}

	// reference line at the starting value
	if len(values) > 0 {
		baseline := make([]float64, res.Returns.Len())
		for i := range baseline {
			baseline[i] = 1
		}
		names = append(names, "1.0")
		values = append(values, baseline)
	}

	err := r.renderLines(path, "Cumulative Returns (Normalized to 1)", 12, 5, dateLabels(res, true), names, values)
	if err != nil {
		return fmt.Errorf("cumulative lines: %w", err)
	}
	return nil
}

func (r *Renderer) sharpeRatio(path string, res *sm.AnalysisResult) error {
	const title = "Sharpe Ratio by Ticker"
	ranked := res.Metrics.SortedBy(sm.SharpeRatio, false)
	if len(ex.Finite(ranked.Values(sm.SharpeRatio))) == 0 {
		return r.emptyFigure(path, 8, 5, title)
	}

	// horizontal bars are laid out bottom up, reverse so the best ratio is on top
	painter, err := charts.HorizontalBarRender([][]float64{reversed(zeroNaN(ranked.Values(sm.SharpeRatio)))},
		charts.TitleTextOptionFunc(title, fmt.Sprintf("rf=%g", r.Analysis.RiskFreeRate)),
		charts.YAxisDataOptionFunc(reversed(ranked.Tickers())),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(r.pixels(8)),
		charts.HeightOptionFunc(r.pixels(5)),
		charts.PNGTypeOption(),
	)
	if err != nil {
		return fmt.Errorf("sharpe bars: %w", err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return fmt.Errorf("sharpe bars: %w", err)
	}
	return writeFile(path, bytes.NewReader(buf))
}
