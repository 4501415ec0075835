package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	ex "github.com/simon-0215/advanced-data-project/data/extensions"
	"github.com/simon-0215/advanced-data-project/service/core"
	sm "github.com/simon-0215/advanced-data-project/service/models"
)

const kdePoints = 200

func (r *Renderer) returnHistograms(path string, res *sm.AnalysisResult) error {
	plots := make([]*plot.Plot, 0, len(res.Returns.Tickers))
	for _, t := range res.Returns.Tickers {
		p := plot.New()
		p.Title.Text = t
		p.X.Label.Text = "Daily return"

		obs := ex.Finite(res.Returns.Returns[t])
		if len(obs) >= 2 && !ex.AreAllEqual(obs) {
			h, err := plotter.NewHist(plotter.Values(obs), r.Settings.HistogramBins)
			if err != nil {
				return fmt.Errorf("histogram for %s: %w", t, err)
			}
			h.Normalize(1)
			h.FillColor = withAlpha(steelBlue, 0.6)
			h.LineStyle.Color = withAlpha(black, 0)
			p.Add(h)

			if xs, ys := core.GaussianKDE(obs, kdePoints); xs != nil {
				xys := make(plotter.XYs, len(xs))
				for i := range xs {
					xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
				}
				kde, err := plotter.NewLine(xys)
				if err != nil {
					return fmt.Errorf("density for %s: %w", t, err)
				}
				kde.Color = darkBlue
				kde.Width = vg.Points(2)
				p.Add(kde)
			}
		}
		plots = append(plots, p)
	}

	cols := min(r.Settings.GridColumns, max(len(plots), 1))
	return r.saveGrid(path, 14, 6, cols, "Return Distributions by Ticker", plots)
}

func (r *Renderer) rollingVolatility(path string, res *sm.AnalysisResult) error {
	p := newDatePlot(fmt.Sprintf("Rolling Annualized Volatility (%d-day window)", res.RollingWindow), "Volatility (%)")
	p.Legend.Top = true

	for i, t := range r.representative(res) {
		xys := dateXYs(res.Returns.Dates, res.RollingVolatility[t])
		if len(xys) == 0 {
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("rolling volatility for %s: %w", t, err)
		}
		l.Color = withAlpha(plotutil.Color(i), 0.7)
		p.Add(l)
		p.Legend.Add(t, l)
	}

	return r.savePlot(path, 12, 4, p)
}

func (r *Renderer) drawdowns(path string, res *sm.AnalysisResult) error {
	p := newDatePlot("Drawdowns Over Time", "Drawdown")
	p.Legend.Left = true

	for i, t := range r.representative(res) {
		xys := dateXYs(res.Returns.Dates, res.Drawdowns[t])
		if len(xys) == 0 {
			continue
		}
		// close the area along the zero line
		area := append(xys,
			plotter.XY{X: xys[len(xys)-1].X, Y: 0},
			plotter.XY{X: xys[0].X, Y: 0},
		)
		poly, err := plotter.NewPolygon(area)
		if err != nil {
			return fmt.Errorf("drawdown for %s: %w", t, err)
		}
		poly.Color = withAlpha(plotutil.Color(i), 0.4)
		poly.LineStyle.Width = 0
		p.Add(poly)
		p.Legend.Add(t, poly)
	}

	p.Y.Min, p.Y.Max = -1, 0.1
	return r.savePlot(path, 12, 4, p)
}

// correlationGrid exposes a correlation matrix as a heat map grid with the first ticker on top
type correlationGrid struct {
	corr sm.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) {
	n := len(g.corr.Tickers)
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	n := len(g.corr.Tickers)
	return g.corr.Matrix.At(n-1-r, c)
}

func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }
func (g correlationGrid) Min() float64    { return -1 }
func (g correlationGrid) Max() float64    { return 1 }

func (r *Renderer) correlationHeatmap(path string, res *sm.AnalysisResult) error {
	const title = "Return Correlation Heatmap"
	n := len(res.Correlation.Tickers)
	if n == 0 {
		return r.emptyFigure(path, 8, 6, title)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	grid := correlationGrid{corr: res.Correlation}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = withAlpha(gray, 0.3)

	xys := make(plotter.XYs, 0, n*n)
	text := make([]string, 0, n*n)
	for c := range n {
		for row := range n {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(row)})
			v := grid.Z(c, row)
			if math.IsNaN(v) {
				text = append(text, "nan")
				continue
			}
			text = append(text, fmt.Sprintf("%.2f", v))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return fmt.Errorf("correlation labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = vg.Points(7)
	}

	p := plot.New()
	p.Title.Text = title
	p.Add(hm, labels)
	p.NominalX(res.Correlation.Tickers...)
	p.NominalY(reversed(res.Correlation.Tickers)...)

	bar := plot.New()
	bar.HideX()
	bar.Y.Padding = 0
	bar.Title.Text = " "
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})

	return r.saveCanvas(path, 8, 6, func(dc draw.Canvas) {
		barWidth := vg.Inch
		p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
		bar.Draw(draw.Crop(dc, dc.Size().X-barWidth, 0, 0, 0))
	})
}

// horizontalBars draws one bar per name with the first name on top. Bars sharing a color go
// into one bar series since a series has a single fill.
func horizontalBars(p *plot.Plot, names []string, values []float64, span float64, colorOf func(v float64) color.Color) error {
	names, values = reversed(names), reversed(zeroNaN(values))
	p.NominalY(names...)

	type series struct {
		color  color.Color
		values plotter.Values
	}
	var groups []*series
	for i, v := range values {
		c := colorOf(v)
		var g *series
		for _, s := range groups {
			if s.color == c {
				g = s
				break
			}
		}
		if g == nil {
			g = &series{color: c, values: make(plotter.Values, len(values))}
			groups = append(groups, g)
		}
		g.values[i] = v
	}

	thickness := barThickness(span, len(values))
	for _, g := range groups {
		bc, err := plotter.NewBarChart(g.values, thickness)
		if err != nil {
			return err
		}
		bc.Horizontal = true
		bc.Color = g.color
		bc.LineStyle.Width = 0
		p.Add(bc)
	}

	if len(values) > 0 {
		zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: -0.5}, {X: 0, Y: float64(len(values)) - 0.5}})
		if err != nil {
			return err
		}
		zero.Color = black
		zero.Width = vg.Points(0.5)
		p.Add(zero)
	}
	return nil
}

func (r *Renderer) topBottomReturn(path string, res *sm.AnalysisResult) error {
	ranked := res.Metrics.SortedBy(sm.AnnualizedReturn, false)

	p := plot.New()
	p.Title.Text = "Annualized Return by Ticker (Top / Bottom)"
	p.X.Label.Text = "Annualized Return"
	p.Add(plotter.NewGrid())

	err := horizontalBars(p, ranked.Tickers(), ranked.Values(sm.AnnualizedReturn), 5, func(v float64) color.Color {
		if v >= 0 {
			return green
		}
		return red
	})
	if err != nil {
		return fmt.Errorf("return bars: %w", err)
	}

	return r.savePlot(path, 8, 5, p)
}

func (r *Renderer) topBottomMetrics(path string, res *sm.AnalysisResult) error {
	panels := []struct {
		field sm.MetricField
		title string
		label string
		color color.Color
	}{
		{sm.AnnualizedVolatility, "Annualized Volatility", "Volatility", coral},
		{sm.MaxDrawdown, "Maximum Drawdown", "Max Drawdown", purple},
	}

	plots := make([]*plot.Plot, 0, len(panels))
	for _, panel := range panels {
		ranked := res.Metrics.SortedBy(panel.field, true)

		p := plot.New()
		p.Title.Text = panel.title
		p.X.Label.Text = panel.label
		p.Add(plotter.NewGrid())

		err := horizontalBars(p, ranked.Tickers(), ranked.Values(panel.field), 5, func(float64) color.Color {
			return panel.color
		})
		if err != nil {
			return fmt.Errorf("%s bars: %w", panel.field, err)
		}
		plots = append(plots, p)
	}

	return r.saveGrid(path, 12, 5, len(plots), "", plots)
}

func (r *Renderer) spotlightReturns(path string, res *sm.AnalysisResult) error {
	t := r.Analysis.SpotlightTicker
	title := fmt.Sprintf("%s Daily Returns (%%)", t)

	values := ex.Scale(zeroNaN(res.Returns.Returns[t]), 100)
	if len(values) == 0 {
		return r.emptyFigure(path, 12, 3, title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Return (%)"
	p.X.Tick.Marker = dateIndexTicks{dates: res.Returns.Dates, format: "2006"}

	bc, err := plotter.NewBarChart(plotter.Values(values), barThickness(12*1.6, len(values)))
	if err != nil {
		return fmt.Errorf("return bars: %w", err)
	}
	bc.Color = withAlpha(steelBlue, 0.6)
	bc.LineStyle.Width = 0
	p.Add(bc)

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = black
	zero.Width = vg.Points(0.5)
	p.Add(zero)

	return r.savePlot(path, 12, 3, p)
}

func (r *Renderer) returnBoxPlot(path string, res *sm.AnalysisResult) error {
	p := plot.New()
	p.Title.Text = "Return Distribution by Ticker (Box Plot)"
	p.Y.Label.Text = "Daily Return"
	p.Add(plotter.NewGrid())

	for i, t := range res.Returns.Tickers {
		obs := ex.Finite(res.Returns.Returns[t])
		if len(obs) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(16), float64(i), plotter.Values(obs))
		if err != nil {
			return fmt.Errorf("box plot for %s: %w", t, err)
		}
		box.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(box)
	}

	p.NominalX(res.Returns.Tickers...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return r.savePlot(path, 10, 5, p)
}

func (r *Renderer) riskReturnScatter(path string, res *sm.AnalysisResult) error {
	p := plot.New()
	p.Title.Text = "Risk-Return Trade-off by Ticker"
	p.X.Label.Text = "Annualized Volatility (%)"
	p.Y.Label.Text = "Annualized Return (%)"
	p.Add(plotter.NewGrid())

	var points plotter.XYs
	var names []string
	for i, m := range res.Metrics {
		x, y := m.AnnualizedVolatility*100, m.AnnualizedReturn*100
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}

		s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", m.Ticker, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(5)
		p.Add(s)
		p.Legend.Add(m.Ticker, s)

		points = append(points, plotter.XY{X: x, Y: y})
		names = append(names, m.Ticker)
	}

	if len(points) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: names})
		if err != nil {
			return fmt.Errorf("scatter labels: %w", err)
		}
		labels.Offset = vg.Point{X: vg.Points(6), Y: vg.Points(2)}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(9)
		}
		p.Add(labels)

		// vertical reference spans the returns including zero
		ys := make([]float64, 0, len(points)+1)
		for _, pt := range points {
			ys = append(ys, pt.Y)
		}
		ys = append(ys, 0)
		vertical, err := plotter.NewLine(plotter.XYs{{X: 0, Y: floats.Min(ys)}, {X: 0, Y: floats.Max(ys)}})
		if err != nil {
			return err
		}
		vertical.LineStyle = dashed(vg.Points(0.5), gray)
		p.Add(vertical)
	}

	horizontal := plotter.NewFunction(func(float64) float64 { return 0 })
	horizontal.LineStyle = dashed(vg.Points(0.5), gray)
	p.Add(horizontal)
	p.Legend.Top = true

	return r.savePlot(path, 8, 6, p)
}
