package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	black     = color.RGBA{A: 0xff}
	gray      = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	steelBlue = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
	darkBlue  = color.RGBA{B: 0x8b, A: 0xff}
	green     = color.RGBA{G: 0x80, A: 0xff}
	red       = color.RGBA{R: 0xff, A: 0xff}
	coral     = color.RGBA{R: 0xff, G: 0x7f, B: 0x50, A: 0xff}
	purple    = color.RGBA{R: 0x80, B: 0x80, A: 0xff}
)

// withAlpha returns c at the given opacity, premultiplied as color.RGBA expects
func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	a := uint32(alpha * 0xffff)
	return color.RGBA64{
		R: uint16(r * a / 0xffff),
		G: uint16(g * a / 0xffff),
		B: uint16(b * a / 0xffff),
		A: uint16(a),
	}
}

func dashed(width vg.Length, c color.Color) draw.LineStyle {
	return draw.LineStyle{
		Color:  c,
		Width:  width,
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}
}

// saveCanvas draws onto a width x height inch PNG at the configured DPI
func (r *Renderer) saveCanvas(path string, width, height float64, drawFn func(dc draw.Canvas)) error {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch),
		vgimg.UseDPI(r.Settings.DPI),
	)
	drawFn(draw.New(img))
	return writeFile(path, vgimg.PngCanvas{Canvas: img})
}

func (r *Renderer) savePlot(path string, width, height float64, p *plot.Plot) error {
	return r.saveCanvas(path, width, height, p.Draw)
}

// saveGrid lays plots out row by row, leaving unused tiles blank
func (r *Renderer) saveGrid(path string, width, height float64, cols int, title string, plots []*plot.Plot) error {
	rows := (len(plots) + cols - 1) / cols
	tiles := draw.Tiles{
		Rows:   max(rows, 1),
		Cols:   cols,
		PadX:   vg.Millimeter * 3,
		PadY:   vg.Millimeter * 3,
		PadTop: vg.Millimeter * 10,
	}

	return r.saveCanvas(path, width, height, func(dc draw.Canvas) {
		for i, p := range plots {
			p.Draw(tiles.At(dc, i%cols, i/cols))
		}
		if title == "" || len(plots) == 0 {
			return
		}
		sty := plots[0].Title.TextStyle
		sty.Font.Size = vg.Points(14)
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Millimeter*2}, title)
	})
}

// emptyFigure is drawn in place of a chart whose series are all missing
func (r *Renderer) emptyFigure(path string, width, height float64, title string) error {
	p := plot.New()
	p.Title.Text = title + " (no data)"
	return r.savePlot(path, width, height, p)
}

func writeFile(path string, w io.WriterTo) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, cerr)
		}
	}()

	if _, err = w.WriteTo(f); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// dateXYs pairs dates with values as unix seconds, skipping missing values
func dateXYs(dates []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(dates[i].Unix()), Y: v})
	}
	return xys
}

func newDatePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())
	return p
}

// zeroNaN replaces missing values with zero so bars keep their slot
func zeroNaN(values []float64) []float64 {
	res := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			res[i] = v
		}
	}
	return res
}

func reversed[T any](values []T) []T {
	res := make([]T, len(values))
	for i, v := range values {
		res[len(values)-1-i] = v
	}
	return res
}

// barThickness spreads n bars over roughly half of the given span
func barThickness(span float64, n int) vg.Length {
	if n == 0 {
		return vg.Points(1)
	}
	return max(vg.Length(span)*vg.Inch/vg.Length(2*n), vg.Points(0.5))
}

// dateIndexTicks labels bar positions 0..n-1 with their dates, about one label per year
type dateIndexTicks struct {
	dates  []time.Time
	format string
}

func (d dateIndexTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	lastYear := -1
	for i, t := range d.dates {
		if float64(i) < min || float64(i) > max {
			continue
		}
		if t.Year() == lastYear {
			continue
		}
		lastYear = t.Year()
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: t.Format(d.format)})
	}
	return ticks
}
