package charts

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Point is one scatter observation. Group is used when colouring by category,
// Hue when colouring on a continuous scale, Size when sizing dots.
type Point struct {
	X, Y  float64
	Group string
	Hue   float64
	Size  float64
}

// HueMode selects how dots are coloured.
type HueMode int

const (
	HueNone HueMode = iota
	HueGroup
	HueContinuous
)

// Scatter draws points with optional colour and size encodings. Points with a
// non-finite coordinate, or a missing value for an active encoding, are left
// out.
type Scatter struct {
	Title, XLabel, YLabel string
	Points                []Point

	Hue      HueMode
	HueLabel string

	Sized            bool
	SizeLabel        string
	SizeMin, SizeMax float64 // dot radius range in pixels

	Width, Height int
}

const legendPad = 230

// Render implements Figure.
func (s Scatter) Render(w io.Writer, f Format) error {
	pts := s.plottable()
	if len(pts) == 0 {
		return ErrNoData
	}
	width, height := size(s.Width, s.Height)
	rmin, rmax := s.SizeMin, s.SizeMax
	if rmin <= 0 {
		rmin = 2
	}
	if rmax < rmin {
		rmax = rmin
	}

	var xs, ys, hs, ss []float64
	for _, p := range pts {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		hs = append(hs, p.Hue)
		ss = append(ss, p.Size)
	}
	xlo, xhi, _ := dataRange(xs)
	ylo, yhi, _ := dataRange(ys)
	hlo, hhi, _ := dataRange(hs)
	slo, shi, _ := dataRange(ss)
	radius := func(v float64) float64 {
		if !s.Sized {
			return (rmin + rmax) / 2
		}
		return rmin + norm(v, slo, shi)*(rmax-rmin)
	}

	groups := s.groups(pts)
	var series []chart.Series
	var entries []legendEntry
	for gi, g := range groups {
		gx := make([]float64, len(g.points))
		gy := make([]float64, len(g.points))
		gh := make([]float64, len(g.points))
		gs := make([]float64, len(g.points))
		for i, p := range g.points {
			gx[i], gy[i], gh[i], gs[i] = p.X, p.Y, p.Hue, p.Size
		}
		col := seriesColor(gi)
		col.A = 200
		style := chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    radius(math.NaN()),
			DotColor:    col,
			DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
				return radius(gs[index])
			},
		}
		if s.Hue == HueContinuous {
			style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				c := chart.Viridis(gh[index], hlo, hhi)
				c.A = 220
				return c
			}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    g.name,
			Style:   style,
			XValues: gx,
			YValues: gy,
		})
		if s.Hue == HueGroup {
			entries = append(entries, legendEntry{label: g.name, color: seriesColor(gi)})
		}
	}

	graph := chart.Chart{
		Title:  s.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 30, Right: legendPad, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  s.XLabel,
			Range: paddedRange(xlo, xhi),
		},
		YAxis: chart.YAxis{
			Name:  s.YLabel,
			Range: paddedRange(ylo, yhi),
		},
		Series: series,
		Elements: []chart.Renderable{
			s.legend(width-legendPad+70, entries, [2]float64{hlo, hhi}, [2]float64{slo, shi}, radius),
		},
	}
	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

func (s Scatter) plottable() []Point {
	var out []Point
	for _, p := range s.Points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		if s.Sized && !finite(p.Size) {
			continue
		}
		switch s.Hue {
		case HueGroup:
			if p.Group == "" {
				continue
			}
		case HueContinuous:
			if !finite(p.Hue) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

type pointGroup struct {
	name   string
	points []Point
}

// groups splits points by Group in ascending name order; without a group
// encoding everything lands in one series.
func (s Scatter) groups(pts []Point) []pointGroup {
	if s.Hue != HueGroup {
		return []pointGroup{{name: s.YLabel, points: pts}}
	}
	idx := map[string]int{}
	var out []pointGroup
	for _, p := range pts {
		i, ok := idx[p.Group]
		if !ok {
			i = len(out)
			idx[p.Group] = i
			out = append(out, pointGroup{name: p.Group})
		}
		out[i].points = append(out[i].points, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (s Scatter) legend(x int, entries []legendEntry, hue, sz [2]float64, radius func(float64) float64) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		font := defaults.Font
		if font == nil {
			var err error
			if font, err = chart.GetDefaultFont(); err != nil {
				return
			}
		}
		y := cb.Top
		if len(entries) > 0 {
			y = drawLegend(r, font, x, y, s.HueLabel, entries) + 16
		}
		if s.Hue == HueContinuous {
			y = drawViridisBar(r, font, x, y, s.HueLabel, hue[0], hue[1]) + 16
		}
		if s.Sized {
			drawSizeLegend(r, font, x, y, s.SizeLabel, sz[0], sz[1], radius)
		}
	}
}

func drawViridisBar(r chart.Renderer, font *truetype.Font, x, y int, title string, lo, hi float64) int {
	r.SetFont(font)
	r.SetFontSize(labelSize)
	r.SetFontColor(colorText)
	if title != "" {
		tb := r.MeasureText(title)
		r.Text(title, x, y+tb.Height())
		y += tb.Height() + 10
	}
	const steps, barH = 48, 160
	for i := 0; i < steps; i++ {
		v := hi - (hi-lo)*(float64(i)+0.5)/steps
		c := chart.Viridis(v, lo, hi)
		top := y + i*barH/steps
		bottom := y + (i+1)*barH/steps
		r.SetFillColor(c)
		r.SetStrokeColor(c)
		r.SetStrokeWidth(1)
		r.MoveTo(x, top)
		r.LineTo(x+18, top)
		r.LineTo(x+18, bottom)
		r.LineTo(x, bottom)
		r.Close()
		r.FillStroke()
	}
	r.SetFontSize(tickSize)
	r.SetFontColor(colorAxis)
	r.Text(formatLegendValue(hi), x+24, y+8)
	r.Text(formatLegendValue(lo), x+24, y+barH)
	return y + barH
}

func drawSizeLegend(r chart.Renderer, font *truetype.Font, x, y int, title string, lo, hi float64, radius func(float64) float64) int {
	r.SetFont(font)
	r.SetFontSize(labelSize)
	r.SetFontColor(colorText)
	if title != "" {
		tb := r.MeasureText(title)
		r.Text(title, x, y+tb.Height())
		y += tb.Height() + 10
	}
	samples := []float64{lo, (lo + hi) / 2, hi}
	if lo == hi {
		samples = samples[:1]
	}
	r.SetFontSize(tickSize)
	for _, v := range samples {
		rad := radius(v)
		cy := y + int(math.Ceil(rad))
		r.SetFillColor(colorAxis)
		r.SetStrokeColor(colorAxis)
		r.SetStrokeWidth(1)
		r.Circle(rad, x+10, cy)
		r.FillStroke()
		r.SetFontColor(colorText)
		r.Text(formatLegendValue(v), x+28, cy+4)
		y += int(math.Ceil(2*rad)) + 10
	}
	return y
}

func formatLegendValue(v float64) string {
	if math.Abs(v) >= 1000 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

// paddedRange widens [lo, hi] by 5% on each side so a single distinct value
// still yields a non-zero range.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
