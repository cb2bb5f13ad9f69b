package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Series is a named sequence of values aligned with a chart's categories or
// x values. NaN marks a missing value.
type Series struct {
	Name   string
	Values []float64
}

// BarChart draws one bar per series per category, either side by side or
// stacked.
type BarChart struct {
	Title         string
	YLabel        string
	LegendTitle   string
	Categories    []string
	Series        []Series
	Stacked       bool
	Width, Height int
}

// Render implements Figure.
func (b BarChart) Render(w io.Writer, f Format) error {
	if len(b.Categories) == 0 || len(b.Series) == 0 {
		return ErrNoData
	}
	for _, s := range b.Series {
		if len(s.Values) != len(b.Categories) {
			return fmt.Errorf("series %q has %d values for %d categories", s.Name, len(s.Values), len(b.Categories))
		}
	}
	lo, hi, ok := b.valueRange()
	if !ok {
		return ErrNoData
	}

	width, height := size(b.Width, b.Height)
	c, err := newCanvas(f, width, height)
	if err != nil {
		return err
	}
	entries := make([]legendEntry, len(b.Series))
	for i, s := range b.Series {
		entries[i] = legendEntry{label: s.Name, color: seriesColor(i)}
	}
	labelDrop := int(float64(c.maxLabelWidth(b.Categories, tickSize))*math.Sqrt2/2) + 30
	plot := chart.Box{
		Top:    60,
		Left:   90,
		Right:  width - c.legendWidth(b.LegendTitle, entries) - 40,
		Bottom: height - labelDrop,
	}
	fr := frame{box: plot, y: niceAxis(lo, hi, 6)}

	c.title(b.Title)
	c.yAxis(fr)
	c.yLabel(b.YLabel, plot, 60)

	slot := float64(plot.Width()) / float64(len(b.Categories))
	for i := range b.Categories {
		left := float64(plot.Left) + slot*float64(i)
		if b.Stacked {
			b.drawStack(c, fr, i, left+slot*0.2, slot*0.6)
		} else {
			b.drawGroup(c, fr, i, left+slot*0.1, slot*0.8)
		}
	}
	c.line(plot.Left, fr.py(0), plot.Right, fr.py(0), colorAxis, 1)
	c.strokeBox(plot, colorAxis, 1)
	c.categoryLabels(b.Categories, plot)
	c.legend(plot.Right+20, plot.Top, b.LegendTitle, entries)
	return c.save(w)
}

func (b BarChart) drawStack(c *canvas, fr frame, i int, x, bw float64) {
	var pos, neg float64
	for si, s := range b.Series {
		v := s.Values[i]
		if math.IsNaN(v) || v == 0 {
			continue
		}
		base := &pos
		if v < 0 {
			base = &neg
		}
		c.fillBox(chart.Box{
			Left:   int(math.Round(x)),
			Right:  int(math.Round(x + bw)),
			Top:    fr.py(math.Max(*base, *base+v)),
			Bottom: fr.py(math.Min(*base, *base+v)),
		}, seriesColor(si))
		*base += v
	}
}

func (b BarChart) drawGroup(c *canvas, fr frame, i int, x, gw float64) {
	bw := gw / float64(len(b.Series))
	for si, s := range b.Series {
		v := s.Values[i]
		if math.IsNaN(v) {
			continue
		}
		left := x + bw*float64(si)
		c.fillBox(chart.Box{
			Left:   int(math.Round(left)),
			Right:  int(math.Round(left + bw*0.95)),
			Top:    fr.py(math.Max(0, v)),
			Bottom: fr.py(math.Min(0, v)),
		}, seriesColor(si))
	}
}

// valueRange covers zero and every bar end (stack totals when stacked).
func (b BarChart) valueRange() (lo, hi float64, ok bool) {
	for i := range b.Categories {
		var pos, neg float64
		for _, s := range b.Series {
			v := s.Values[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			ok = true
			if !b.Stacked {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
				continue
			}
			if v < 0 {
				neg += v
			} else {
				pos += v
			}
		}
		lo, hi = math.Min(lo, neg), math.Max(hi, pos)
	}
	return lo, hi * 1.05, ok
}
