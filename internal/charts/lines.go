package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// LinePanel is one vertically stacked subplot of a LineChart.
type LinePanel struct {
	Title  string
	YLabel string
	Series []Series
}

// LineChart draws panels that share the X values, one line with markers per
// series. A NaN breaks the line.
type LineChart struct {
	Title         string
	XLabel        string
	X             []float64
	Panels        []LinePanel
	Width, Height int
}

// Render implements Figure.
func (l LineChart) Render(w io.Writer, f Format) error {
	if len(l.X) == 0 || len(l.Panels) == 0 {
		return ErrNoData
	}
	for _, p := range l.Panels {
		if len(p.Series) == 0 {
			return ErrNoData
		}
		for _, s := range p.Series {
			if len(s.Values) != len(l.X) {
				return fmt.Errorf("series %q has %d values for %d x values", s.Name, len(s.Values), len(l.X))
			}
		}
	}
	width, height := size(l.Width, l.Height)
	c, err := newCanvas(f, width, height)
	if err != nil {
		return err
	}
	c.title(l.Title)

	legendW := 0
	for _, p := range l.Panels {
		if lw := c.legendWidth("", panelEntries(p)); lw > legendW {
			legendW = lw
		}
	}
	xlo, xhi, _ := dataRange(l.X)
	xa := l.xAxis(xlo, xhi)

	top := 60
	if l.Title == "" {
		top = 20
	}
	panelH := (height - top - 20) / len(l.Panels)
	for i, p := range l.Panels {
		ptop := top + i*panelH
		box := chart.Box{
			Top:    ptop + 30,
			Left:   90,
			Right:  width - legendW - 50,
			Bottom: ptop + panelH - 50,
		}
		var vals [][]float64
		for _, s := range p.Series {
			vals = append(vals, s.Values)
		}
		ylo, yhi, ok := dataRange(vals...)
		if !ok {
			ylo, yhi = 0, 1
		}
		fr := frame{box: box, x: xa, y: niceAxis(ylo, yhi, 5)}
		c.text(p.Title, (box.Left+box.Right)/2, ptop+14, labelSize+2, colorText, alignCenter)
		c.yAxis(fr)
		c.xAxis(fr)
		c.yLabel(p.YLabel, box, 60)
		if i == len(l.Panels)-1 && l.XLabel != "" {
			c.text(l.XLabel, (box.Left+box.Right)/2, box.Bottom+36, labelSize, colorText, alignCenter)
		}
		for si, s := range p.Series {
			drawLine(c, fr, l.X, s.Values, si)
		}
		c.strokeBox(box, colorAxis, 1)
		c.legend(box.Right+20, box.Top, "", panelEntries(p))
	}
	return c.save(w)
}

// xAxis ticks every x value when there are few of them, as with years.
func (l LineChart) xAxis(lo, hi float64) axis {
	if len(l.X) > 15 {
		return niceAxis(lo, hi, 8)
	}
	a := axis{min: lo, max: hi, step: 1}
	if lo == hi {
		a.min, a.max = lo-1, hi+1
	} else {
		pad := (hi - lo) * 0.03
		a.min, a.max = lo-pad, hi+pad
	}
	for _, x := range l.X {
		if finite(x) {
			a.ticks = append(a.ticks, x)
			if x != math.Trunc(x) {
				a.step = 0.1
			}
		}
	}
	return a
}

func drawLine(c *canvas, fr frame, xs, ys []float64, si int) {
	col := seriesColor(si)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(2)
	pen := false
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			if pen {
				c.r.Stroke()
				pen = false
			}
			continue
		}
		x, y := fr.px(xs[i]), fr.py(ys[i])
		if !pen {
			c.r.MoveTo(x, y)
			pen = true
			continue
		}
		c.r.LineTo(x, y)
	}
	if pen {
		c.r.Stroke()
	}
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			c.dot(fr.px(xs[i]), fr.py(ys[i]), 3.5, col)
		}
	}
}

func panelEntries(p LinePanel) []legendEntry {
	out := make([]legendEntry, len(p.Series))
	for i, s := range p.Series {
		out[i] = legendEntry{label: s.Name, color: seriesColor(i)}
	}
	return out
}
