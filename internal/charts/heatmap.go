package charts

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Heatmap draws a labelled grid of values on a diverging scale from Min to
// Max, with each cell annotated to two decimals. NaN cells are grey and read
// "nan".
type Heatmap struct {
	Title         string
	RowLabels     []string
	ColLabels     []string
	Values        [][]float64
	Min, Max      float64
	Width, Height int
}

// Render implements Figure.
func (h Heatmap) Render(w io.Writer, f Format) error {
	if len(h.RowLabels) == 0 || len(h.ColLabels) == 0 {
		return ErrNoData
	}
	if len(h.Values) != len(h.RowLabels) {
		return fmt.Errorf("heatmap has %d rows for %d labels", len(h.Values), len(h.RowLabels))
	}
	for i, row := range h.Values {
		if len(row) != len(h.ColLabels) {
			return fmt.Errorf("heatmap row %d has %d values for %d columns", i, len(row), len(h.ColLabels))
		}
	}
	lo, hi := h.Min, h.Max
	if hi <= lo {
		lo, hi = -1, 1
	}

	width, height := size(h.Width, h.Height)
	c, err := newCanvas(f, width, height)
	if err != nil {
		return err
	}
	rowW := c.maxLabelWidth(h.RowLabels, labelSize)
	colDrop := int(float64(c.maxLabelWidth(h.ColLabels, labelSize))*math.Sqrt2/2) + 30
	grid := chart.Box{
		Top:    60,
		Left:   rowW + 30,
		Right:  width - 140,
		Bottom: height - colDrop,
	}
	cw := float64(grid.Width()) / float64(len(h.ColLabels))
	ch := float64(grid.Height()) / float64(len(h.RowLabels))

	c.title(h.Title)
	for i, row := range h.Values {
		top := float64(grid.Top) + ch*float64(i)
		for j, v := range row {
			left := float64(grid.Left) + cw*float64(j)
			cell := chart.Box{
				Left:   int(math.Round(left)),
				Top:    int(math.Round(top)),
				Right:  int(math.Round(left + cw)),
				Bottom: int(math.Round(top + ch)),
			}
			bg := divergingColor(v, lo, hi)
			c.fillBox(cell, bg)
			c.strokeBox(cell, colorWhite, 1)
			label := "nan"
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			c.text(label, int(left+cw/2), int(top+ch/2), labelSize, contrastText(bg), alignCenter)
		}
		c.text(h.RowLabels[i], grid.Left-10, int(top+ch/2), labelSize, colorText, alignRight)
	}
	for j, l := range h.ColLabels {
		cx := grid.Left + int(cw*(float64(j)+0.5))
		d := int(float64(c.measure(l, labelSize).Width()) * math.Sqrt2 / 2)
		c.rotatedText(l, cx-d, grid.Bottom+12+d, labelSize, -45)
	}
	h.colorbar(c, chart.Box{Left: grid.Right + 40, Right: grid.Right + 60, Top: grid.Top, Bottom: grid.Bottom}, lo, hi)
	return c.save(w)
}

func (h Heatmap) colorbar(c *canvas, bar chart.Box, lo, hi float64) {
	const steps = 64
	sh := float64(bar.Height()) / steps
	for i := 0; i < steps; i++ {
		v := hi - (hi-lo)*(float64(i)+0.5)/steps
		c.fillBox(chart.Box{
			Left:   bar.Left,
			Right:  bar.Right,
			Top:    bar.Top + int(math.Round(sh*float64(i))),
			Bottom: bar.Top + int(math.Round(sh*float64(i+1))),
		}, divergingColor(v, lo, hi))
	}
	c.strokeBox(bar, colorAxis, 1)
	ax := niceAxis(lo, hi, 4)
	fr := frame{box: bar, y: axis{min: lo, max: hi}}
	for _, t := range ax.ticks {
		if t < lo || t > hi {
			continue
		}
		y := fr.py(t)
		c.line(bar.Right, y, bar.Right+4, y, colorAxis, 1)
		c.text(ax.format(t), bar.Right+8, y, tickSize, colorAxis, alignLeft)
	}
}
