// Package charts renders the descriptive figures: bar charts, a heatmap,
// scatter plots and line panels. Figures are drawn with go-chart's renderers
// and written as PNG or SVG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a figure has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Format selects the output encoding of a figure.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use png or svg)", s)
	}
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Figure is anything that can render itself.
type Figure interface {
	Render(w io.Writer, f Format) error
}

const (
	defaultWidth  = 1200
	defaultHeight = 800
	titleSize     = 18.0
	labelSize     = 12.0
	tickSize      = 10.0
)

var (
	colorAxis  = drawing.Color{R: 0x44, G: 0x44, B: 0x44, A: 255}
	colorGrid  = drawing.Color{R: 0xe5, G: 0xe5, B: 0xe5, A: 255}
	colorText  = drawing.Color{R: 0x22, G: 0x22, B: 0x22, A: 255}
	colorWhite = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

func size(w, h int) (int, int) {
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// canvas wraps a go-chart renderer with the primitives the figures share.
type canvas struct {
	r    chart.Renderer
	font *truetype.Font
	w, h int
}

func newCanvas(f Format, w, h int) (*canvas, error) {
	r, err := f.provider()(w, h)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	r.SetFont(font)
	c := &canvas{r: r, font: font, w: w, h: h}
	c.fillBox(chart.Box{Top: 0, Left: 0, Right: w, Bottom: h}, colorWhite)
	return c, nil
}

func (c *canvas) save(w io.Writer) error { return c.r.Save(w) }

func (c *canvas) fillBox(b chart.Box, fill drawing.Color) {
	c.r.SetFillColor(fill)
	c.r.SetStrokeColor(fill)
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(b.Left, b.Top)
	c.r.LineTo(b.Right, b.Top)
	c.r.LineTo(b.Right, b.Bottom)
	c.r.LineTo(b.Left, b.Bottom)
	c.r.Close()
	c.r.FillStroke()
}

func (c *canvas) strokeBox(b chart.Box, col drawing.Color, width float64) {
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(b.Left, b.Top)
	c.r.LineTo(b.Right, b.Top)
	c.r.LineTo(b.Right, b.Bottom)
	c.r.LineTo(b.Left, b.Bottom)
	c.r.Close()
	c.r.Stroke()
}

func (c *canvas) line(x0, y0, x1, y1 int, col drawing.Color, width float64) {
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y1)
	c.r.Stroke()
}

func (c *canvas) dot(x, y int, radius float64, col drawing.Color) {
	c.r.SetFillColor(col)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(1)
	c.r.Circle(radius, x, y)
	c.r.FillStroke()
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// text draws s with its vertical middle at y.
func (c *canvas) text(s string, x, y int, size float64, col drawing.Color, a align) {
	c.r.SetFont(c.font)
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)
	tb := c.r.MeasureText(s)
	switch a {
	case alignCenter:
		x -= tb.Width() / 2
	case alignRight:
		x -= tb.Width()
	}
	c.r.Text(s, x, y+tb.Height()/2)
}

// rotatedText draws s rotated by deg degrees, starting at (x, y).
func (c *canvas) rotatedText(s string, x, y int, size float64, deg float64) {
	c.r.SetFont(c.font)
	c.r.SetFontSize(size)
	c.r.SetFontColor(colorText)
	c.r.SetTextRotation(deg * math.Pi / 180)
	c.r.Text(s, x, y)
	c.r.ClearTextRotation()
}

func (c *canvas) measure(s string, size float64) chart.Box {
	c.r.SetFont(c.font)
	c.r.SetFontSize(size)
	return c.r.MeasureText(s)
}

func (c *canvas) title(s string) {
	if s != "" {
		c.text(s, c.w/2, 30, titleSize, colorText, alignCenter)
	}
}

// yLabel draws a vertical axis name centred on the box's left edge.
func (c *canvas) yLabel(s string, b chart.Box, offset int) {
	if s == "" {
		return
	}
	tb := c.measure(s, labelSize)
	cy := (b.Top + b.Bottom) / 2
	c.rotatedText(s, b.Left-offset, cy+tb.Width()/2, labelSize, -90)
}

// categoryLabels draws labels under slots, rotated 45 degrees so the text
// ends at the slot centre.
func (c *canvas) categoryLabels(labels []string, b chart.Box) {
	if len(labels) == 0 {
		return
	}
	slot := float64(b.Width()) / float64(len(labels))
	for i, l := range labels {
		cx := b.Left + int(slot*(float64(i)+0.5))
		tb := c.measure(l, tickSize)
		d := int(float64(tb.Width()) * math.Sqrt2 / 2)
		c.rotatedText(l, cx-d, b.Bottom+12+d, tickSize, -45)
	}
}

// maxLabelWidth returns the widest rendering of labels at size.
func (c *canvas) maxLabelWidth(labels []string, size float64) int {
	w := 0
	for _, l := range labels {
		if lw := c.measure(l, size).Width(); lw > w {
			w = lw
		}
	}
	return w
}

// frame maps data coordinates into a plot box.
type frame struct {
	box  chart.Box
	x, y axis
}

func (f frame) px(v float64) int {
	return f.box.Left + int(math.Round((v-f.x.min)/(f.x.max-f.x.min)*float64(f.box.Width())))
}

func (f frame) py(v float64) int {
	return f.box.Bottom - int(math.Round((v-f.y.min)/(f.y.max-f.y.min)*float64(f.box.Height())))
}

// yAxis draws horizontal grid lines and tick labels left of the box.
func (c *canvas) yAxis(f frame) {
	for _, t := range f.y.ticks {
		y := f.py(t)
		c.line(f.box.Left, y, f.box.Right, y, colorGrid, 1)
		c.text(f.y.format(t), f.box.Left-8, y, tickSize, colorAxis, alignRight)
	}
}

// xAxis draws vertical grid lines and tick labels under the box.
func (c *canvas) xAxis(f frame) {
	for _, t := range f.x.ticks {
		x := f.px(t)
		c.line(x, f.box.Top, x, f.box.Bottom, colorGrid, 1)
		c.text(f.x.format(t), x, f.box.Bottom+14, tickSize, colorAxis, alignCenter)
	}
}

type legendEntry struct {
	label string
	color drawing.Color
}

// legend draws colour swatches with labels starting at (x, y).
func (c *canvas) legend(x, y int, title string, entries []legendEntry) {
	drawLegend(c.r, c.font, x, y, title, entries)
}

func (c *canvas) legendWidth(title string, entries []legendEntry) int {
	w := c.measure(title, labelSize).Width()
	for _, e := range entries {
		if lw := c.measure(e.label, labelSize).Width() + 22; lw > w {
			w = lw
		}
	}
	return w
}

func drawLegend(r chart.Renderer, font *truetype.Font, x, y int, title string, entries []legendEntry) int {
	r.SetFont(font)
	r.SetFontSize(labelSize)
	r.SetFontColor(colorText)
	if title != "" {
		tb := r.MeasureText(title)
		r.Text(title, x, y+tb.Height())
		y += tb.Height() + 10
	}
	for _, e := range entries {
		r.SetFillColor(e.color)
		r.SetStrokeColor(e.color)
		r.SetStrokeWidth(1)
		r.MoveTo(x, y)
		r.LineTo(x+14, y)
		r.LineTo(x+14, y+14)
		r.LineTo(x, y+14)
		r.Close()
		r.FillStroke()
		r.SetFontColor(colorText)
		tb := r.MeasureText(e.label)
		r.Text(e.label, x+22, y+7+tb.Height()/2)
		y += 22
	}
	return y
}

// axis is a value range with evenly spaced "nice" ticks.
type axis struct {
	min, max, step float64
	ticks          []float64
}

// niceAxis expands [lo, hi] to round numbers with about n ticks.
func niceAxis(lo, hi float64, n int) axis {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if lo == hi {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		lo, hi = lo-pad, hi+pad
	}
	if n < 2 {
		n = 2
	}
	step := niceStep((hi - lo) / float64(n))
	a := axis{min: math.Floor(lo/step) * step, max: math.Ceil(hi/step) * step, step: step}
	for v := a.min; v <= a.max+step/2; v += step {
		a.ticks = append(a.ticks, math.Round(v/step)*step)
	}
	return a
}

func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm <= 1:
		return mag
	case norm <= 2:
		return 2 * mag
	case norm <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func (a axis) format(v float64) string {
	decimals := 0
	if a.step > 0 && a.step < 1 {
		decimals = int(math.Ceil(-math.Log10(a.step)))
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// dataRange returns the min and max of the finite values in vals.
func dataRange(vals ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, vs := range vals {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}
