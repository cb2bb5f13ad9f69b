package charts

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// categorical is the ten-colour qualitative palette used for series and groups.
var categorical = []drawing.Color{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 255},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 255},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
	{R: 0xd6, G: 0x27, B: 0x28, A: 255},
	{R: 0x94, G: 0x67, B: 0xbd, A: 255},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 255},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 255},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 255},
	{R: 0xbc, G: 0xbd, B: 0x22, A: 255},
	{R: 0x17, G: 0xbe, B: 0xcf, A: 255},
}

// seriesColor cycles through the categorical palette.
func seriesColor(i int) drawing.Color {
	return categorical[i%len(categorical)]
}

var colorMissing = drawing.Color{R: 0xbd, G: 0xbd, B: 0xbd, A: 255}

// diverging runs blue, near-white, red.
var diverging = []drawing.Color{
	{R: 59, G: 76, B: 192, A: 255},
	{R: 221, G: 221, B: 221, A: 255},
	{R: 180, G: 4, B: 38, A: 255},
}

// divergingColor maps v in [lo, hi] onto the diverging palette. NaN is grey.
func divergingColor(v, lo, hi float64) drawing.Color {
	if math.IsNaN(v) {
		return colorMissing
	}
	return ramp(diverging, norm(v, lo, hi))
}

func norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	t := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, t))
}

func ramp(stops []drawing.Color, t float64) drawing.Color {
	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	f := pos - float64(i)
	a, b := stops[i], stops[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// contrastText picks black or white text for legibility on bg.
func contrastText(bg drawing.Color) drawing.Color {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum < 128 {
		return colorWhite
	}
	return colorText
}
