package charts

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"
)

func decodePNG(t *testing.T, b []byte, w, h int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if got := img.Bounds().Dx(); got != w {
		t.Fatalf("width = %d, want %d", got, w)
	}
	if got := img.Bounds().Dy(); got != h {
		t.Fatalf("height = %d, want %d", got, h)
	}
}

func TestBarChartStackedAndGrouped(t *testing.T) {
	for _, stacked := range []bool{true, false} {
		b := BarChart{
			Title:      "Disease by country",
			YLabel:     "Cases per 100k",
			Categories: []string{"Brazil", "India", "Nigeria"},
			Series: []Series{
				{Name: "Diarrheal", Values: []float64{250, 300, math.NaN()}},
				{Name: "Cholera", Values: []float64{20, 35, 40}},
			},
			Stacked: stacked,
			Width:   640,
			Height:  480,
		}
		var buf bytes.Buffer
		if err := b.Render(&buf, FormatPNG); err != nil {
			t.Fatalf("stacked=%v: %v", stacked, err)
		}
		decodePNG(t, buf.Bytes(), 640, 480)
	}
}

func TestBarChartErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := (BarChart{}).Render(&buf, FormatPNG); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	all := BarChart{Categories: []string{"a"}, Series: []Series{{Name: "x", Values: []float64{math.NaN()}}}}
	if err := all.Render(&buf, FormatPNG); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for all-NaN values, got %v", err)
	}
	bad := BarChart{Categories: []string{"a", "b"}, Series: []Series{{Name: "x", Values: []float64{1}}}}
	if err := bad.Render(&buf, FormatPNG); err == nil || !strings.Contains(err.Error(), "2 categories") {
		t.Fatalf("expected length mismatch error, got %v", err)
	}
}

func TestHeatmapSVGAnnotations(t *testing.T) {
	h := Heatmap{
		Title:     "Correlation",
		RowLabels: []string{"pH", "Lead"},
		ColLabels: []string{"Diarrheal", "Cholera"},
		Values:    [][]float64{{0.1234, -0.5}, {math.NaN(), 1}},
		Min:       -1,
		Max:       1,
		Width:     800,
		Height:    600,
	}
	var buf bytes.Buffer
	if err := h.Render(&buf, FormatSVG); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "0.12", "-0.50", "nan", "1.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
}

func TestHeatmapPNG(t *testing.T) {
	h := Heatmap{
		RowLabels: []string{"a"},
		ColLabels: []string{"b"},
		Values:    [][]float64{{0.3}},
		Width:     300,
		Height:    300,
	}
	var buf bytes.Buffer
	if err := h.Render(&buf, FormatPNG); err != nil {
		t.Fatalf("render: %v", err)
	}
	decodePNG(t, buf.Bytes(), 300, 300)
}

func TestScatterModes(t *testing.T) {
	pts := []Point{
		{X: 50, Y: 300, Group: "Rural", Hue: 1000, Size: 40},
		{X: 70, Y: 200, Group: "Urban", Hue: 5000, Size: 60},
		{X: 90, Y: 100, Group: "Urban", Hue: 20000, Size: 90},
		{X: math.NaN(), Y: 10, Group: "Rural", Hue: 1, Size: 1},
	}
	cases := []Scatter{
		{Title: "grouped", Points: pts, Hue: HueGroup, HueLabel: "Area", Sized: true, SizeLabel: "Sanitation", SizeMin: 2, SizeMax: 10},
		{Title: "continuous", Points: pts, Hue: HueContinuous, HueLabel: "GDP"},
		{Title: "plain", Points: pts},
	}
	for _, s := range cases {
		s.Width, s.Height = 800, 600
		var buf bytes.Buffer
		if err := s.Render(&buf, FormatPNG); err != nil {
			t.Fatalf("%s: %v", s.Title, err)
		}
		decodePNG(t, buf.Bytes(), 800, 600)
	}
}

func TestScatterSinglePoint(t *testing.T) {
	s := Scatter{Points: []Point{{X: 1, Y: 1}}, Width: 400, Height: 300}
	var buf bytes.Buffer
	if err := s.Render(&buf, FormatPNG); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestScatterNoData(t *testing.T) {
	s := Scatter{Points: []Point{{X: math.NaN(), Y: 1}}, Hue: HueGroup}
	var buf bytes.Buffer
	if err := s.Render(&buf, FormatPNG); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestScatterPlottableFiltersEncodings(t *testing.T) {
	s := Scatter{
		Points: []Point{
			{X: 1, Y: 1, Group: "a", Size: 1},
			{X: 2, Y: 2, Group: "", Size: 1},
			{X: 3, Y: 3, Group: "b", Size: math.NaN()},
		},
		Hue:   HueGroup,
		Sized: true,
	}
	if got := len(s.plottable()); got != 1 {
		t.Fatalf("plottable = %d, want 1", got)
	}
	g := s.groups([]Point{{Group: "z"}, {Group: "a"}, {Group: "z"}})
	if len(g) != 2 || g[0].name != "a" || len(g[1].points) != 2 {
		t.Fatalf("unexpected groups: %+v", g)
	}
}

func TestLineChartPanels(t *testing.T) {
	l := LineChart{
		Title:  "Yearly trends",
		XLabel: "Year",
		X:      []float64{2000, 2001, 2002, 2003},
		Panels: []LinePanel{
			{Title: "Disease", YLabel: "Cases", Series: []Series{
				{Name: "Diarrheal", Values: []float64{300, 280, math.NaN(), 250}},
				{Name: "Cholera", Values: []float64{40, 42, 39, 38}},
			}},
			{Title: "Water quality", YLabel: "Level", Series: []Series{
				{Name: "Lead", Values: []float64{10, 9, 8, 7}},
			}},
		},
		Width:  900,
		Height: 900,
	}
	var buf bytes.Buffer
	if err := l.Render(&buf, FormatPNG); err != nil {
		t.Fatalf("render: %v", err)
	}
	decodePNG(t, buf.Bytes(), 900, 900)

	buf.Reset()
	if err := l.Render(&buf, FormatSVG); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	if !strings.Contains(buf.String(), "2002") {
		t.Fatal("expected year tick labels in svg")
	}
}

func TestNiceAxis(t *testing.T) {
	a := niceAxis(3, 97, 5)
	if a.min != 0 || a.max != 100 || a.step != 20 {
		t.Fatalf("unexpected axis %+v", a)
	}
	flat := niceAxis(5, 5, 5)
	if flat.min >= 5 || flat.max <= 5 {
		t.Fatalf("flat range not widened: %+v", flat)
	}
	if got := niceAxis(0, 1, 4).format(0.25); got != "0.2" && got != "0.25" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("SVG"); err != nil || f != FormatSVG {
		t.Fatalf("got %v %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatPNG {
		t.Fatalf("got %v %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("expected error for gif")
	}
}

func TestDivergingColor(t *testing.T) {
	if c := divergingColor(math.NaN(), -1, 1); c != colorMissing {
		t.Fatalf("NaN colour = %v", c)
	}
	if c := divergingColor(-1, -1, 1); c != diverging[0] {
		t.Fatalf("low end = %v", c)
	}
	if c := divergingColor(5, -1, 1); c != diverging[2] {
		t.Fatalf("clamped high end = %v", c)
	}
}
