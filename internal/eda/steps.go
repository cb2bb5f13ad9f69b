package eda

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/charts"
	wd "github.com/KaramelBytes/waterborne-cli/internal/waterdata"
)

// Step is one chart of the analysis.
type Step struct {
	Num   int
	Name  string
	Title string
	// Gate, when set, makes the step optional: it is skipped without error
	// if the table lacks this column.
	Gate     string
	Requires []string
	build    func(t *analysis.Table, title string, o Options) (charts.Figure, error)
}

// FileName is the output file name for format f.
func (s Step) FileName(f charts.Format) string {
	return fmt.Sprintf("%02d_%s.%s", s.Num, s.Name, f)
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Steps returns the nine charts in run order.
func Steps() []Step {
	diseases := wd.DiseaseColumns()
	quality := wd.QualityColumns()
	return []Step{
		{
			Num: 1, Name: "disease_by_country",
			Title:    "Average Waterborne Disease Cases per 100,000 People by Country",
			Requires: concat([]string{wd.Country}, diseases),
			build: func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
				g, err := analysis.GroupMeans(t, wd.Country, diseases)
				if err != nil {
					return nil, err
				}
				if g, err = g.SortBy(wd.DiarrhealCases, true); err != nil {
					return nil, err
				}
				return barChart(g, title, "Cases per 100,000 people", true, o)
			},
		},
		{
			Num: 2, Name: "quality_disease_correlation",
			Title:    "Correlation Between Water Quality Parameters and Disease Cases",
			Requires: concat(quality, diseases),
			build: func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
				m, err := analysis.Correlate(t, quality, diseases)
				if err != nil {
					return nil, err
				}
				return charts.Heatmap{
					Title:     title,
					RowLabels: shortNames(m.Rows),
					ColLabels: shortNames(m.Cols),
					Values:    m.Values,
					Min:       -1,
					Max:       1,
					Width:     o.Width,
					Height:    o.Height,
				}, nil
			},
		},
		{
			Num: 3, Name: "disease_by_treatment",
			Title:    "Average Disease Cases by Water Treatment Method",
			Requires: concat([]string{wd.TreatmentMethod}, diseases),
			build:    groupedBars(wd.TreatmentMethod, diseases, "Cases per 100,000 people"),
		},
		{
			Num: 4, Name: "clean_water_vs_diarrhea",
			Title:    "Diarrheal Cases vs. Access to Clean Water",
			Requires: []string{wd.CleanWaterAccess, wd.DiarrhealCases, wd.Region},
			build: func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
				pts, err := points(t, wd.CleanWaterAccess, wd.DiarrhealCases, wd.Region, "", "")
				if err != nil {
					return nil, err
				}
				return charts.Scatter{
					Title:    title,
					XLabel:   wd.CleanWaterAccess,
					YLabel:   wd.DiarrhealCases,
					Points:   pts,
					Hue:      charts.HueGroup,
					HueLabel: wd.Region,
					Width:    o.Width,
					Height:   o.Height,
				}, nil
			},
		},
		{
			Num: 5, Name: "lead_vs_infant_mortality",
			Title:    "Infant Mortality Rate vs. Lead Concentration",
			Requires: []string{wd.LeadConcentration, wd.InfantMortalityRate, wd.Country, wd.BacteriaCount},
			build: func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
				pts, err := points(t, wd.LeadConcentration, wd.InfantMortalityRate, wd.Country, "", wd.BacteriaCount)
				if err != nil {
					return nil, err
				}
				return charts.Scatter{
					Title:     title,
					XLabel:    wd.LeadConcentration,
					YLabel:    wd.InfantMortalityRate,
					Points:    pts,
					Hue:       charts.HueGroup,
					HueLabel:  wd.Country,
					Sized:     true,
					SizeLabel: wd.ShortName(wd.BacteriaCount),
					SizeMin:   o.SizeMin,
					SizeMax:   o.SizeMax,
					Width:     o.Width,
					Height:    o.Height,
				}, nil
			},
		},
		{
			Num: 6, Name: "yearly_trends",
			Title:    "Water Quality and Disease Trends Over Time",
			Gate:     wd.Year,
			Requires: concat([]string{wd.Year}, quality, diseases),
			build:    yearlyTrends(quality, diseases),
		},
		{
			Num: 7, Name: "health_by_region",
			Title:    "Health Indicators by Region",
			Requires: concat([]string{wd.Region}, diseases, []string{wd.InfantMortalityRate}),
			build:    groupedBars(wd.Region, concat(diseases, []string{wd.InfantMortalityRate}), "Rate/Cases"),
		},
		{
			Num: 8, Name: "disease_by_source",
			Title:    "Disease Cases by Water Source Type",
			Requires: concat([]string{wd.WaterSourceType}, diseases),
			build:    groupedBars(wd.WaterSourceType, diseases, "Cases per 100,000 people"),
		},
		{
			Num: 9, Name: "gdp_vs_diarrhea",
			Title:    "Diarrheal Cases vs. GDP and Healthcare Access",
			Requires: []string{wd.GDPPerCapita, wd.DiarrhealCases, wd.HealthcareAccess, wd.SanitationCoverage},
			build: func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
				pts, err := points(t, wd.GDPPerCapita, wd.DiarrhealCases, "", wd.HealthcareAccess, wd.SanitationCoverage)
				if err != nil {
					return nil, err
				}
				return charts.Scatter{
					Title:     title,
					XLabel:    wd.GDPPerCapita,
					YLabel:    wd.DiarrhealCases,
					Points:    pts,
					Hue:       charts.HueContinuous,
					HueLabel:  "Healthcare Access",
					Sized:     true,
					SizeLabel: "Sanitation (%)",
					SizeMin:   o.SizeMin,
					SizeMax:   o.SizeMax,
					Width:     o.Width,
					Height:    o.Height,
				}, nil
			},
		},
	}
}

// Select picks steps by number ("4") or name ("gdp_vs_diarrhea"), keeping
// run order. An empty selection means every step.
func Select(only []string) ([]Step, error) {
	all := Steps()
	if len(only) == 0 {
		return all, nil
	}
	want := map[int]bool{}
	for _, sel := range only {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		found := false
		for _, s := range all {
			if strconv.Itoa(s.Num) == sel || s.Name == sel {
				want[s.Num] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown chart %q (use 1-%d or a chart name)", sel, len(all))
		}
	}
	var out []Step
	for _, s := range all {
		if want[s.Num] {
			out = append(out, s)
		}
	}
	return out, nil
}

func groupedBars(key string, cols []string, ylabel string) func(*analysis.Table, string, Options) (charts.Figure, error) {
	return func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
		g, err := analysis.GroupMeans(t, key, cols)
		if err != nil {
			return nil, err
		}
		return barChart(g, title, ylabel, false, o)
	}
}

func barChart(g *analysis.GroupedTable, title, ylabel string, stacked bool, o Options) (charts.Figure, error) {
	b := charts.BarChart{
		Title:      title,
		YLabel:     ylabel,
		Categories: g.Keys(),
		Stacked:    stacked,
		Width:      o.Width,
		Height:     o.Height,
	}
	for _, c := range g.Columns {
		vals, err := g.Column(c)
		if err != nil {
			return nil, err
		}
		b.Series = append(b.Series, charts.Series{Name: wd.ShortName(c), Values: vals})
	}
	return b, nil
}

func yearlyTrends(quality, diseases []string) func(*analysis.Table, string, Options) (charts.Figure, error) {
	return func(t *analysis.Table, title string, o Options) (charts.Figure, error) {
		if _, err := t.Numeric(wd.Year); err != nil {
			return nil, err
		}
		g, err := analysis.GroupMeans(t, wd.Year, concat(quality, diseases))
		if err != nil {
			return nil, err
		}
		xs := make([]float64, len(g.Groups))
		for i, k := range g.Keys() {
			if xs[i], err = strconv.ParseFloat(k, 64); err != nil {
				return nil, &analysis.ColumnTypeError{Column: wd.Year, Kind: "non-numeric key " + k}
			}
		}
		panel := func(heading, ylabel string, cols []string) (charts.LinePanel, error) {
			p := charts.LinePanel{Title: heading, YLabel: ylabel}
			for _, c := range cols {
				vals, err := g.Column(c)
				if err != nil {
					return p, err
				}
				p.Series = append(p.Series, charts.Series{Name: wd.ShortName(c), Values: vals})
			}
			return p, nil
		}
		qp, err := panel("Water Quality Trends Over Time", "Measurement", quality)
		if err != nil {
			return nil, err
		}
		dp, err := panel("Disease Case Trends Over Time", "Cases per 100,000 people", diseases)
		if err != nil {
			return nil, err
		}
		return charts.LineChart{
			Title:  title,
			XLabel: wd.Year,
			X:      xs,
			Panels: []charts.LinePanel{qp, dp},
			Width:  o.Width,
			Height: o.Height,
		}, nil
	}
}

// points collects rows where every named column is non-null. Empty names are
// not used. Group is read as text; the others must be numeric.
func points(t *analysis.Table, x, y, group, hue, size string) ([]charts.Point, error) {
	num := func(name string) (*analysis.Column, error) {
		if name == "" {
			return nil, nil
		}
		return t.Numeric(name)
	}
	xc, err := num(x)
	if err != nil {
		return nil, err
	}
	yc, err := num(y)
	if err != nil {
		return nil, err
	}
	hc, err := num(hue)
	if err != nil {
		return nil, err
	}
	sc, err := num(size)
	if err != nil {
		return nil, err
	}
	var gc *analysis.Column
	if group != "" {
		if gc, err = t.Column(group); err != nil {
			return nil, err
		}
	}

	var out []charts.Point
	for r := 0; r < t.Rows(); r++ {
		if xc.IsNull(r) || yc.IsNull(r) {
			continue
		}
		p := charts.Point{X: xc.Float(r), Y: yc.Float(r)}
		if gc != nil {
			if gc.IsNull(r) {
				continue
			}
			p.Group = gc.Raw(r)
		}
		if hc != nil {
			if hc.IsNull(r) {
				continue
			}
			p.Hue = hc.Float(r)
		}
		if sc != nil {
			if sc.IsNull(r) {
				continue
			}
			p.Size = sc.Float(r)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, charts.ErrNoData
	}
	return out, nil
}

func shortNames(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = wd.ShortName(c)
	}
	return out
}
