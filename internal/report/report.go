// Package report prints dataset descriptions, grouped means and correlation
// matrices as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Printer writes reports to an output stream.
type Printer struct {
	w       io.Writer
	heading *color.Color
	warn    *color.Color
}

// New returns a Printer writing to w. Colour follows color.NoColor.
func New(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow),
	}
}

func (p *Printer) section(title string) {
	p.heading.Fprintf(p.w, "\n=== %s ===\n", title)
}

func (p *Printer) table(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(p.w)
	// Both setters must precede SetHeader, which measures and wraps cells.
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeader(header)
	return t
}

// Info prints the dataset overview: shape, then kind, unit and null counts
// per column.
func (p *Printer) Info(d *analysis.Description) {
	p.section("Dataset Info")
	if d.Name != "" {
		fmt.Fprintf(p.w, "File: %s\n", d.Name)
	}
	fmt.Fprintf(p.w, "Rows: %d  Columns: %d\n", d.Rows, len(d.Cols))
	t := p.table([]string{"#", "Column", "Kind", "Unit", "Non-Null", "Missing"})
	for i, c := range d.Cols {
		t.Append([]string{
			strconv.Itoa(i),
			c.Name,
			string(c.Kind),
			c.Unit,
			strconv.Itoa(c.NonNull),
			strconv.Itoa(c.Missing),
		})
	}
	t.Render()
	for _, w := range d.Warnings {
		p.warn.Fprintf(p.w, "⚠ %s\n", w)
	}
}

// Summary prints count, mean, std, min, quartiles and max for every numeric
// column.
func (p *Printer) Summary(d *analysis.Description) {
	p.section("Summary Statistics")
	num := d.Numeric()
	if len(num) == 0 {
		fmt.Fprintln(p.w, "(no numeric columns)")
		return
	}
	t := p.table([]string{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, c := range num {
		t.Append([]string{
			c.Name,
			strconv.Itoa(c.Count),
			num4(c.Mean), num4(c.Std), num4(c.Min),
			num4(c.Q25), num4(c.Q50), num4(c.Q75), num4(c.Max),
		})
	}
	t.Render()
}

// Categories prints distinct counts and the most frequent values of each
// categorical column.
func (p *Printer) Categories(d *analysis.Description) {
	var rows [][]string
	for _, c := range d.Cols {
		if c.Kind != analysis.KindCategorical || len(c.TopValues) == 0 {
			continue
		}
		top := ""
		for i, kv := range c.TopValues {
			if i > 0 {
				top += ", "
			}
			top += fmt.Sprintf("%s (%d)", kv.Value, kv.Count)
		}
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Unique), top})
	}
	if len(rows) == 0 {
		return
	}
	p.section("Categorical Columns")
	t := p.table([]string{"Column", "Unique", "Top values"})
	t.AppendBulk(rows)
	t.Render()
}

// Outliers lists numeric columns with robust z-score outliers.
func (p *Printer) Outliers(d *analysis.Description) {
	var rows [][]string
	for _, c := range d.Numeric() {
		if c.OutliersCount > 0 {
			rows = append(rows, []string{c.Name, strconv.Itoa(c.OutliersCount), fmt.Sprintf("%.2f", c.OutliersMaxAbsZ)})
		}
	}
	if len(rows) == 0 {
		return
	}
	p.section("Outliers (|robust z| > 3.5)")
	t := p.table([]string{"Column", "Count", "Max |z|"})
	t.AppendBulk(rows)
	t.Render()
}

// Describe prints every description section.
func (p *Printer) Describe(d *analysis.Description) {
	p.Info(d)
	p.Summary(d)
	p.Categories(d)
	p.Outliers(d)
}

// Grouped prints a group-means table.
func (p *Printer) Grouped(g *analysis.GroupedTable) {
	p.section("Mean by " + g.Key)
	header := append([]string{g.Key, "n"}, g.Columns...)
	t := p.table(header)
	for _, gr := range g.Groups {
		row := []string{gr.Key, strconv.Itoa(gr.Size)}
		for _, m := range gr.Means {
			row = append(row, analysis.FormatFloat(m))
		}
		t.Append(row)
	}
	t.Render()
}

// Correlation prints a correlation matrix with r to three decimals.
func (p *Printer) Correlation(m *analysis.CorrMatrix) {
	p.section("Correlation")
	t := p.table(append([]string{""}, m.Cols...))
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, r := range m.Rows {
		row := []string{r}
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "nan")
				continue
			}
			row = append(row, fmt.Sprintf("%.3f", v))
		}
		t.Append(row)
	}
	t.Render()
}

func num4(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
