package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// outlierThreshold is the robust |z| cut-off (Iglewicz and Hoaglin).
const outlierThreshold = 3.5

// Description summarizes a table's schema and per-column statistics.
type Description struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	Unit    string
	NonNull int
	Missing int
	// Numeric stats; Count == NonNull for numeric columns.
	Count         int
	Mean, Std     float64
	Min, Max      float64
	Q25, Q50, Q75 float64
	// Outliers by robust Z-score (MAD); zero when fewer than 8 values.
	OutliersCount   int
	OutliersMaxAbsZ float64
	// Categorical stats.
	Unique    int
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Numeric returns the summaries of numeric columns only, in header order.
func (d *Description) Numeric() []ColumnSummary {
	var out []ColumnSummary
	for _, c := range d.Cols {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// Describe computes schema and summary statistics for every column.
func Describe(t *Table) *Description {
	d := &Description{Name: t.Name, Rows: t.Rows(), Warnings: append([]string(nil), t.Warnings...)}
	for _, c := range t.cols {
		s := ColumnSummary{Name: c.Name, Kind: c.Kind, Unit: c.Unit, NonNull: c.NonNull(), Missing: c.Nulls()}
		switch c.Kind {
		case KindNumeric:
			describeNumeric(&s, c.Valid())
		case KindCategorical, KindDatetime, KindText:
			describeCategories(&s, c)
		}
		d.Cols = append(d.Cols, s)
	}
	return d
}

func describeNumeric(s *ColumnSummary, vals []float64) {
	s.Count = len(vals)
	nan := math.NaN()
	s.Mean, s.Std, s.Min, s.Max, s.Q25, s.Q50, s.Q75 = nan, nan, nan, nan, nan, nan, nan
	if len(vals) == 0 {
		return
	}
	s.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		s.Std = stat.StdDev(vals, nil)
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	if len(vals) >= 8 {
		median, mad := medianMAD(sorted)
		if mad > 0 {
			for _, v := range sorted {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > outlierThreshold {
					s.OutliersCount++
				}
				if az > s.OutliersMaxAbsZ {
					s.OutliersMaxAbsZ = az
				}
			}
		}
	}
}

func describeCategories(s *ColumnSummary, c *Column) {
	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			counts[c.Raw(i)]++
		}
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > 5 {
		tops = tops[:5]
	}
	s.Unique = len(counts)
	s.TopValues = tops
}

// Markdown renders the description for standalone docs.
func (d *Description) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if d.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", d.Name)
	}
	fmt.Fprintf(&b, "Rows: %d\nColumns: %d\n\n", d.Rows, len(d.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range d.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := c.Name
		if c.Unit != "" && !strings.Contains(name, c.Unit) {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		fmt.Fprintf(&b, "- %s: %s (non-null %d, missing %.1f%%)", safeVal(name), c.Kind, c.NonNull, missPct)
		switch c.Kind {
		case KindNumeric:
			if c.Count > 0 {
				fmt.Fprintf(&b, "; mean %.4g, std %.4g, min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g",
					c.Mean, c.Std, c.Min, c.Q25, c.Q50, c.Q75, c.Max)
			}
			if c.OutliersCount > 0 {
				fmt.Fprintf(&b, "; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, outlierThreshold, c.OutliersMaxAbsZ)
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
				}
				if c.Unique > len(c.TopValues) {
					fmt.Fprintf(&b, "; unique=%d", c.Unique)
				}
			}
		}
		b.WriteString("\n")
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range d.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	median = quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	return median, quantile(dev, 0.5)
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
