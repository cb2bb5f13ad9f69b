package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds Pearson correlations of Rows (one per row column) against
// Cols. It need not be square or symmetric. NaN marks an undefined pair.
type CorrMatrix struct {
	Rows   []string
	Cols   []string
	Values [][]float64 // Values[i][j] = r(Rows[i], Cols[j])
	N      [][]int     // complete observations behind each value
}

// At returns r for the named row and column columns.
func (m *CorrMatrix) At(row, col string) (float64, bool) {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Cols {
			if c == col {
				return m.Values[i][j], true
			}
		}
	}
	return math.NaN(), false
}

// Correlate computes pairwise-complete Pearson correlations between every
// column in rows and every column in cols.
func Correlate(t *Table, rows, cols []string) (*CorrMatrix, error) {
	rcs, err := numericColumns(t, rows)
	if err != nil {
		return nil, err
	}
	ccs, err := numericColumns(t, cols)
	if err != nil {
		return nil, err
	}
	m := &CorrMatrix{
		Rows:   append([]string(nil), rows...),
		Cols:   append([]string(nil), cols...),
		Values: make([][]float64, len(rows)),
		N:      make([][]int, len(rows)),
	}
	for i, rc := range rcs {
		m.Values[i] = make([]float64, len(cols))
		m.N[i] = make([]int, len(cols))
		for j, cc := range ccs {
			m.Values[i][j], m.N[i][j] = pearson(rc, cc)
		}
	}
	return m, nil
}

func numericColumns(t *Table, names []string) ([]*Column, error) {
	out := make([]*Column, len(names))
	for i, n := range names {
		c, err := t.Numeric(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// pearson uses only rows where both columns are non-null. It returns NaN when
// fewer than two such rows exist or either side has zero variance.
func pearson(a, b *Column) (float64, int) {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		x, y := a.Float(i), b.Float(i)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	n := len(xs)
	if n < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN(), n
	}
	r := stat.Correlation(xs, ys, nil)
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return math.NaN(), n
	case r > 1:
		r = 1
	case r < -1:
		r = -1
	}
	return r, n
}

// Markdown renders the matrix with r to three decimals.
func (m *CorrMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("| ")
	for _, c := range m.Cols {
		b.WriteString(" | " + safeVal(c))
	}
	b.WriteString(" |\n|---")
	for range m.Cols {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, r := range m.Rows {
		b.WriteString("| " + safeVal(r))
		for _, v := range m.Values[i] {
			b.WriteString(" | " + formatR(v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func formatR(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.3f", v)
}
