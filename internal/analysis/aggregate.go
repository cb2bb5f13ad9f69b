package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// GroupedTable is a derived table: one row per distinct group key, one mean
// per value column. NaN marks a group with no valid values for a column.
type GroupedTable struct {
	Key     string
	Columns []string
	Groups  []Group
}

// Group is one row of a GroupedTable.
type Group struct {
	Key   string
	Size  int       // rows sharing the key
	Means []float64 // aligned with GroupedTable.Columns
}

// GroupMeans groups rows by the column key and computes the arithmetic mean of
// each value column over non-null values. Rows with a null key are dropped. A
// numeric key groups by parsed value. Groups are ordered by key: numerically
// when every key is a number, otherwise lexically.
func GroupMeans(t *Table, key string, cols []string) (*GroupedTable, error) {
	kc, err := t.Column(key)
	if err != nil {
		return nil, err
	}
	vcs := make([]*Column, len(cols))
	for i, name := range cols {
		c, err := t.Numeric(name)
		if err != nil {
			return nil, err
		}
		vcs[i] = c
	}

	type acc struct {
		size int
		sum  []float64
		cnt  []int
	}
	groups := map[string]*acc{}
	var keys []string
	for r := 0; r < t.Rows(); r++ {
		if kc.IsNull(r) {
			continue
		}
		k := kc.Raw(r)
		if kc.Kind == KindNumeric {
			// "2015" and "2015.0" are the same group.
			k = strconv.FormatFloat(kc.Float(r), 'g', -1, 64)
		}
		ga := groups[k]
		if ga == nil {
			ga = &acc{sum: make([]float64, len(cols)), cnt: make([]int, len(cols))}
			groups[k] = ga
			keys = append(keys, k)
		}
		ga.size++
		for j, c := range vcs {
			if x := c.Float(r); !math.IsNaN(x) {
				ga.sum[j] += x
				ga.cnt[j]++
			}
		}
	}
	if len(keys) == 0 {
		return nil, &EmptyGroupError{Key: key}
	}
	sortKeys(keys)

	out := &GroupedTable{Key: key, Columns: append([]string(nil), cols...), Groups: make([]Group, 0, len(keys))}
	for _, k := range keys {
		ga := groups[k]
		means := make([]float64, len(cols))
		for j := range cols {
			if ga.cnt[j] == 0 {
				means[j] = math.NaN()
				continue
			}
			means[j] = ga.sum[j] / float64(ga.cnt[j])
		}
		out.Groups = append(out.Groups, Group{Key: k, Size: ga.size, Means: means})
	}
	return out, nil
}

func sortKeys(keys []string) {
	nums := make(map[string]float64, len(keys))
	for _, k := range keys {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			sort.Strings(keys)
			return
		}
		nums[k] = f
	}
	sort.SliceStable(keys, func(i, j int) bool { return nums[keys[i]] < nums[keys[j]] })
}

// SortBy returns a copy ordered by the named column. NaN means sort last;
// ties keep the current order.
func (g *GroupedTable) SortBy(col string, descending bool) (*GroupedTable, error) {
	idx := g.columnIndex(col)
	if idx < 0 {
		return nil, &MissingColumnError{Column: col, Step: "sort " + g.Key}
	}
	out := &GroupedTable{Key: g.Key, Columns: g.Columns, Groups: append([]Group(nil), g.Groups...)}
	sort.SliceStable(out.Groups, func(i, j int) bool {
		a, b := out.Groups[i].Means[idx], out.Groups[j].Means[idx]
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case descending:
			return a > b
		default:
			return a < b
		}
	})
	return out, nil
}

// Keys returns the group keys in order.
func (g *GroupedTable) Keys() []string {
	out := make([]string, len(g.Groups))
	for i, gr := range g.Groups {
		out[i] = gr.Key
	}
	return out
}

// Column returns the means of one column across groups, in group order.
func (g *GroupedTable) Column(name string) ([]float64, error) {
	idx := g.columnIndex(name)
	if idx < 0 {
		return nil, &MissingColumnError{Column: name}
	}
	out := make([]float64, len(g.Groups))
	for i, gr := range g.Groups {
		out[i] = gr.Means[idx]
	}
	return out, nil
}

// Mean returns the mean of col within the group key; ok is false when either
// is unknown.
func (g *GroupedTable) Mean(key, col string) (v float64, ok bool) {
	idx := g.columnIndex(col)
	gr, found := g.Row(key)
	if idx < 0 || !found {
		return math.NaN(), false
	}
	return gr.Means[idx], true
}

// Row returns the group with the given key.
func (g *GroupedTable) Row(key string) (Group, bool) {
	for _, gr := range g.Groups {
		if gr.Key == key {
			return gr, true
		}
	}
	return Group{}, false
}

func (g *GroupedTable) columnIndex(name string) int {
	for i, c := range g.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Markdown renders the grouped means as a Markdown table.
func (g *GroupedTable) Markdown() string {
	var b strings.Builder
	b.WriteString("| " + safeVal(g.Key) + " | n")
	for _, c := range g.Columns {
		b.WriteString(" | " + safeVal(c))
	}
	b.WriteString(" |\n|---|---")
	for range g.Columns {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for _, gr := range g.Groups {
		fmt.Fprintf(&b, "| %s | %d", safeVal(gr.Key), gr.Size)
		for _, m := range gr.Means {
			b.WriteString(" | " + FormatFloat(m))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// FormatFloat prints a value with six significant digits, or "NaN".
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
