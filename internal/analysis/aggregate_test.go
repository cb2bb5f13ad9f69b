package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func mustTable(t *testing.T, header []string, rows ...[]string) *Table {
	t.Helper()
	tbl, err := NewTable("fixture", header, rows, DefaultOptions())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestGroupMeansSingleGroup(t *testing.T) {
	tbl := mustTable(t, []string{"Country", "Diarrheal", "Cholera"},
		[]string{"A", "10", "5"},
		[]string{"A", "20", "15"},
	)
	g, err := GroupMeans(tbl, "Country", []string{"Diarrheal", "Cholera"})
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	if len(g.Groups) != 1 || g.Groups[0].Key != "A" || g.Groups[0].Size != 2 {
		t.Fatalf("unexpected groups: %+v", g.Groups)
	}
	if v, ok := g.Mean("A", "Diarrheal"); !ok || v != 15 {
		t.Fatalf("diarrheal mean = %v, %v", v, ok)
	}
	if v, ok := g.Mean("A", "Cholera"); !ok || v != 10 {
		t.Fatalf("cholera mean = %v, %v", v, ok)
	}
	if _, ok := g.Mean("B", "Cholera"); ok {
		t.Fatal("unknown group should not be found")
	}
}

func TestGroupMeansNullHandling(t *testing.T) {
	tbl := mustTable(t, []string{"Region", "Rate", "Other"},
		[]string{"North", "4", ""},
		[]string{"North", "", ""},
		[]string{"South", "1", "7"},
		[]string{"", "100", "100"},
		[]string{"NA", "100", "100"},
		[]string{"South", "3", ""},
	)
	g, err := GroupMeans(tbl, "Region", []string{"Rate", "Other"})
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	if got := strings.Join(g.Keys(), ","); got != "North,South" {
		t.Fatalf("null keys should be dropped, got %s", got)
	}
	north, _ := g.Row("North")
	if north.Size != 2 || north.Means[0] != 4 || !math.IsNaN(north.Means[1]) {
		t.Fatalf("north = %+v", north)
	}
	south, _ := g.Row("South")
	if south.Means[0] != 2 || south.Means[1] != 7 {
		t.Fatalf("south = %+v", south)
	}
}

func TestGroupMeansErrors(t *testing.T) {
	tbl := mustTable(t, []string{"Region", "Rate", "Label"},
		[]string{"", "1", "x"},
		[]string{"NA", "2", "y"},
	)
	_, err := GroupMeans(tbl, "Region", []string{"Rate"})
	var eg *EmptyGroupError
	if !errors.As(err, &eg) || eg.Key != "Region" {
		t.Fatalf("expected EmptyGroupError, got %v", err)
	}

	_, err = GroupMeans(tbl, "Country", []string{"Rate"})
	var mc *MissingColumnError
	if !errors.As(err, &mc) || mc.Column != "Country" {
		t.Fatalf("expected MissingColumnError for key, got %v", err)
	}

	_, err = GroupMeans(tbl, "Region", []string{"Rate", "Lead"})
	if !errors.As(err, &mc) || mc.Column != "Lead" {
		t.Fatalf("expected MissingColumnError for value, got %v", err)
	}

	_, err = GroupMeans(tbl, "Region", []string{"Label"})
	var ct *ColumnTypeError
	if !errors.As(err, &ct) {
		t.Fatalf("expected ColumnTypeError, got %v", err)
	}
}

func TestGroupMeansOrdering(t *testing.T) {
	tbl := mustTable(t, []string{"Year", "Rate"},
		[]string{"2010", "1"},
		[]string{"9", "2"},
		[]string{"2005", "3"},
	)
	g, err := GroupMeans(tbl, "Year", []string{"Rate"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(g.Keys(), ","); got != "9,2005,2010" {
		t.Fatalf("numeric keys should sort numerically, got %s", got)
	}

	tbl = mustTable(t, []string{"Source", "Rate"},
		[]string{"Well", "1"},
		[]string{"Lake", "2"},
		[]string{"10", "3"},
	)
	g, err = GroupMeans(tbl, "Source", []string{"Rate"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(g.Keys(), ","); got != "10,Lake,Well" {
		t.Fatalf("mixed keys should sort lexically, got %s", got)
	}
}

func TestGroupedTableSortBy(t *testing.T) {
	tbl := mustTable(t, []string{"Country", "Rate", "Other"},
		[]string{"A", "5", "1"},
		[]string{"B", "", "1"},
		[]string{"C", "9", "1"},
		[]string{"D", "1", "1"},
	)
	g, err := GroupMeans(tbl, "Country", []string{"Rate", "Other"})
	if err != nil {
		t.Fatal(err)
	}
	desc, err := g.SortBy("Rate", true)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(desc.Keys(), ","); got != "C,A,D,B" {
		t.Fatalf("descending = %s", got)
	}
	asc, _ := g.SortBy("Rate", false)
	if got := strings.Join(asc.Keys(), ","); got != "D,A,C,B" {
		t.Fatalf("ascending = %s", got)
	}
	if got := strings.Join(g.Keys(), ","); got != "A,B,C,D" {
		t.Fatalf("SortBy must not reorder the receiver, got %s", got)
	}
	vals, err := desc.Column("Rate")
	if err != nil || vals[0] != 9 || !math.IsNaN(vals[3]) {
		t.Fatalf("column = %v, %v", vals, err)
	}
	if _, err := g.SortBy("Lead", true); err == nil {
		t.Fatal("expected error for unknown column")
	}

	md := g.Markdown()
	if !strings.Contains(md, "| Country | n | Rate | Other |") || !strings.Contains(md, "| B | 1 | NaN | 1 |") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestGroupMeansNumericKeyByValue(t *testing.T) {
	tbl := mustTable(t, []string{"Year", "Rate"},
		[]string{"2015", "1"},
		[]string{"2015.0", "3"},
		[]string{"2016", "5"},
	)
	g, err := GroupMeans(tbl, "Year", []string{"Rate"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(g.Keys(), ","); got != "2015,2016" {
		t.Fatalf("keys = %s, want one group per year", got)
	}
	if v, ok := g.Mean("2015", "Rate"); !ok || v != 2 {
		t.Fatalf("2015 mean = %v, %v", v, ok)
	}
}
