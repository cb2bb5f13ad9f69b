package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Options controls how a dataset is loaded.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, strip common separators (',' '.' space) other than the decimal
	// XLSX sheet selection; SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{
		DecimalSeparator: '.',
		SheetIndex:       1,
	}
}

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindUnknown     Kind = "unknown"
)

// nullTokens are cell values treated as missing, in addition to the empty string.
var nullTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"1.#IND": true, "-1.#IND": true, "1.#QNAN": true, "-1.#QNAN": true,
	"null": true, "NULL": true, "None": true, "<NA>": true,
}

func isNull(v string) bool { return v == "" || nullTokens[v] }

// Column is one named, read-only column of an Observation Table.
type Column struct {
	Name string
	Unit string
	Kind Kind

	raw   []string
	nums  []float64 // NaN marks null; nil unless Kind is numeric
	nulls int
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.raw) }

// Raw returns the trimmed cell text at row i.
func (c *Column) Raw(i int) string { return c.raw[i] }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return isNull(c.raw[i]) }

// NonNull returns the number of non-missing cells.
func (c *Column) NonNull() int { return len(c.raw) - c.nulls }

// Nulls returns the number of missing cells.
func (c *Column) Nulls() int { return c.nulls }

// Float returns the numeric value at row i, or NaN when the cell is null or
// the column is not numeric.
func (c *Column) Float(i int) float64 {
	if c.nums == nil {
		return math.NaN()
	}
	return c.nums[i]
}

// Floats returns a copy of the numeric values with NaN for nulls.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.raw))
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Valid returns the non-null numeric values in row order.
func (c *Column) Valid() []float64 {
	out := make([]float64, 0, c.NonNull())
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Table is the in-memory Observation Table. It is never mutated after
// construction; aggregations return new values.
type Table struct {
	Name     string
	Warnings []string

	cols  []*Column
	index map[string]int
	rows  int
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Columns returns the columns in header order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Names returns the column names in header order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the table has a column with the exact name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Missing returns the subset of names absent from the table, in the given order.
func (t *Table) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if !t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}
	return t.cols[i], nil
}

// Numeric looks up a column and checks that it holds numbers. An all-null
// column passes and yields only NaN.
func (t *Table) Numeric(name string) (*Column, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindNumeric && c.Kind != KindUnknown {
		return nil, &ColumnTypeError{Column: name, Kind: string(c.Kind)}
	}
	return c, nil
}

// NewTable builds a table from a header and data rows. Short rows are padded
// with nulls; long rows and duplicate header names are rejected.
func NewTable(name string, header []string, rows [][]string, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("empty header")
	}
	t := &Table{Name: name, index: make(map[string]int, len(header)), rows: len(rows)}
	for i, h := range header {
		hn := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if hn == "" {
			hn = fmt.Sprintf("column_%d", i+1)
		}
		if _, dup := t.index[hn]; dup {
			return nil, fmt.Errorf("duplicate column %q", hn)
		}
		_, unit := splitUnits(hn)
		t.index[hn] = i
		t.cols = append(t.cols, &Column{Name: hn, Unit: unit, raw: make([]string, len(rows))})
	}
	for r, rec := range rows {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(rec), len(header))
		}
		for j, c := range t.cols {
			if j < len(rec) {
				c.raw[r] = strings.TrimSpace(rec[j])
			}
		}
	}
	for _, c := range t.cols {
		inferColumn(c, opt)
	}
	return t, nil
}

// inferColumn decides the column kind and fills numeric values.
func inferColumn(c *Column, opt Options) {
	var numCnt, dtCnt, catCnt, nonNull int
	nums := make([]float64, len(c.raw))
	for i, v := range c.raw {
		if isNull(v) {
			c.nulls++
			nums[i] = math.NaN()
			continue
		}
		nonNull++
		if strings.Contains(v, "%") && c.Unit == "" {
			c.Unit = "%"
		}
		if x, ok := parseNumeric(v, opt); ok {
			nums[i] = x
			numCnt++
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			dtCnt++
		}
		if len(v) <= 64 {
			catCnt++
		}
	}
	switch {
	case nonNull == 0:
		c.Kind = KindUnknown
	case numCnt == nonNull:
		c.Kind = KindNumeric
		c.nums = nums
	case dtCnt == nonNull:
		c.Kind = KindDatetime
	case catCnt+numCnt == nonNull:
		c.Kind = KindCategorical
	default:
		c.Kind = KindText
	}
}

// Load reads a dataset from path, choosing the reader by extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited text file into a Table.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "open", Err: err}
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Path: path, Reason: "empty file"}
		}
		return nil, &DataLoadError{Path: path, Reason: "read header", Err: err}
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var rows [][]string
	total := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataLoadError{Path: path, Reason: fmt.Sprintf("read row %d", total+1), Err: err}
		}
		total++
		if len(rows) >= maxRows {
			continue
		}
		rows = append(rows, rec)
	}
	return finishLoad(path, header, rows, total, opt)
}

// finishLoad is shared by the CSV and XLSX readers.
func finishLoad(path string, header []string, rows [][]string, total int, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, &DataLoadError{Path: path, Reason: "empty file"}
	}
	if len(rows) == 0 {
		return nil, &DataLoadError{Path: path, Reason: "no data rows"}
	}
	t, err := NewTable(filepath.Base(path), header, rows, opt)
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "malformed", Err: err}
	}
	if len(rows) < total {
		t.Warnings = append(t.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", len(rows), total))
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // e.g., Turbidity (NTU)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // e.g., Lead [µg/L]
}

// splitUnits separates a trailing "(unit)" or "[unit]" from a header name.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// DisplayName returns the column name without its unit suffix.
func (c *Column) DisplayName() string {
	clean, _ := splitUnits(c.Name)
	return clean
}
