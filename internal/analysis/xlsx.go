package analysis

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// LoadXLSX reads one sheet of a .xlsx workbook into a Table. The sheet is
// chosen by opt.SheetName, else by the 1-based opt.SheetIndex, else the first.
func LoadXLSX(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "open", Err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "open workbook", Err: err}
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))
	target, err := resolveSheet(sheets, rels, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, &DataLoadError{Path: path, Reason: "select sheet", Err: err}
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, &DataLoadError{Path: path, Reason: fmt.Sprintf("sheet %s not found", target)}
	}
	rr := newSheetRowReader(sheetXML, parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml")))
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, &DataLoadError{Path: path, Reason: "empty file"}
	}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	var rows [][]string
	total := 0
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if allBlank(row) {
			continue
		}
		total++
		if len(rows) >= maxRows {
			continue
		}
		rows = append(rows, trimTrailingBlank(row, len(header)))
	}
	return finishLoad(path, header, rows, total, opt)
}

// resolveSheet maps a sheet name or 1-based index to its ZIP entry.
func resolveSheet(sheets []wbSheet, rels map[string]string, name string, index int) (string, error) {
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		available := make([]string, len(sheets))
		for i, s := range sheets {
			available[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(available, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range sheets {
		if s.SheetID == index {
			if rel, ok := rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return filepath.ToSlash(filepath.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index))), nil
}

// trimTrailingBlank drops empty cells past width, which spreadsheets emit for
// formatted but unused columns. Non-empty overflow is kept so NewTable
// rejects the row.
func trimTrailingBlank(row []string, width int) []string {
	for len(row) > width && strings.TrimSpace(row[len(row)-1]) == "" {
		row = row[:len(row)-1]
	}
	return row
}

func allBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"`
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	var wb struct {
		Sheets []wbSheet `xml:"sheets>sheet"`
	}
	if len(data) == 0 || xml.Unmarshal(data, &wb) != nil {
		return nil
	}
	return wb.Sheets
}

// parseRelationships returns relationship Id -> Target.
func parseRelationships(data []byte) map[string]string {
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	out := map[string]string{}
	if len(data) == 0 || xml.Unmarshal(data, &rels) != nil {
		return out
	}
	for _, r := range rels.Items {
		if r.ID != "" && r.Target != "" {
			out[r.ID] = r.Target
		}
	}
	return out
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// parseSharedStrings flattens each <si> entry (including rich-text runs) to text.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams rows of a worksheet as string slices.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next <row>, placing each cell at the column named by its
// reference (cells without one follow the previous cell).
func (r *sheetRowReader) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				row = row[:0]
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := colIndexFromRef(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.readCellValue(typ)
			}
		case xml.EndElement:
			if inRow && se.Name.Local == "row" {
				return row, true
			}
		}
	}
}

// readCellValue consumes tokens up to </c> and resolves shared strings.
func (r *sheetRowReader) readCellValue(typ string) string {
	var val strings.Builder
	capture := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				capture = true
			}
		case xml.CharData:
			if capture {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				capture = false
			case "c":
				if typ == "s" {
					idx := atoiSafe(val.String())
					if idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val.String()
			}
		}
	}
}

// colIndexFromRef converts a cell reference like "C12" to a 0-based column
// index; it returns -1 when the reference has no column letters.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets to ZIP entry names, which
// never carry a leading slash and live under xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return filepath.ToSlash(filepath.Join("xl", rel))
}
