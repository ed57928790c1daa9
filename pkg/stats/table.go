// Package stats reads per-utterance statistics workbooks and derives the
// meeting metrics shown on the analysis page.
package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Schema identifies which column layout a table follows.
type Schema string

const (
	// SchemaConversation is the generic layout: timestamp, speaker, text.
	SchemaConversation Schema = "conversation"
	// SchemaProduction is the production export: locutor, inicio, fim, duracao, palavras.
	SchemaProduction Schema = "production"
	// SchemaUnknown means neither layout matched.
	SchemaUnknown Schema = "unknown"
)

// Required columns per schema.
var (
	ConversationColumns = []string{"timestamp", "speaker", "text"}
	ProductionColumns   = []string{"locutor", "inicio", "fim", "duracao", "palavras"}
)

// Row maps a column name to its raw cell text. Absent cells read as "".
type Row map[string]string

// Number parses the cell as a float. Empty or non-numeric cells report false.
func (r Row) Number(col string) (float64, bool) {
	v := strings.TrimSpace(r[col])
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Text returns the trimmed cell text.
func (r Row) Text(col string) string {
	return strings.TrimSpace(r[col])
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"15:04:05",
	"15:04",
}

// Time parses the cell as a timestamp. Numeric cells are Excel date serials.
func (r Row) Time(col string) (time.Time, bool) {
	v := strings.TrimSpace(r[col])
	if v == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Table is one worksheet: the first row is the header.
type Table struct {
	Sheet   string   `json:"sheet" yaml:"sheet"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
	Schema  Schema   `json:"schema" yaml:"schema"`
}

// DetectSchema checks the conversation layout first, then production.
func DetectSchema(columns []string) Schema {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	hasAll := func(required []string) bool {
		for _, c := range required {
			if !have[c] {
				return false
			}
		}
		return true
	}

	switch {
	case hasAll(ConversationColumns):
		return SchemaConversation
	case hasAll(ProductionColumns):
		return SchemaProduction
	default:
		return SchemaUnknown
	}
}

// NewTable builds a table from a header and raw rows. Short rows are padded
// and fully empty rows dropped.
func NewTable(sheet string, header []string, records [][]string) *Table {
	t := &Table{Sheet: sheet, Columns: make([]string, len(header))}
	for i, h := range header {
		t.Columns[i] = strings.TrimSpace(h)
	}

	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(t.Columns))
		for i, col := range t.Columns {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	t.Schema = DetectSchema(t.Columns)
	return t
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// LoadTable reads the first sheet of the workbook at path.
func LoadTable(path string) (*Table, error) {
	return LoadSheet(path, "")
}

// LoadSheet reads the named sheet, or the first sheet when sheet is "".
// A workbook that cannot be opened is an error; unexpected columns are not.
func LoadSheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Table{Schema: SchemaUnknown}, nil
		}
		sheet = sheets[0]
	}
	return readSheet(f, sheet)
}

// Workbook holds every sheet of a file in workbook order.
type Workbook struct {
	Path   string
	Sheets []string
	Tables map[string]*Table
}

// LoadAllSheets reads every sheet of the workbook at path.
func LoadAllSheets(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	wb := &Workbook{Path: path, Tables: make(map[string]*Table)}
	for _, sheet := range f.GetSheetList() {
		t, err := readSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, sheet)
		wb.Tables[sheet] = t
	}
	return wb, nil
}

func readSheet(f *excelize.File, sheet string) (*Table, error) {
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return &Table{Sheet: sheet, Schema: SchemaUnknown}, nil
	}
	return NewTable(sheet, records[0], records[1:]), nil
}

// Dump renders the table as fixed-width text, header first.
func (t *Table) Dump() string {
	if len(t.Columns) == 0 {
		return "(planilha vazia)"
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len([]rune(c))
	}
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			if n := len([]rune(row[c])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeLine := func(cells func(i int) string) {
		for i := range t.Columns {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := cells(i)
			b.WriteString(cell)
			if i < len(t.Columns)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))))
			}
		}
		b.WriteByte('\n')
	}

	writeLine(func(i int) string { return t.Columns[i] })
	for _, row := range t.Rows {
		writeLine(func(i int) string { return row[t.Columns[i]] })
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dump renders every sheet as "Planilha: {name}" followed by its table,
// separated by blank lines.
func (wb *Workbook) Dump() string {
	blocks := make([]string, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		blocks = append(blocks, "Planilha: "+sheet+"\n"+wb.Tables[sheet].Dump())
	}
	return strings.Join(blocks, "\n\n")
}
