package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
)

// Format is a supported file format
type Format string

// Supported formats
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrEmpty is returned for files without a header row
var ErrEmpty = errors.New("sheet: no header row")

var zipMagic = []byte("PK\x03\x04")

// Record is one data row keyed by header text, tagged with its sheet line
type Record struct {
	Line   int
	Fields map[string]string
}

// Reader parses XLSX and CSV files into records
type Reader struct {
	// Comma is the CSV separator; zero sniffs between ',' and ';'
	Comma rune
}

// NewReader returns a Reader that sniffs the CSV separator
func NewReader() Reader { return Reader{} }

// Detect picks a format from the file name, falling back to content sniffing
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".tsv", ".txt":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Read parses data as the format Detect picks for name
func (r Reader) Read(name string, data []byte) ([]Record, error) {
	var (
		grid [][]string
		err  error
	)
	format := Detect(name, data)
	switch format {
	case FormatXLSX:
		grid, err = readXLSX(data)
	default:
		grid, err = r.readCSV(name, data)
	}
	if err != nil {
		return nil, err
	}

	recs, err := toRecords(grid)
	if err != nil {
		return nil, err
	}
	logger.Named("sheet").Debug().
		Str("file", name).
		Str("format", string(format)).
		Int("records", len(recs)).
		Msg("sheet: parsed")
	return recs, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("sheet: open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	// raw values keep date cells as serial day counts instead of the locale formatted text
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet: read %q: %w", sheets[0], err)
	}
	return rows, nil
}

func (r Reader) readCSV(name string, data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	comma := r.Comma
	if comma == 0 {
		comma = sniffComma(name, data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: read csv: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// sniffComma looks at the header line only; spreadsheets saved in es locales use ';'
func sniffComma(name string, data []byte) rune {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// toRecords keys every data row by the header row.
// Line numbers are 1 based sheet lines, so the first data row is line 2
func toRecords(grid [][]string) ([]Record, error) {
	if len(grid) == 0 {
		return nil, ErrEmpty
	}
	headers := uniqueHeaders(grid[0])
	if len(headers) == 0 {
		return nil, ErrEmpty
	}

	out := make([]Record, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		if blank(cells) {
			continue
		}
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			v := ""
			if j < len(cells) {
				v = cells[j]
			}
			row[h] = v
		}
		out = append(out, Record{Line: i + 2, Fields: row})
	}
	return out, nil
}

func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	named := false
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		named = true
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			out[i] = h + "_" + strconv.Itoa(n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	if !named {
		return nil
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
