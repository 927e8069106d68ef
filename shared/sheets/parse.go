package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"video-insights/internal/models"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	ErrEmptySheet        = errors.New("sheet has no header row")
)

// FormatFromURL infers the document format from a format/output query parameter or the path
// extension, defaulting to xlsx.
func FormatFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatXLSX
	}

	q := u.Query()
	for _, key := range []string{"format", "output"} {
		if f := normalizeFormat(q.Get(key)); f != "" {
			return f
		}
	}
	if f := normalizeFormat(strings.TrimPrefix(path.Ext(u.Path), ".")); f != "" {
		return f
	}
	return FormatXLSX
}

func normalizeFormat(s string) string {
	switch strings.ToLower(s) {
	case "xlsx":
		return FormatXLSX
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	}
	return ""
}

// Parse decodes a spreadsheet document into raw rows keyed by header
func Parse(data []byte, format string) ([]models.RawRow, error) {
	switch format {
	case FormatXLSX:
		return parseXLSX(data)
	case FormatCSV:
		return parseCSV(data)
	case FormatJSON:
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// parseXLSX reads the first worksheet only
func parseXLSX(data []byte) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheetList[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetList[0], err)
	}
	return rowsFromTable(rows)
}

func parseCSV(data []byte) ([]models.RawRow, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var table [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		table = append(table, record)
	}
	return rowsFromTable(table)
}

func parseJSON(data []byte) ([]models.RawRow, error) {
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode json rows: %w", err)
	}

	rows := make([]models.RawRow, 0, len(objects))
	for _, obj := range objects {
		if len(obj) == 0 {
			continue
		}
		rows = append(rows, models.RawRow(obj))
	}
	return rows, nil
}

// rowsFromTable treats the first row as headers. Blank cells are omitted and fully blank rows skipped.
func rowsFromTable(table [][]string) ([]models.RawRow, error) {
	if len(table) == 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]models.RawRow, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(models.RawRow, len(headers))
		for i, cell := range record {
			if i >= len(headers) || headers[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			row[headers[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
