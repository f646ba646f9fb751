package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the media type of every generated workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	minColumnWidth = 10
	maxColumnWidth = 48
)

// Workbook is a generated single-sheet spreadsheet.
type Workbook struct {
	FileName string
	Rows     int
	Data     []byte
}

// writeWorkbook renders headers and rows onto one sheet named sheetName.
// The header row is bold and columns are sized to their longest value.
func writeWorkbook(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if name := sheetTitle(sheetName); name != "" && name != sheet {
		if err := f.SetSheetName(sheet, name); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		sheet = name
	}

	header := make([]any, len(headers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		header[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	for idx, row := range rows {
		values := make([]any, len(headers))
		for col := range headers {
			if col < len(row) {
				values[col] = cellValue(row[col])
			}
			if text, ok := values[col].(string); ok {
				if n := utf8.RuneCountInString(text); n > widths[col] {
					widths[col] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, fmt.Errorf("resolve row %d: %w", idx+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column %d: %w", col+1, err)
		}
		if err := f.SetColWidth(sheet, name, name, clampWidth(width)); err != nil {
			return nil, fmt.Errorf("size column %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func clampWidth(chars int) float64 {
	width := chars + 2
	if width < minColumnWidth {
		width = minColumnWidth
	}
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	return float64(width)
}

// cellValue keeps scalars typed so numbers and booleans stay numbers and
// booleans in the sheet; everything else is written as text.
func cellValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool, float64, float32, int, int32, int64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return formatValue(v)
	}
}

// formatValue renders the non-scalar values cellValue passes through.
func formatValue(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format("2006-01-02T15:04:05.000Z")
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// sheetTitle drops characters excelize rejects in sheet names and applies
// the 31 character limit.
func sheetTitle(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

// sanitizeFileComponent keeps a caller supplied base name readable while
// removing path separators and characters that are unsafe in file names.
func sanitizeFileComponent(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return strings.Trim(builder.String(), "_.")
}

// Save writes wb into dir under its file name. The file is written to a
// temporary name first and renamed into place.
func Save(dir string, wb Workbook) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export directory: %w", err)
	}
	finalPath := filepath.Join(dir, filepath.Base(wb.FileName))

	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(wb.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("move export into place: %w", err)
	}
	return finalPath, nil
}
