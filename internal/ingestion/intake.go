package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rpattn/engtrack/internal/domain"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format is the decoded container type of an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	extensionFormats = map[string]Format{
		".xlsx": FormatXLSX,
		".xls":  FormatXLS,
		".csv":  FormatCSV,
	}

	contentTypeFormats = map[string]Format{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
		"application/vnd.ms-excel": FormatXLS,
		"text/csv":                 FormatCSV,
		"application/csv":          FormatCSV,
	}

	// acceptedTypes is reported back in InvalidFileTypeError.
	acceptedTypes = []string{".xlsx", ".xls", ".csv"}
)

// DetectFormat validates the file name and content type of an upload. The
// extension decides the decoder; a content type, when it is specific, must
// also be one of the spreadsheet types. Browsers label CSV files as
// application/vnd.ms-excel often enough that the two are not cross-checked.
func DetectFormat(fileName, contentType string) (Format, error) {
	invalid := &domain.InvalidFileTypeError{
		FileName:    fileName,
		ContentType: contentType,
		Accepted:    append([]string(nil), acceptedTypes...),
	}

	mediaType := ""
	if strings.TrimSpace(contentType) != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", invalid
		}
		mediaType = strings.ToLower(parsed)
	}
	typeFormat, typeKnown := contentTypeFormats[mediaType]
	if mediaType != "" && mediaType != "application/octet-stream" && !typeKnown {
		return "", invalid
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	if ext != "" {
		format, ok := extensionFormats[ext]
		if !ok {
			return "", invalid
		}
		return format, nil
	}
	if typeKnown {
		return typeFormat, nil
	}
	return "", invalid
}

// ReadSheet validates the upload and decodes its first sheet. Row 0 is the
// header row; blank data rows are dropped and every remaining row is padded
// or truncated to the header width.
func ReadSheet(fileName, contentType string, payload []byte) (domain.Sheet, error) {
	format, err := DetectFormat(fileName, contentType)
	if err != nil {
		return domain.Sheet{}, err
	}
	if len(payload) == 0 {
		return domain.Sheet{}, &domain.EmptyFileError{FileName: fileName}
	}

	var (
		name string
		rows []sheetRow
	)
	switch format {
	case FormatCSV:
		name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		rows, err = parseCSV(payload)
	case FormatXLSX:
		name, rows, err = parseExcel(payload)
	case FormatXLS:
		name, rows, err = parseLegacyExcel(payload)
	}
	if err != nil {
		return domain.Sheet{}, err
	}

	sheet := buildSheet(name, rows)
	if len(sheet.Headers) == 0 || len(sheet.Rows) == 0 {
		return domain.Sheet{}, &domain.EmptyFileError{FileName: fileName}
	}
	return sheet, nil
}

// csvDecoder strips a UTF-8/UTF-16 byte order mark and falls back to
// Windows-1252 for payloads that are not valid UTF-8.
func csvDecoder(payload []byte) transform.Transformer {
	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !utf8.Valid(payload) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	return xunicode.BOMOverride(fallback)
}

func parseCSV(payload []byte) ([]sheetRow, error) {
	reader := transform.NewReader(bytes.NewReader(payload), csvDecoder(payload))

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	var rows []sheetRow
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		// The reader skips empty lines, so row numbers come from the
		// position of the first field rather than the record count.
		line, _ := csvReader.FieldPos(0)
		cells := make([]domain.CellValue, len(record))
		for j, value := range record {
			cells[j] = domain.StringCell(value)
		}
		rows = append(rows, sheetRow{number: line, cells: cells})
	}
	return rows, nil
}

func parseExcel(payload []byte) (string, []sheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, nil
	}
	sheet := sheets[0]

	// Raw values keep date cells as serial numbers instead of the display
	// format chosen by the author.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	records := make([]sheetRow, len(rows))
	for r, row := range rows {
		cells := make([]domain.CellValue, len(row))
		for c, raw := range row {
			if raw == "" {
				cells[c] = domain.EmptyCell()
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return "", nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			cellType, err := f.GetCellType(sheet, ref)
			if err != nil {
				return "", nil, fmt.Errorf("failed to read cell type %s: %w", ref, err)
			}
			cells[c] = excelCell(cellType, raw)
		}
		records[r] = sheetRow{number: r + 1, cells: cells}
	}
	return sheet, records, nil
}

func excelCell(cellType excelize.CellType, raw string) domain.CellValue {
	switch cellType {
	case excelize.CellTypeBool:
		return domain.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate:
		if number, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return domain.NumberCell(number)
		}
	}
	return domain.StringCell(raw)
}

// parseLegacyExcel reads BIFF workbooks. The decoder returns formatted
// strings only, so every cell is a string cell.
func parseLegacyExcel(payload []byte) (name string, records []sheetRow, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("failed to read xls: %v", recovered)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(payload), "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("failed to open xls: %w", err)
	}
	if workbook == nil {
		return "", nil, errors.New("failed to open xls: no workbook stream")
	}
	if workbook.NumSheets() == 0 {
		return "", nil, nil
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return "", nil, nil
	}

	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := legacyRow(sheet, i)
		if row == nil {
			records = append(records, sheetRow{number: i + 1})
			continue
		}
		if i == 0 {
			width = legacyWidth(row)
		}
		cells := make([]domain.CellValue, max(row.LastCol(), width))
		for c := range cells {
			cells[c] = domain.StringCell(row.Col(c))
		}
		records = append(records, sheetRow{number: i + 1, cells: cells})
	}
	return sheet.Name, records, nil
}

// maxLegacyColumns is the BIFF8 column limit.
const maxLegacyColumns = 256

// legacyRow returns nil for rows with no records; the decoder panics on
// those instead of reporting them absent.
func legacyRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// legacyWidth measures the header by content. Rows written without a ROW
// record report a last column of zero.
func legacyWidth(row *xls.Row) int {
	width := row.LastCol()
	for c := width; c < maxLegacyColumns; c++ {
		if strings.TrimSpace(row.Col(c)) != "" {
			width = c + 1
		}
	}
	return width
}

// sheetRow is one decoded source row with its 1-based position.
type sheetRow struct {
	number int
	cells  []domain.CellValue
}

func buildSheet(name string, rows []sheetRow) domain.Sheet {
	sheet := domain.Sheet{Name: name}
	if len(rows) == 0 {
		return sheet
	}

	headers := make([]string, len(rows[0].cells))
	for i, cell := range rows[0].cells {
		headers[i] = strings.TrimSpace(cell.String())
	}
	headers = trimTrailingBlank(headers)
	sheet.Headers = headers
	if len(headers) == 0 {
		return sheet
	}

	for _, source := range rows[1:] {
		row := domain.RawRow{
			Number:  source.number,
			Headers: headers,
			Cells:   padRow(source.cells, len(headers)),
		}
		if row.IsBlank() {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func trimTrailingBlank(headers []string) []string {
	end := len(headers)
	for end > 0 && headers[end-1] == "" {
		end--
	}
	return headers[:end]
}

func padRow(row []domain.CellValue, length int) []domain.CellValue {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]domain.CellValue, length)
	copy(padded, row)
	return padded
}
