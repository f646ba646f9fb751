package domain

import "strings"

// Sheet is the decoded first worksheet of an uploaded file. Row 0 of the
// source is always the header row.
type Sheet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"rows"`
}

// RawRow is one data row below the header, keyed by the original header
// strings in sheet order.
type RawRow struct {
	Number  int         `json:"rowNumber"` // 1-based position in the source sheet
	Headers []string    `json:"headers"`
	Cells   []CellValue `json:"cells"`
}

// Get returns the value under the original header (exact match).
func (r RawRow) Get(header string) CellValue {
	for idx, h := range r.Headers {
		if h == header && idx < len(r.Cells) {
			return r.Cells[idx]
		}
	}
	return EmptyCell()
}

// At returns the value at column idx; out-of-range columns are empty.
func (r RawRow) At(idx int) CellValue {
	if idx < 0 || idx >= len(r.Cells) {
		return EmptyCell()
	}
	return r.Cells[idx]
}

// IsBlank reports whether every cell is empty.
func (r RawRow) IsBlank() bool {
	for _, cell := range r.Cells {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}

// NormalizedRow maps canonical headers to the original cell values. It keeps
// the original labels and sheet order so schema-on-read columns (training
// machines) can be reported under the name the author typed.
type NormalizedRow struct {
	Number int
	values map[string]CellValue
	labels map[string]string
	order  []string
}

// NewNormalizedRow builds an empty row for the given sheet row number.
func NewNormalizedRow(number int) NormalizedRow {
	return NormalizedRow{
		Number: number,
		values: make(map[string]CellValue),
		labels: make(map[string]string),
	}
}

// Set stores value under the canonical header. The first occurrence of a
// canonical header wins; later duplicate columns are ignored.
func (r *NormalizedRow) Set(canonical, label string, value CellValue) {
	if r.values == nil {
		r.values = make(map[string]CellValue)
		r.labels = make(map[string]string)
	}
	if _, exists := r.values[canonical]; exists {
		return
	}
	r.values[canonical] = value
	r.labels[canonical] = label
	r.order = append(r.order, canonical)
}

// Get returns the value stored under the canonical header.
func (r NormalizedRow) Get(canonical string) CellValue {
	return r.values[canonical]
}

// Lookup is Get with a presence flag.
func (r NormalizedRow) Lookup(canonical string) (CellValue, bool) {
	value, ok := r.values[canonical]
	return value, ok
}

// Text returns the trimmed display string under the canonical header.
func (r NormalizedRow) Text(canonical string) string {
	return strings.TrimSpace(r.values[canonical].String())
}

// Label returns the original header text for a canonical header.
func (r NormalizedRow) Label(canonical string) string {
	return r.labels[canonical]
}

// Keys returns canonical headers in sheet order.
func (r NormalizedRow) Keys() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of distinct canonical headers.
func (r NormalizedRow) Len() int { return len(r.order) }
