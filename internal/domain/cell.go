package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CellKind tags the variant held by a CellValue.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
)

func (k CellKind) String() string {
	switch k {
	case CellString:
		return "string"
	case CellNumber:
		return "number"
	case CellBool:
		return "boolean"
	default:
		return "empty"
	}
}

// CellValue is a single spreadsheet cell: string, number, boolean or empty.
// The zero value is an empty cell.
type CellValue struct {
	kind CellKind
	str  string
	num  float64
	flag bool
}

// EmptyCell returns the absent value.
func EmptyCell() CellValue { return CellValue{} }

// StringCell wraps a text value.
func StringCell(value string) CellValue { return CellValue{kind: CellString, str: value} }

// NumberCell wraps a numeric value. NaN and infinities collapse to empty.
func NumberCell(value float64) CellValue {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return CellValue{}
	}
	return CellValue{kind: CellNumber, num: value}
}

// BoolCell wraps a boolean value.
func BoolCell(value bool) CellValue { return CellValue{kind: CellBool, flag: value} }

// CellFromAny converts loosely typed values (JSON-decoded rows, export inputs)
// into a CellValue.
func CellFromAny(value any) CellValue {
	switch v := value.(type) {
	case nil:
		return EmptyCell()
	case CellValue:
		return v
	case string:
		return StringCell(v)
	case bool:
		return BoolCell(v)
	case float64:
		return NumberCell(v)
	case float32:
		return NumberCell(float64(v))
	case int:
		return NumberCell(float64(v))
	case int32:
		return NumberCell(float64(v))
	case int64:
		return NumberCell(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return NumberCell(f)
		}
		return StringCell(v.String())
	default:
		return StringCell(strings.TrimSpace(jsonString(v)))
	}
}

func jsonString(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// Kind reports which variant is held.
func (c CellValue) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell is absent or holds only whitespace.
func (c CellValue) IsEmpty() bool {
	switch c.kind {
	case CellEmpty:
		return true
	case CellString:
		return strings.TrimSpace(c.str) == ""
	default:
		return false
	}
}

// Text returns the string payload; ok is false for non-string cells.
func (c CellValue) Text() (string, bool) { return c.str, c.kind == CellString }

// Number returns the numeric payload; ok is false for non-number cells.
func (c CellValue) Number() (float64, bool) { return c.num, c.kind == CellNumber }

// Bool returns the boolean payload; ok is false for non-boolean cells.
func (c CellValue) Bool() (bool, bool) { return c.flag, c.kind == CellBool }

// String renders the cell the way a spreadsheet would display it unformatted.
// Numbers are printed without exponent or trailing zeros.
func (c CellValue) String() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellBool:
		if c.flag {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Any returns the payload as a plain Go value (nil for empty cells).
func (c CellValue) Any() any {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return c.num
	case CellBool:
		return c.flag
	default:
		return nil
	}
}

// MarshalJSON encodes the cell as its plain JSON value.
func (c CellValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Any())
}

// UnmarshalJSON decodes any JSON scalar into a cell.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = CellFromAny(raw)
	return nil
}
