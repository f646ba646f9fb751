package ingestion

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/engtrack/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ISODateLayout renders normalized dates with millisecond precision in UTC.
const ISODateLayout = "2006-01-02T15:04:05.000Z"

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

var (
	dateLayouts = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000",
		"2006-1-2",
		"2006/01/02",
		"2006/1/2",
		"2 Jan 2006",
		"02-Jan-2006",
		"Jan 2, 2006",
		"January 2, 2006",
	}

	numericDate = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dateParts   = regexp.MustCompile(`[-/]`)
)

// NormalizeDate converts a cell into an ISO-8601 timestamp. Empty cells give
// "". Numbers, and strings made only of digits, are spreadsheet serials in
// the 1900 system. Other strings are tried against the known layouts, then
// as month-day-year with "-" or "/" separators. Anything else gives "" and a
// warning; the function never fails.
func NormalizeDate(value domain.CellValue) (string, *domain.UnparseableDateWarning) {
	if value.IsEmpty() {
		return "", nil
	}

	switch value.Kind() {
	case domain.CellNumber:
		serial, _ := value.Number()
		if ts, ok := fromSerial(serial); ok {
			return formatISO(ts), nil
		}
	case domain.CellString:
		raw, _ := value.Text()
		if ts, ok := parseDateString(strings.TrimSpace(raw)); ok {
			return formatISO(ts), nil
		}
	}

	return "", &domain.UnparseableDateWarning{Value: value.String()}
}

func formatISO(ts time.Time) string {
	return ts.UTC().Format(ISODateLayout)
}

func fromSerial(serial float64) (time.Time, bool) {
	if serial <= 0 || serial > maxSerial {
		return time.Time{}, false
	}
	ts, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func parseDateString(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if numericDate.MatchString(raw) {
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromSerial(serial)
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return parseMonthDayYear(raw)
}

// parseMonthDayYear accepts "3/1/2025", "03-01-25" and similar. Two digit
// years are taken as 20xx. Out-of-range parts are rejected rather than
// rolled over.
func parseMonthDayYear(raw string) (time.Time, bool) {
	parts := dateParts.Split(raw, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	values := make([]int, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return time.Time{}, false
		}
		if i == 2 && len(part) <= 2 {
			n += 2000
		}
		values[i] = n
	}

	month, day, year := values[0], values[1], values[2]
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 || year > 9999 {
		return time.Time{}, false
	}
	ts := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if ts.Month() != time.Month(month) || ts.Day() != day {
		return time.Time{}, false
	}
	return ts, true
}
