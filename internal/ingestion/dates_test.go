package ingestion

import (
	"testing"

	"github.com/rpattn/engtrack/internal/domain"
)

func TestNormalizeDateAcceptedRepresentations(t *testing.T) {
	cases := []struct {
		name  string
		value domain.CellValue
		want  string
	}{
		{"serial", domain.NumberCell(45717), "2025-03-01T00:00:00.000Z"},
		{"serial with time", domain.NumberCell(45717.5), "2025-03-01T12:00:00.000Z"},
		{"serial as text", domain.StringCell("45717"), "2025-03-01T00:00:00.000Z"},
		{"iso date", domain.StringCell("2025-03-01"), "2025-03-01T00:00:00.000Z"},
		{"iso timestamp with offset", domain.StringCell("2025-03-01T02:30:00+02:00"), "2025-03-01T00:30:00.000Z"},
		{"minute precision", domain.StringCell("2025-03-01 10:30"), "2025-03-01T10:30:00.000Z"},
		{"minute precision with T", domain.StringCell("2025-03-01T10:30"), "2025-03-01T10:30:00.000Z"},
		{"iso slash", domain.StringCell("2025/3/1"), "2025-03-01T00:00:00.000Z"},
		{"month day year slash", domain.StringCell("3/1/2025"), "2025-03-01T00:00:00.000Z"},
		{"month day year dash", domain.StringCell("12-31-2024"), "2024-12-31T00:00:00.000Z"},
		{"two digit year", domain.StringCell("03/01/25"), "2025-03-01T00:00:00.000Z"},
		{"padded", domain.StringCell("  2025-03-01 "), "2025-03-01T00:00:00.000Z"},
		{"long form", domain.StringCell("March 1, 2025"), "2025-03-01T00:00:00.000Z"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, warning := NormalizeDate(tc.value)
			if warning != nil {
				t.Fatalf("unexpected warning: %v", warning)
			}
			if got != tc.want {
				t.Fatalf("NormalizeDate(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestNormalizeDateEmptyIsSilent(t *testing.T) {
	for _, value := range []domain.CellValue{domain.EmptyCell(), domain.StringCell("   ")} {
		got, warning := NormalizeDate(value)
		if got != "" || warning != nil {
			t.Fatalf("expected empty result without warning, got %q %v", got, warning)
		}
	}
}

func TestNormalizeDateUnparseableWarns(t *testing.T) {
	cases := []domain.CellValue{
		domain.StringCell("next spring"),
		domain.StringCell("13/45/2025"),
		domain.StringCell("2/30/2025"),
		domain.StringCell("1/2/3/4"),
		domain.NumberCell(-3),
		domain.BoolCell(true),
	}
	for _, value := range cases {
		got, warning := NormalizeDate(value)
		if got != "" {
			t.Fatalf("expected empty string for %v, got %q", value, got)
		}
		if warning == nil {
			t.Fatalf("expected warning for %v", value)
		}
		if warning.Value != value.String() {
			t.Fatalf("warning should carry the raw value, got %q", warning.Value)
		}
	}
}
