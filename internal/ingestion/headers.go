package ingestion

import (
	"regexp"
	"strings"

	"github.com/rpattn/engtrack/internal/domain"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonHeaderRune = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

// CanonicalizeHeader trims raw, replaces whitespace runs with a single
// underscore and strips everything that is not a letter, digit or underscore.
// "  Serial  Number. " becomes "Serial_Number".
func CanonicalizeHeader(raw string) string {
	name := strings.TrimSpace(raw)
	name = whitespaceRun.ReplaceAllString(name, "_")
	return nonHeaderRune.ReplaceAllString(name, "")
}

// HeaderMatch resolves required headers against the columns of one sheet.
// Both access styles are supported: Index for positional extraction from a
// RawRow and Header for name-based extraction from a NormalizedRow.
type HeaderMatch struct {
	columns   map[string]int
	canonical []string
}

// Index returns the column position matched to required, or -1.
func (m HeaderMatch) Index(required string) int {
	idx, ok := m.columns[strings.ToLower(required)]
	if !ok {
		return -1
	}
	return idx
}

// Header returns the canonical sheet header matched to required, or "".
func (m HeaderMatch) Header(required string) string {
	idx := m.Index(required)
	if idx < 0 {
		return ""
	}
	return m.canonical[idx]
}

// MatchedHeaders returns the canonical sheet headers claimed by a required
// header, in column order.
func (m HeaderMatch) MatchedHeaders() []string {
	claimed := make([]bool, len(m.canonical))
	for _, idx := range m.columns {
		claimed[idx] = true
	}
	var headers []string
	for idx, ok := range claimed {
		if ok {
			headers = append(headers, m.canonical[idx])
		}
	}
	return headers
}

// MatchHeaders checks that every header in set is contained, ignoring case,
// in at least one canonicalized sheet header. An exact match wins over a
// substring match, and a column already claimed by an exact match is only
// reused when no other column fits. Every missing header is reported.
func MatchHeaders(sheetHeaders []string, set domain.CanonicalHeaderSet, kind domain.RecordKind) (HeaderMatch, error) {
	match := HeaderMatch{
		columns:   make(map[string]int, len(set)),
		canonical: make([]string, len(sheetHeaders)),
	}
	lowered := make([]string, len(sheetHeaders))
	for i, header := range sheetHeaders {
		match.canonical[i] = CanonicalizeHeader(header)
		lowered[i] = strings.ToLower(match.canonical[i])
	}

	claimed := make(map[int]bool, len(set))
	for _, required := range set {
		key := strings.ToLower(required)
		for i, candidate := range lowered {
			if candidate == key && !claimed[i] {
				match.columns[key] = i
				claimed[i] = true
				break
			}
		}
	}

	var missing []string
	for _, required := range set {
		key := strings.ToLower(required)
		if _, ok := match.columns[key]; ok {
			continue
		}
		fallback := -1
		for i, candidate := range lowered {
			if candidate == "" || !strings.Contains(candidate, key) {
				continue
			}
			if !claimed[i] {
				fallback = i
				break
			}
			if fallback < 0 {
				fallback = i
			}
		}
		if fallback < 0 {
			missing = append(missing, required)
			continue
		}
		match.columns[key] = fallback
		claimed[fallback] = true
	}

	if len(missing) > 0 {
		return HeaderMatch{}, &domain.MissingColumnsError{Kind: kind, Missing: missing}
	}
	return match, nil
}

// NormalizeRow re-keys a raw row by canonical header. Columns whose header
// canonicalizes to nothing are dropped.
func NormalizeRow(raw domain.RawRow) domain.NormalizedRow {
	row := domain.NewNormalizedRow(raw.Number)
	for idx, header := range raw.Headers {
		canonical := CanonicalizeHeader(header)
		if canonical == "" {
			continue
		}
		row.Set(canonical, strings.TrimSpace(header), raw.At(idx))
	}
	return row
}
