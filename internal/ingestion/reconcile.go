package ingestion

import (
	"fmt"
	"strings"

	"github.com/rpattn/engtrack/internal/domain"
)

// DuplicatePolicy selects how repeated natural keys are handled on import.
type DuplicatePolicy string

const (
	// DuplicatePolicyMerge folds duplicates into the collection, later rows winning.
	DuplicatePolicyMerge DuplicatePolicy = "merge"
	// DuplicatePolicyStrict rejects a batch that repeats a key or hits a stored one.
	DuplicatePolicyStrict DuplicatePolicy = "strict"
)

// ParseDuplicatePolicy maps configuration text to a policy; empty means merge.
func ParseDuplicatePolicy(raw string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DuplicatePolicyMerge:
		return DuplicatePolicyMerge, nil
	case DuplicatePolicyStrict:
		return DuplicatePolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", raw)
	}
}

// MergeStats counts what a merge did to the collection.
type MergeStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Merge folds incoming into a copy of existing. A record whose natural key
// matches an entry already in the result replaces the first such entry and
// takes over its identity; any other record is appended with its own. The
// result is searched as it grows, so a later duplicate inside incoming
// overwrites an earlier one. existing is never modified.
func Merge[T domain.Record[T]](existing, incoming []T) ([]T, MergeStats) {
	result := make([]T, len(existing), len(existing)+len(incoming))
	copy(result, existing)

	var stats MergeStats
	for _, record := range incoming {
		key := record.NaturalKey()
		matched := -1
		for idx := range result {
			if result[idx].NaturalKey() == key {
				matched = idx
				break
			}
		}
		if matched < 0 {
			result = append(result, record)
			stats.Created++
			continue
		}
		result[matched] = record.WithIdentity(result[matched].Identity())
		stats.Updated++
	}
	return result, stats
}

// CheckDuplicates implements the strict policy: it lists keys repeated within
// incoming and keys of incoming that already exist, each reported once.
func CheckDuplicates[T domain.Record[T]](kind domain.RecordKind, existing, incoming []T) error {
	stored := make(map[domain.NaturalKey]struct{}, len(existing))
	for _, record := range existing {
		stored[record.NaturalKey()] = struct{}{}
	}

	var (
		inBatch   []domain.NaturalKey
		clashes   []domain.NaturalKey
		seen      = make(map[domain.NaturalKey]int, len(incoming))
		reported  = make(map[domain.NaturalKey]bool)
		collision = make(map[domain.NaturalKey]bool)
	)
	for _, record := range incoming {
		key := record.NaturalKey()
		seen[key]++
		if seen[key] == 2 && !reported[key] {
			inBatch = append(inBatch, key)
			reported[key] = true
		}
		if _, ok := stored[key]; ok && !collision[key] {
			clashes = append(clashes, key)
			collision[key] = true
		}
	}

	if len(inBatch) == 0 && len(clashes) == 0 {
		return nil
	}
	return &domain.DuplicateKeyError{Kind: kind, InBatch: inBatch, Existing: clashes}
}
