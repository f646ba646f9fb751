package domain

import (
	"fmt"
	"strings"
)

// InvalidFileTypeError rejects an upload before any parsing begins.
type InvalidFileTypeError struct {
	FileName    string
	ContentType string
	Accepted    []string
}

func (e *InvalidFileTypeError) Error() string {
	name := e.FileName
	if name == "" {
		name = "upload"
	}
	msg := fmt.Sprintf("invalid file type for %s", name)
	if e.ContentType != "" {
		msg += fmt.Sprintf(" (%s)", e.ContentType)
	}
	if len(e.Accepted) > 0 {
		msg += fmt.Sprintf(": accepted types are %s", strings.Join(e.Accepted, ", "))
	}
	return msg
}

// EmptyFileError means the first sheet has no data rows below its header.
type EmptyFileError struct {
	FileName string
}

func (e *EmptyFileError) Error() string {
	if e.FileName == "" {
		return "file contains no data rows"
	}
	return fmt.Sprintf("file %s contains no data rows", e.FileName)
}

// MissingColumnsError lists every required header that no sheet header matched.
type MissingColumnsError struct {
	Kind    RecordKind
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	label := "sheet"
	if e.Kind != "" {
		label = e.Kind.Label() + " sheet"
	}
	return fmt.Sprintf("%s is missing required columns: %s", label, strings.Join(e.Missing, ", "))
}

// UnparseableDateWarning is a non-fatal diagnostic for one cell. The field is
// stored as an empty string and the row is otherwise imported.
type UnparseableDateWarning struct {
	Row   int    `json:"row,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value"`
}

func (w UnparseableDateWarning) Error() string {
	var location []string
	if w.Row > 0 {
		location = append(location, fmt.Sprintf("row %d", w.Row))
	}
	if w.Field != "" {
		location = append(location, w.Field)
	}
	if len(location) == 0 {
		return fmt.Sprintf("unparseable date %q", w.Value)
	}
	return fmt.Sprintf("%s: unparseable date %q", strings.Join(location, " "), w.Value)
}

// EmptyExportError reports an export requested over zero records; no file is produced.
type EmptyExportError struct {
	Name string
}

func (e *EmptyExportError) Error() string {
	if e.Name == "" {
		return "nothing to export"
	}
	return fmt.Sprintf("nothing to export for %s", e.Name)
}

// DuplicateKeyError is raised by the strict duplicate policy. InBatch holds
// keys repeated inside the upload, Existing keys that are already stored.
type DuplicateKeyError struct {
	Kind     RecordKind
	InBatch  []NaturalKey
	Existing []NaturalKey
}

func (e *DuplicateKeyError) Error() string {
	var parts []string
	if len(e.InBatch) > 0 {
		parts = append(parts, "duplicated in file: "+joinKeys(e.InBatch))
	}
	if len(e.Existing) > 0 {
		parts = append(parts, "already stored: "+joinKeys(e.Existing))
	}
	return fmt.Sprintf("duplicate %s records (%s)", e.Kind.Label(), strings.Join(parts, "; "))
}

func joinKeys(keys []NaturalKey) string {
	rendered := make([]string, len(keys))
	for i, key := range keys {
		rendered[i] = key.String()
	}
	return strings.Join(rendered, ", ")
}
