package ingestion

import (
	"strings"

	"github.com/rpattn/engtrack/internal/domain"

	"github.com/google/uuid"
)

// newIdentity assigns record ids; tests replace it for deterministic output.
var newIdentity = uuid.NewString

// Mapper converts one normalized row into a typed record with a fresh
// identity, returning date warnings for fields it had to leave empty.
type Mapper[T any] func(row domain.NormalizedRow, match HeaderMatch) (T, []domain.UnparseableDateWarning)

type rowReader struct {
	row      domain.NormalizedRow
	match    HeaderMatch
	warnings []domain.UnparseableDateWarning
}

func (r *rowReader) text(required string) string {
	header := r.match.Header(required)
	if header == "" {
		return ""
	}
	return r.row.Text(header)
}

func (r *rowReader) date(required string) string {
	header := r.match.Header(required)
	if header == "" {
		return ""
	}
	value, warning := NormalizeDate(r.row.Get(header))
	if warning != nil {
		warning.Row = r.row.Number
		warning.Field = required
		r.warnings = append(r.warnings, *warning)
	}
	return value
}

func (r *rowReader) machine() domain.MachineDescriptor {
	return domain.MachineDescriptor{
		Equipment:    r.text(domain.HeaderEquipment),
		Model:        r.text(domain.HeaderModel),
		SerialNumber: r.text(domain.HeaderSerialNumber),
		Manufacturer: r.text(domain.HeaderManufacturer),
		LogNo:        r.text(domain.HeaderLogNo),
		Department:   r.text(domain.HeaderDepartment),
		Type:         r.text(domain.HeaderType),
	}
}

// MapPPM builds a PPM record with its four quarterly slots.
func MapPPM(row domain.NormalizedRow, match HeaderMatch) (domain.PPMRecord, []domain.UnparseableDateWarning) {
	reader := &rowReader{row: row, match: match}
	record := domain.PPMRecord{
		ID:                newIdentity(),
		MachineDescriptor: reader.machine(),
	}
	for q := 1; q <= 4; q++ {
		dateHeader, engineerHeader := domain.QuarterHeaders(q)
		record.SetQuarter(q, domain.MaintenanceSlot{
			Date:     reader.date(dateHeader),
			Engineer: reader.text(engineerHeader),
		})
	}
	return record, reader.warnings
}

// MapOCM builds an OCM record. The next maintenance date is read from its
// own column as given; it is never computed from the last one.
func MapOCM(row domain.NormalizedRow, match HeaderMatch) (domain.OCMRecord, []domain.UnparseableDateWarning) {
	reader := &rowReader{row: row, match: match}
	record := domain.OCMRecord{
		ID:                  newIdentity(),
		MachineDescriptor:   reader.machine(),
		LastMaintenanceDate: reader.date(domain.HeaderLastMaintenance),
		NextMaintenanceDate: reader.date(domain.HeaderNextMaintenance),
		Engineer:            reader.text(domain.HeaderEngineer),
	}
	return record, reader.warnings
}

// MapTraining builds a training record from the four fixed employee columns;
// every other column becomes a machine through ExtractDynamicColumns.
func MapTraining(row domain.NormalizedRow, match HeaderMatch) (domain.TrainingRecord, []domain.UnparseableDateWarning) {
	reader := &rowReader{row: row, match: match}
	record := domain.TrainingRecord{
		ID:         newIdentity(),
		Name:       reader.text(domain.HeaderName),
		EmployeeID: reader.text(domain.HeaderEmployeeID),
		Department: reader.text(domain.HeaderDepartment),
		Trainer:    reader.text(domain.HeaderTrainer),
		Machines:   ExtractDynamicColumns(row, match.MatchedHeaders()),
	}
	return record, nil
}

// ExtractDynamicColumns treats every column of row that is not one of the
// fixed canonical headers as a machine, in sheet order. The machine is named
// by the column's original label and is trained only when the cell is
// boolean true or reads "yes" or "true" in any case.
func ExtractDynamicColumns(row domain.NormalizedRow, fixedHeaders []string) []domain.MachineTraining {
	fixed := make(map[string]struct{}, len(fixedHeaders))
	for _, header := range fixedHeaders {
		fixed[strings.ToLower(header)] = struct{}{}
	}

	machines := []domain.MachineTraining{}
	for _, key := range row.Keys() {
		if _, ok := fixed[strings.ToLower(key)]; ok {
			continue
		}
		name := strings.TrimSpace(row.Label(key))
		if name == "" {
			name = key
		}
		machines = append(machines, domain.MachineTraining{
			Name:    name,
			Trained: isTrained(row.Get(key)),
		})
	}
	return machines
}

func isTrained(value domain.CellValue) bool {
	if flag, ok := value.Bool(); ok {
		return flag
	}
	text, ok := value.Text()
	if !ok {
		return false
	}
	text = strings.TrimSpace(text)
	return strings.EqualFold(text, "yes") || strings.EqualFold(text, "true")
}
