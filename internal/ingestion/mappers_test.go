package ingestion

import (
	"fmt"
	"testing"

	"github.com/rpattn/engtrack/internal/domain"
)

func sequentialIDs(t *testing.T) {
	t.Helper()
	previous := newIdentity
	counter := 0
	newIdentity = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	t.Cleanup(func() { newIdentity = previous })
}

func rawRow(number int, headers []string, values ...any) domain.RawRow {
	cells := make([]domain.CellValue, len(values))
	for i, value := range values {
		cells[i] = domain.CellFromAny(value)
	}
	return domain.RawRow{Number: number, Headers: headers, Cells: padRow(cells, len(headers))}
}

func mustMatch(t *testing.T, headers []string, kind domain.RecordKind) HeaderMatch {
	t.Helper()
	match, err := MatchHeaders(headers, kind.Headers(), kind)
	if err != nil {
		t.Fatalf("headers did not match: %v", err)
	}
	return match
}

func TestMapPPMScenario(t *testing.T) {
	sequentialIDs(t)
	headers := domain.PPMHeaders.Clone()
	match := mustMatch(t, headers, domain.KindPPM)

	raw := rawRow(2, headers,
		"Infusion Pump", "Volumat", "SN1", "Fresenius", "LOG-1", "ICU", "Critical",
		"2025-03-01", "A", 45809, "B", "", "", "sometime", " D ",
	)

	record, warnings := MapPPM(NormalizeRow(raw), match)
	if record.ID != "id-1" {
		t.Fatalf("expected fresh identity, got %q", record.ID)
	}
	if record.Equipment != "Infusion Pump" || record.SerialNumber != "SN1" {
		t.Fatalf("unexpected descriptor: %+v", record.MachineDescriptor)
	}
	if record.Q1.Date != "2025-03-01T00:00:00.000Z" || record.Q1.Engineer != "A" {
		t.Fatalf("unexpected q1: %+v", record.Q1)
	}
	if record.Q2.Date != "2025-06-01T00:00:00.000Z" {
		t.Fatalf("expected serial date in q2, got %+v", record.Q2)
	}
	if !record.Q3.IsZero() {
		t.Fatalf("expected empty q3, got %+v", record.Q3)
	}
	if record.Q4.Date != "" || record.Q4.Engineer != "D" {
		t.Fatalf("expected q4 date cleared and engineer kept, got %+v", record.Q4)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if warnings[0].Row != 2 || warnings[0].Field != "Q4_Date" || warnings[0].Value != "sometime" {
		t.Fatalf("unexpected warning: %+v", warnings[0])
	}
}

func TestMapOCMReadsExplicitNextDate(t *testing.T) {
	sequentialIDs(t)
	headers := domain.OCMHeaders.Clone()
	match := mustMatch(t, headers, domain.KindOCM)

	raw := rawRow(5, headers,
		"Ventilator", "C6", "SN-9", "Hamilton", "LOG-9", "ICU", "Critical",
		"2025-01-10", "", "M. Haddad",
	)

	record, warnings := MapOCM(NormalizeRow(raw), match)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if record.LastMaintenanceDate != "2025-01-10T00:00:00.000Z" {
		t.Fatalf("unexpected last date %q", record.LastMaintenanceDate)
	}
	if record.NextMaintenanceDate != "" {
		t.Fatalf("next date must not be derived, got %q", record.NextMaintenanceDate)
	}
	if record.Engineer != "M. Haddad" {
		t.Fatalf("unexpected engineer %q", record.Engineer)
	}
}

func TestMapTrainingDynamicColumns(t *testing.T) {
	sequentialIDs(t)
	headers := []string{"Name", "Employee_ID", "Department", "Trainer", "sonar", "fmx"}
	match := mustMatch(t, headers, domain.KindTraining)

	raw := rawRow(2, headers, "Sara", "E-1", "Radiology", "Dr. M", "Yes", "No")

	record, warnings := MapTraining(NormalizeRow(raw), match)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if record.Name != "Sara" || record.EmployeeID != "E-1" || record.Trainer != "Dr. M" {
		t.Fatalf("unexpected fixed fields: %+v", record)
	}
	want := []domain.MachineTraining{{Name: "sonar", Trained: true}, {Name: "fmx", Trained: false}}
	if len(record.Machines) != len(want) {
		t.Fatalf("expected %d machines, got %+v", len(want), record.Machines)
	}
	for i := range want {
		if record.Machines[i] != want[i] {
			t.Fatalf("machine %d = %+v, want %+v", i, record.Machines[i], want[i])
		}
	}
}

func TestExtractDynamicColumnsTrainedValues(t *testing.T) {
	headers := []string{"Name", "Infusion Pump", "CT", "MRI", "X Ray", "Dialysis", "Echo"}
	raw := rawRow(3, headers, "Omar", "YES", true, "true ", 1, "n/a")

	machines := ExtractDynamicColumns(NormalizeRow(raw), []string{"name"})
	want := []domain.MachineTraining{
		{Name: "Infusion Pump", Trained: true},
		{Name: "CT", Trained: true},
		{Name: "MRI", Trained: true},
		{Name: "X Ray", Trained: false},
		{Name: "Dialysis", Trained: false},
		{Name: "Echo", Trained: false},
	}
	if len(machines) != len(want) {
		t.Fatalf("expected %d machines, got %+v", len(want), machines)
	}
	for i := range want {
		if machines[i] != want[i] {
			t.Fatalf("machine %d = %+v, want %+v", i, machines[i], want[i])
		}
	}
}
