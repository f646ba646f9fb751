package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := map[string]RecordKind{
		"ppm":               KindPPM,
		" OCM ":             KindOCM,
		"Training":          KindTraining,
		"employee_training": KindTraining,
	}
	for raw, want := range cases {
		got, err := ParseKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", raw, got, err)
		}
	}

	if _, err := ParseKind("cmms"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestKindMetadata(t *testing.T) {
	if KindPPM.StoreKey() != "ppm_machines" || KindOCM.StoreKey() != "ocm_machines" || KindTraining.StoreKey() != "employee_trainings" {
		t.Fatalf("unexpected store keys")
	}
	if len(PPMHeaders) != 15 || len(OCMHeaders) != 10 || len(TrainingHeaders) != 4 {
		t.Fatalf("unexpected header counts %d %d %d", len(PPMHeaders), len(OCMHeaders), len(TrainingHeaders))
	}
	if !PPMHeaders.Contains("q3_engineer") {
		t.Fatalf("expected case-insensitive Contains")
	}
	for _, kind := range AllKinds() {
		headers := kind.SampleHeaders()
		for i, row := range kind.SampleRows() {
			if len(row) != len(headers) {
				t.Fatalf("%s sample row %d has %d cells for %d headers", kind, i, len(row), len(headers))
			}
		}
	}
}

func TestRecordNaturalKeysAndFlatten(t *testing.T) {
	ppm := PPMRecord{MachineDescriptor: MachineDescriptor{Equipment: "Pump", SerialNumber: "SN1"}}
	ppm.SetQuarter(2, MaintenanceSlot{Date: "2025-04-01T00:00:00.000Z", Engineer: "Ana"})
	if ppm.NaturalKey() != (NaturalKey{First: "Pump", Second: "SN1"}) {
		t.Fatalf("unexpected PPM key %v", ppm.NaturalKey())
	}
	flat := ppm.Flatten()
	if flat["Q2_Engineer"] != "Ana" || flat["Q1_Date"] != "" || len(flat) != len(PPMHeaders) {
		t.Fatalf("unexpected PPM flatten %v", flat)
	}
	if !ppm.Quarter(1).IsZero() || ppm.Quarter(5) != (MaintenanceSlot{}) {
		t.Fatalf("unexpected quarter access")
	}

	training := TrainingRecord{Name: "Sara", EmployeeID: "E1", Machines: []MachineTraining{{Name: "MRI", Trained: true}}}
	if training.WithIdentity("x").Identity() != "x" || training.ID != "" {
		t.Fatalf("WithIdentity must return a copy")
	}
	if !training.IsTrained("MRI") || training.IsTrained("CT") {
		t.Fatalf("unexpected trained flags")
	}
}

func TestMachineColumns(t *testing.T) {
	records := []TrainingRecord{
		{Machines: []MachineTraining{{Name: "MRI"}, {Name: "CT"}}},
		{Machines: []MachineTraining{{Name: "CT"}, {Name: "Ultrasound"}}},
	}
	if got := MachineColumns(records); !reflect.DeepEqual(got, []string{"MRI", "CT", "Ultrasound"}) {
		t.Fatalf("unexpected machine columns %v", got)
	}
}

func TestNormalizedRowFirstHeaderWins(t *testing.T) {
	row := NewNormalizedRow(3)
	row.Set("serial_number", "Serial Number", StringCell("A"))
	row.Set("serial_number", "SERIAL-NUMBER", StringCell("B"))
	row.Set("mri", "MRI", StringCell("Yes"))

	if row.Text("serial_number") != "A" || row.Label("serial_number") != "Serial Number" {
		t.Fatalf("first duplicate should win, got %q", row.Text("serial_number"))
	}
	if !reflect.DeepEqual(row.Keys(), []string{"serial_number", "mri"}) || row.Len() != 2 {
		t.Fatalf("unexpected keys %v", row.Keys())
	}
	if _, ok := row.Lookup("missing"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestErrorMessages(t *testing.T) {
	missing := &MissingColumnsError{Kind: KindOCM, Missing: []string{"Engineer", "Type"}}
	if missing.Error() != "OCM sheet is missing required columns: Engineer, Type" {
		t.Fatalf("unexpected message %q", missing.Error())
	}

	dup := &DuplicateKeyError{Kind: KindPPM, InBatch: []NaturalKey{{First: "Pump", Second: "SN1"}}}
	if dup.Error() != "duplicate PPM records (duplicated in file: Pump / SN1)" {
		t.Fatalf("unexpected message %q", dup.Error())
	}

	warning := UnparseableDateWarning{Row: 4, Field: "Q1_Date", Value: "soon"}
	if warning.Error() != `row 4 Q1_Date: unparseable date "soon"` {
		t.Fatalf("unexpected message %q", warning.Error())
	}

	invalid := &InvalidFileTypeError{FileName: "notes.txt", Accepted: []string{".xlsx", ".csv"}}
	if !strings.Contains(invalid.Error(), "accepted types are .xlsx, .csv") {
		t.Fatalf("unexpected message %q", invalid.Error())
	}
}
