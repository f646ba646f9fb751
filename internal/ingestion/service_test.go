package ingestion

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rpattn/engtrack/internal/domain"
	"github.com/rpattn/engtrack/internal/repository"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const ppmCSVHeader = "Equipment,Model,Serial Number,Manufacturer,Log No,Department,Type,Q1 Date,Q1 Engineer,Q2 Date,Q2 Engineer,Q3 Date,Q3 Engineer,Q4 Date,Q4 Engineer\n"

func newTestService(t *testing.T, opts ...Option) (*Service, repository.Collections, *repository.MemoryIngestionLogRepository) {
	t.Helper()
	collections := repository.NewCollections(repository.NewMemoryBlobStore())
	logs := repository.NewMemoryIngestionLogRepository()
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	return NewService(collections, logs, opts...), collections, logs
}

func csvUpload(name, body string) Upload {
	return Upload{FileName: name, ContentType: "text/csv", Data: strings.NewReader(body)}
}

func TestServiceImportPPMScenario(t *testing.T) {
	service, collections, _ := newTestService(t)
	body := ppmCSVHeader +
		"Infusion Pump,Volumat,SN1,Fresenius,LOG-1,ICU,Critical,2025-03-01,A,,,,,,\n"

	summary, err := service.Import(context.Background(), domain.KindPPM, csvUpload("ppm.csv", body))
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if summary.TotalRows != 1 || summary.Created != 1 || summary.CollectionSize != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored, err := collections.PPM.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(stored))
	}
	if stored[0].Q1.Date != "2025-03-01T00:00:00.000Z" || stored[0].Q1.Engineer != "A" {
		t.Fatalf("unexpected q1 slot: %+v", stored[0].Q1)
	}
	if stored[0].ID == "" {
		t.Fatal("expected identity to be assigned")
	}
}

func TestServiceImportIsIdempotent(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	body := ppmCSVHeader +
		"Pump,M1,SN1,Acme,L1,ICU,Critical,2025-01-01,A,2025-04-01,A,2025-07-01,B,2025-10-01,B\n" +
		"Monitor,M2,SN2,Acme,L2,ER,General,,,,,,,,\n"

	first, err := service.Import(ctx, domain.KindPPM, csvUpload("ppm.csv", body))
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	before, _ := service.PPM().Records(ctx)

	second, err := service.Import(ctx, domain.KindPPM, csvUpload("ppm.csv", body))
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	after, _ := service.PPM().Records(ctx)

	if first.CollectionSize != 2 || second.CollectionSize != 2 {
		t.Fatalf("collection size changed: %d then %d", first.CollectionSize, second.CollectionSize)
	}
	if second.Created != 0 || second.Updated != 2 {
		t.Fatalf("expected only updates on re-import, got %+v", second)
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("identity changed for %s: %s -> %s", before[i].Equipment, before[i].ID, after[i].ID)
		}
	}
}

func TestServiceImportLastRowWins(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	body := "Name,Employee ID,Department,Trainer,CT\n" +
		"Sara,E1,Radiology,Dr. M,No\n" +
		"Sara,E1,ICU,Dr. K,Yes\n"

	summary, err := service.Import(ctx, domain.KindTraining, csvUpload("training.csv", body))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if summary.CollectionSize != 1 {
		t.Fatalf("expected one record, got %d", summary.CollectionSize)
	}

	records, _ := service.Training().Records(ctx)
	if records[0].Department != "ICU" || records[0].Trainer != "Dr. K" || !records[0].IsTrained("CT") {
		t.Fatalf("expected later row values, got %+v", records[0])
	}
}

func TestServiceImportMissingColumnPersistsNothing(t *testing.T) {
	service, collections, logs := newTestService(t)
	ctx := context.Background()
	body := strings.Replace(ppmCSVHeader, "Manufacturer,", "", 1) +
		"Pump,M1,SN1,L1,ICU,Critical,,,,,,,,\n"

	_, err := service.Import(ctx, domain.KindPPM, csvUpload("ppm.csv", body))
	var missing *domain.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "Manufacturer" {
		t.Fatalf("expected Manufacturer to be named, got %v", missing.Missing)
	}
	if !strings.Contains(err.Error(), "Manufacturer") {
		t.Fatalf("message should name the column: %v", err)
	}

	stored, _ := collections.PPM.Load(ctx)
	if len(stored) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(stored))
	}

	entries, _ := logs.List(ctx, domain.KindPPM, "ppm.csv", 10, 0)
	if len(entries) != 1 || entries[0].Severity != domain.SeverityError {
		t.Fatalf("expected one error log entry, got %+v", entries)
	}
}

func TestServiceImportRecordsDateWarnings(t *testing.T) {
	recorder := metrics.NewManager()
	service, _, logs := newTestService(t, WithMetrics(recorder))
	ctx := context.Background()
	body := "Equipment,Model,Serial_Number,Manufacturer,Log_No,Department,Type,Last_Maintenance_Date,Next_Maintenance_Date,Engineer\n" +
		"Ventilator,C6,SN9,Hamilton,L9,ICU,Critical,soon,03/01/2026,M\n"

	summary, err := service.Import(ctx, domain.KindOCM, csvUpload("ocm.csv", body))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(summary.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", summary.Warnings)
	}
	warning := summary.Warnings[0]
	if warning.Row != 2 || warning.Field != domain.HeaderLastMaintenance || warning.Value != "soon" {
		t.Fatalf("unexpected warning: %+v", warning)
	}

	records, _ := service.OCM().Records(ctx)
	if records[0].LastMaintenanceDate != "" || records[0].NextMaintenanceDate != "2026-03-01T00:00:00.000Z" {
		t.Fatalf("unexpected dates: %+v", records[0])
	}

	entries, _ := logs.List(ctx, domain.KindOCM, "", 10, 0)
	if len(entries) != 1 || entries[0].Severity != domain.SeverityWarning || *entries[0].RowNumber != 2 {
		t.Fatalf("expected warning log entry, got %+v", entries)
	}

	expected := `
# HELP engtrack_sheets_date_warnings_total Cells whose date could not be interpreted
# TYPE engtrack_sheets_date_warnings_total counter
engtrack_sheets_date_warnings_total{kind="ocm"} 1
`
	if err := testutil.GatherAndCompare(recorder.Registry(), strings.NewReader(expected), "engtrack_sheets_date_warnings_total"); err != nil {
		t.Fatalf("unexpected date warning metric: %v", err)
	}
}

func TestServiceStrictPolicyRejectsDuplicates(t *testing.T) {
	service, collections, _ := newTestService(t, WithDuplicatePolicy(DuplicatePolicyStrict))
	ctx := context.Background()
	body := "Name,Employee_ID,Department,Trainer\nSara,E1,ICU,Dr. K\n"

	if _, err := service.Import(ctx, domain.KindTraining, csvUpload("t.csv", body)); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	_, err := service.Import(ctx, domain.KindTraining, csvUpload("t.csv", body))
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if len(dup.Existing) != 1 || dup.Existing[0].First != "Sara" {
		t.Fatalf("unexpected duplicate report: %+v", dup)
	}

	stored, _ := collections.Training.Load(ctx)
	if len(stored) != 1 {
		t.Fatalf("expected collection untouched, got %d", len(stored))
	}
}

func TestServiceImportFromWorkbook(t *testing.T) {
	service, _, _ := newTestService(t)
	payload := workbookBytes(t,
		[]string{"Name", "Employee_ID", "Department", "Trainer", "sonar", "fmx"},
		[]any{"Sara", "E1", "Radiology", "Dr. M", "Yes", false},
	)

	upload := Upload{FileName: "training.xlsx", Data: bytes.NewReader(payload)}
	if _, err := service.Import(context.Background(), domain.KindTraining, upload); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	records, _ := service.Training().Records(context.Background())
	if !records[0].IsTrained("sonar") || records[0].IsTrained("fmx") {
		t.Fatalf("unexpected machines: %+v", records[0].Machines)
	}
}

func TestServiceImportUnknownKind(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.Import(context.Background(), domain.RecordKind("cmms"), csvUpload("x.csv", "a\n1\n"))
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestServiceRejectedBatchLogsNoWarnings(t *testing.T) {
	service, _, logs := newTestService(t, WithDuplicatePolicy(DuplicatePolicyStrict))
	ctx := context.Background()
	header := "Equipment,Model,Serial_Number,Manufacturer,Log_No,Department,Type,Last_Maintenance_Date,Next_Maintenance_Date,Engineer\n"

	clean := header + "Ventilator,C6,SN9,Hamilton,L9,ICU,Critical,2025-01-01,2026-01-01,M\n"
	if _, err := service.Import(ctx, domain.KindOCM, csvUpload("ocm.csv", clean)); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	again := header + "Ventilator,C6,SN9,Hamilton,L9,ICU,Critical,soon,2026-01-01,M\n"
	_, err := service.Import(ctx, domain.KindOCM, csvUpload("again.csv", again))
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}

	entries, _ := logs.List(ctx, domain.KindOCM, "again.csv", 10, 0)
	if len(entries) != 1 || entries[0].Severity != domain.SeverityError {
		t.Fatalf("expected only the failure entry, got %+v", entries)
	}
}

func TestServiceImportWithoutDataIsRecorded(t *testing.T) {
	recorder := metrics.NewManager()
	service, _, logs := newTestService(t, WithMetrics(recorder))
	ctx := context.Background()

	if _, err := service.Import(ctx, domain.KindPPM, Upload{FileName: "ppm.csv"}); err == nil {
		t.Fatalf("expected missing data to fail")
	}

	entries, _ := logs.List(ctx, domain.KindPPM, "ppm.csv", 10, 0)
	if len(entries) != 1 || entries[0].Severity != domain.SeverityError {
		t.Fatalf("expected a failure entry, got %+v", entries)
	}

	expected := `
# HELP engtrack_sheets_import_failures_total Fatal import failures by record kind and reason
# TYPE engtrack_sheets_import_failures_total counter
engtrack_sheets_import_failures_total{kind="ppm",reason="internal"} 1
`
	if err := testutil.GatherAndCompare(recorder.Registry(), strings.NewReader(expected), "engtrack_sheets_import_failures_total"); err != nil {
		t.Fatalf("unexpected failure metric: %v", err)
	}
}
