package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/rpattn/engtrack/internal/domain"
)

func multipartRequest(t *testing.T, target, fileName, contentType string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandlerImportAndList(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHTTPHandler(service, 0)

	payload := []byte("Name,Employee_ID,Department,Trainer,sonar,fmx\nSara,E1,Radiology,Dr. M,Yes,No\n")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartRequest(t, "/imports/training", "staff.csv", "text/csv", payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid summary json: %v", err)
	}
	if summary.Created != 1 || summary.Kind != domain.KindTraining {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/training", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing records, got %d", rec.Code)
	}
	var records []domain.TrainingRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid records json: %v", err)
	}
	if len(records) != 1 || len(records[0].Machines) != 2 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestHandlerMapsErrors(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHTTPHandler(service, 0)

	cases := []struct {
		name        string
		target      string
		fileName    string
		contentType string
		payload     string
		status      int
	}{
		{"invalid type", "/imports/ppm", "ppm.pdf", "application/pdf", "%PDF", http.StatusUnsupportedMediaType},
		{"empty file", "/imports/ocm", "ocm.csv", "text/csv", "Equipment\n", http.StatusBadRequest},
		{"missing columns", "/imports/training", "t.csv", "text/csv", "Name,Trainer\nSara,Dr. M\n", http.StatusUnprocessableEntity},
		{"unknown kind", "/imports/cmms", "x.csv", "text/csv", "a\n1\n", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, multipartRequest(t, tc.target, tc.fileName, tc.contentType, []byte(tc.payload)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandlerMissingColumnsBody(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHTTPHandler(service, 0)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartRequest(t, "/imports/training", "t.csv", "text/csv", []byte("Name,Trainer\nSara,Dr. M\n")))

	var payload errorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid error json: %v", err)
	}
	if len(payload.Missing) != 2 || payload.Missing[0] != "Employee_ID" || payload.Missing[1] != "Department" {
		t.Fatalf("unexpected missing list: %+v", payload)
	}
}

func TestHandlerRejectsWrongMethod(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHTTPHandler(service, 0)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/records/ppm", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerListsLogs(t *testing.T) {
	service, _, _ := newTestService(t)
	handler := NewHTTPHandler(service, 0)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartRequest(t, "/imports/ppm", "ppm.csv", "text/csv", []byte("Equipment\nPump\n")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports/ppm/logs?file=ppm.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []domain.IngestionLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("invalid log json: %v", err)
	}
	if len(entries) != 1 || entries[0].Severity != domain.SeverityError {
		t.Fatalf("unexpected log entries: %+v", entries)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports/ppm/logs?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid limit, got %d", rec.Code)
	}
}
