package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/engtrack/internal/domain"
)

const defaultMaxUploadBytes = 32 << 20

// Handler exposes imports, stored records and ingestion logs over HTTP:
//
//	POST /imports/{kind}        multipart upload in field "file"
//	GET  /imports/{kind}/logs   ingestion diagnostics (?file=&limit=&offset=)
//	GET  /records/{kind}        stored collection
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHTTPHandler wraps the service. maxUploadBytes <= 0 selects 32 MiB.
func NewHTTPHandler(service *Service, maxUploadBytes int64) http.Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")

	switch {
	case len(segments) == 2 && segments[0] == "imports" && r.Method == http.MethodPost:
		h.handleImport(w, r, segments[1])
	case len(segments) == 3 && segments[0] == "imports" && segments[2] == "logs" && r.Method == http.MethodGet:
		h.handleListLogs(w, r, segments[1])
	case len(segments) == 2 && segments[0] == "records" && r.Method == http.MethodGet:
		h.handleRecords(w, r, segments[1])
	case len(segments) >= 2 && (segments[0] == "imports" || segments[0] == "records"):
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request, rawKind string) {
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	upload := Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}

	summary, err := h.service.Import(r.Context(), kind, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request, rawKind string) {
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	records, err := h.service.Records(r.Context(), kind)
	if err != nil {
		http.Error(w, fmt.Sprintf("load records: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request, rawKind string) {
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	limit := 200
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
			return
		}
		offset = parsed
	}

	logs, err := h.service.Logs(r.Context(), kind, strings.TrimSpace(query.Get("file")), limit, offset)
	if err != nil {
		http.Error(w, fmt.Sprintf("list logs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type errorPayload struct {
	Error    string              `json:"error"`
	Missing  []string            `json:"missing,omitempty"`
	InBatch  []domain.NaturalKey `json:"inBatch,omitempty"`
	Existing []domain.NaturalKey `json:"existing,omitempty"`
}

// writeError maps import failures to a status code and a JSON body that
// names the offending items.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidType *domain.InvalidFileTypeError
		emptyFile   *domain.EmptyFileError
		missing     *domain.MissingColumnsError
		duplicate   *domain.DuplicateKeyError
	)
	payload := errorPayload{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &invalidType):
		status = http.StatusUnsupportedMediaType
	case errors.As(err, &emptyFile):
		status = http.StatusBadRequest
	case errors.As(err, &missing):
		status = http.StatusUnprocessableEntity
		payload.Missing = missing.Missing
	case errors.As(err, &duplicate):
		status = http.StatusConflict
		payload.InBatch = duplicate.InBatch
		payload.Existing = duplicate.Existing
	case errors.Is(err, domain.ErrUnknownKind):
		status = http.StatusNotFound
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
