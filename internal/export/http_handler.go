package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/engtrack/internal/domain"
)

// Handler serves generated workbooks:
//
//	GET  /templates/{kind}?variant=blank|sample&style=template|sample_data
//	GET  /exports/{kind}?base=Name
//	POST /exports/rows   {"baseName": "...", "headers": [...], "rows": [{...}]}
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(segments) == 2 && segments[0] == "exports" && segments[1] == "rows":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleExportRows(w, r)
	case len(segments) == 2 && segments[0] == "templates":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleTemplate(w, r, segments[1])
	case len(segments) == 2 && segments[0] == "exports":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r, segments[1])
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request, rawKind string) {
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	var wb Workbook
	switch variant := strings.ToLower(strings.TrimSpace(query.Get("variant"))); variant {
	case "", "blank":
		wb, err = h.service.BlankTemplate(kind)
	case "sample":
		var style SampleStyle
		if raw := query.Get("style"); strings.TrimSpace(raw) != "" {
			parsed, parseErr := ParseSampleStyle(raw)
			if parseErr != nil {
				http.Error(w, parseErr.Error(), http.StatusBadRequest)
				return
			}
			style = parsed
		}
		wb, err = h.service.SampleTemplate(kind, style)
	default:
		http.Error(w, fmt.Sprintf("unsupported variant %q", variant), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeWorkbookResponse(w, wb)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, rawKind string) {
	kind, err := domain.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	wb, err := h.service.ExportRecords(r.Context(), kind, r.URL.Query().Get("base"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeWorkbookResponse(w, wb)
}

type exportRowsPayload struct {
	BaseName string           `json:"baseName"`
	Headers  []string         `json:"headers"`
	Rows     []map[string]any `json:"rows"`
}

func (h *Handler) handleExportRows(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload exportRowsPayload
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	wb, err := h.service.ExportRows(payload.BaseName, payload.Headers, payload.Rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeWorkbookResponse(w, wb)
}

func writeWorkbookResponse(w http.ResponseWriter, wb Workbook) {
	w.Header().Set("Content-Type", ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", wb.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wb.Data)
}

func writeError(w http.ResponseWriter, err error) {
	var empty *domain.EmptyExportError
	switch {
	case errors.As(err, &empty):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownKind):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
