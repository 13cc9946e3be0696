// Package handler provides HTTP handlers for the API and the HTML page.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"statement-reader/internal/domain"
	apperrors "statement-reader/pkg/errors"
)

// StatementHandler serves the JSON statement API
type StatementHandler struct {
	extractor   domain.StatementExtractor
	inspector   domain.DocumentInspector
	summarizer  domain.StatementSummarizer
	exporter    domain.StatementExporter
	recorder    ExtractionRecorder
	maxFileSize int64
	logger      domain.Logger
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(
	extractor domain.StatementExtractor,
	inspector domain.DocumentInspector,
	summarizer domain.StatementSummarizer,
	exporter domain.StatementExporter,
	recorder ExtractionRecorder,
	maxFileSize int64,
	logger domain.Logger,
) *StatementHandler {
	return &StatementHandler{
		extractor:   extractor,
		inspector:   inspector,
		summarizer:  summarizer,
		exporter:    exporter,
		recorder:    recorder,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// extractResponse is the JSON form of an extraction outcome.
type extractResponse struct {
	Status       domain.OutcomeKind `json:"status"`
	Message      string             `json:"message,omitempty"`
	Columns      []string           `json:"columns,omitempty"`
	Rows         []domain.Row       `json:"rows,omitempty"`
	DegradedRows []int              `json:"degraded_rows,omitempty"`
	Summary      *domain.Summary    `json:"summary,omitempty"`
}

// Extract handles POST /api/v1/statements/extract
func (h *StatementHandler) Extract(w http.ResponseWriter, r *http.Request) {
	doc, appErr := readUpload(w, r, h.maxFileSize)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	outcome := runExtraction(r.Context(), h.extractor, h.recorder, doc, r.FormValue("password"))
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		writeJSON(w, http.StatusOK, extractResponse{
			Status:       outcome.Kind,
			Columns:      outcome.Table.Columns,
			Rows:         outcome.Table.Rows,
			DegradedRows: outcome.Table.DegradedRows(),
			Summary:      h.summarizer.Summarize(outcome.Table),
		})
	case domain.OutcomeEmpty:
		writeJSON(w, http.StatusOK, extractResponse{Status: outcome.Kind, Message: outcome.Message})
	default:
		writeAppError(w, outcomeError(outcome))
	}
}

// Inspect handles POST /api/v1/statements/inspect
func (h *StatementHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	doc, appErr := readUpload(w, r, h.maxFileSize)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}
	defer doc.Close()

	info, err := h.inspector.Inspect(doc)
	if err != nil {
		h.logger.Warn("PDF inspection failed", "file", doc.Name, "error", err)
		writeAppError(w, apperrors.NewProcessingError(err.Error(), err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Export handles POST /api/v1/statements/export?format=csv|xlsx. The table
// comes either from an uploaded PDF (multipart) or from an already extracted
// table posted as JSON, directly or in the "table" form field.
func (h *StatementHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, appErr := parseExportFormat(r.URL.Query().Get("format"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	table, name, appErr := h.tableFromRequest(w, r)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, table, format); err != nil {
		h.logger.Error("Export failed", err, "format", format)
		writeAppError(w, apperrors.NewInternalError("Failed to export table", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": exportFileName(name, format),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *StatementHandler) tableFromRequest(w http.ResponseWriter, r *http.Request) (*domain.Table, string, *apperrors.AppError) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		doc, appErr := readUpload(w, r, h.maxFileSize)
		if appErr != nil {
			return nil, "", appErr
		}
		name := doc.Name
		outcome := runExtraction(r.Context(), h.extractor, h.recorder, doc, r.FormValue("password"))
		if outcome.Kind != domain.OutcomeSuccess {
			return nil, "", outcomeError(outcome)
		}
		return outcome.Table, name, nil

	case "application/json":
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
		return decodeTable(json.NewDecoder(r.Body))

	default:
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
		raw := r.PostFormValue("table")
		if raw == "" {
			return nil, "", apperrors.NewValidationError("A PDF file or an extracted table is required")
		}
		table, _, appErr := decodeTable(json.NewDecoder(strings.NewReader(raw)))
		return table, r.PostFormValue("name"), appErr
	}
}

func decodeTable(dec *json.Decoder) (*domain.Table, string, *apperrors.AppError) {
	var table domain.Table
	if err := dec.Decode(&table); err != nil {
		return nil, "", apperrors.NewValidationError("Invalid table", err.Error())
	}
	if len(table.Columns) == 0 {
		return nil, "", apperrors.NewValidationError("Table has no columns")
	}
	return &table, "", nil
}

func parseExportFormat(value string) (domain.ExportFormat, *apperrors.AppError) {
	switch format := domain.ExportFormat(strings.ToLower(value)); format {
	case "":
		return domain.ExportFormatCSV, nil
	case domain.ExportFormatCSV, domain.ExportFormatXLSX:
		return format, nil
	default:
		return "", apperrors.NewValidationError("Unsupported export format. Allowed: csv, xlsx.")
	}
}

// exportFileName derives the download name from the uploaded file name.
func exportFileName(name string, format domain.ExportFormat) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "statement"
	}
	return base + "." + string(format)
}

// runExtraction runs one extraction and records it.
func runExtraction(
	ctx context.Context,
	extractor domain.StatementExtractor,
	recorder ExtractionRecorder,
	doc *domain.Document,
	password string,
) domain.Outcome {
	start := time.Now()
	outcome := extractor.Extract(ctx, doc, password)
	if recorder != nil {
		rows := 0
		if outcome.Table != nil {
			rows = len(outcome.Table.Rows)
		}
		recorder.ObserveExtraction(string(outcome.Kind), rows, time.Since(start))
	}
	return outcome
}

// outcomeError maps a non-success outcome onto an AppError.
func outcomeError(outcome domain.Outcome) *apperrors.AppError {
	switch {
	case outcome.NeedsPassword():
		return apperrors.NewPasswordRequiredError(outcome.Message, outcome.Err)
	case outcome.Kind == domain.OutcomeEmpty:
		return apperrors.NewProcessingError(outcome.Message, nil)
	case errors.Is(outcome.Err, context.Canceled):
		return apperrors.NewInternalError("Request canceled", outcome.Err)
	default:
		return apperrors.NewProcessingError(outcome.Message, outcome.Err)
	}
}
