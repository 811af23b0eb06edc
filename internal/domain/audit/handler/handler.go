// Package handler implements the HTTP endpoints of the audit service.
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/engine"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/exporter"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/service"
	"github.com/FACorreiaa/je-audit/internal/domain/common"
)

const multipartMemoryLimit = 32 << 20

// AuditHandler exposes the analyze and export operations.
type AuditHandler struct {
	svc            *service.AuditService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAuditHandler constructs a new handler.
func NewAuditHandler(svc *service.AuditService, logger *slog.Logger, maxUploadBytes int64) *AuditHandler {
	return &AuditHandler{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

type analyzeResponse struct {
	Success       bool             `json:"success"`
	Summary       engine.Summary   `json:"summary"`
	Charts        chartsPayload    `json:"charts"`
	AnomaliesData []map[string]any `json:"anomalies_data"`
}

type chartsPayload struct {
	Anomalies map[string]int `json:"anomalies"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Analyze handles POST /v1/analyze: multipart upload in, flagged result set out.
func (h *AuditHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Analyze(r.Context(), filename, data)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	anomalies := make([]map[string]any, 0, report.Summary.AnomaliesFound)
	for _, idx := range report.AnomalyIndexes() {
		anomalies = append(anomalies, report.RowMap(idx))
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Success:       true,
		Summary:       report.Summary,
		Charts:        chartsPayload{Anomalies: report.FlagCounts},
		AnomaliesData: anomalies,
	})
}

// Export handles POST /v1/export: it runs the same analysis and returns the
// three-sheet workbook as an attachment.
func (h *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Analyze(r.Context(), filename, data)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	workbook, err := exporter.Workbook(report)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	name := fmt.Sprintf("je_audit_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		h.logger.Error("failed to write workbook response", slog.Any("error", err))
	}
}

// readUpload extracts the multipart "file" field. It writes the failure
// response itself and reports ok=false when the request is unusable.
func (h *AuditHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return nil, "", false
	}

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to parse multipart form: " + err.Error()})
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing 'file' field"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func (h *AuditHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if common.IsInputError(err) {
		status = http.StatusBadRequest
	} else {
		h.logger.ErrorContext(r.Context(), "analysis failed", slog.Any("error", err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *AuditHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
