package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler interface {
	Validate(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ListBatches(w http.ResponseWriter, r *http.Request)
	GetBatch(w http.ResponseWriter, r *http.Request)
	DownloadBatch(w http.ResponseWriter, r *http.Request)
}

type exportHandlerImpl struct {
	exportService export.ExportService
}

func NewExportHandler(exportService export.ExportService) ExportHandler {
	return &exportHandlerImpl{exportService: exportService}
}

func periodFrom(r *http.Request) export.PeriodRequest {
	q := r.URL.Query()
	return export.PeriodRequest{
		From:            q.Get("from"),
		To:              q.Get("to"),
		IncludeExported: queryBool(r, "include_exported"),
	}
}

// Validate implements ExportHandler. A blocked result is still a 200; the
// verdict is in the body.
func (h *exportHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportService.Preview(r.Context(), periodFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Report implements ExportHandler.
func (h *exportHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.exportService.ReportWorkbook(r.Context(), periodFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Export implements ExportHandler.
func (h *exportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var req export.ExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.exportService.Export(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Export completed", resp)
}

// ListBatches implements ExportHandler.
func (h *exportHandlerImpl) ListBatches(w http.ResponseWriter, r *http.Request) {
	list, err := h.exportService.ListBatches(r.Context(), export.BatchFilter{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Batches, &response.Meta{
		Page:       list.Page,
		Limit:      list.Limit,
		TotalItems: list.TotalCount,
		TotalPages: list.TotalPages,
	})
}

// GetBatch implements ExportHandler.
func (h *exportHandlerImpl) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.exportService.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, batch)
}

// DownloadBatch implements ExportHandler.
func (h *exportHandlerImpl) DownloadBatch(w http.ResponseWriter, r *http.Request) {
	rc, name, err := h.exportService.DownloadBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to stream export file", "batch_id", chi.URLParam(r, "id"), "error", err)
	}
}
