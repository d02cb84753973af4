package handler

import (
	"net/http"
	"strings"

	"github.com/segyhp/lendtrack/pkg/response"

	"go.uber.org/zap"
)

type CollectionHandler struct {
	service CollectionService
	logger  *zap.Logger
}

func NewCollectionHandler(service CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		service: service,
		logger:  logger,
	}
}

// TodayCollection handles GET /api/v1/collections/today?tab=
func (h *CollectionHandler) TodayCollection(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.service.TodayCollection(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, sheet)
}

// ExportTodayCollection handles GET /api/v1/collections/today/export?tab=
func (h *CollectionHandler) ExportTodayCollection(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.service.TodayCollection(r.Context(), r.URL.Query().Get("tab"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	data, err := collectionWorkbook(sheet)
	if err != nil {
		h.logger.Error("export collection sheet", zap.String("tab", sheet.Tab), zap.Error(err))
		response.InternalServerError(w, "Failed to export collection sheet", nil)
		return
	}

	response.File(w, xlsxContentType, strings.ReplaceAll(workbookName(sheet), " ", "-"), data)
}

// OverdueMembers handles GET /api/v1/collections/overdue
func (h *CollectionHandler) OverdueMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.OverdueMembers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, items)
}

// Dashboard handles GET /api/v1/dashboard
func (h *CollectionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, stats)
}

// Reconcile handles POST /api/v1/reconcile
func (h *CollectionHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Reconcile(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	h.logger.Info("reconciliation run",
		zap.Int("checked", report.Checked),
		zap.Int("corrected", report.Corrected),
	)
	response.Success(w, report)
}
