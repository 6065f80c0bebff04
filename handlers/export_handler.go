package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/projetojaiba/corrida-system/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// InscricoesCSV отдаёт CSV-файл заявок с теми же фильтрами, что админ-список.
func (h *ExportHandler) InscricoesCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseInscricaoFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, fileName, err := h.exportService.ExportInscricoesCSV(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
