package handlers

import (
	"errors"
	"net/http"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/export"
	"github.com/go-chi/render"
)

// ExportHandler отдает отчет о последней выгрузке каталога
type ExportHandler struct {
	reports export.ReportStore
	logger  interfaces.LoggerPort
}

// NewExportHandler создает новый обработчик статуса выгрузки
func NewExportHandler(reports export.ReportStore, logger interfaces.LoggerPort) *ExportHandler {
	return &ExportHandler{
		reports: reports,
		logger:  logger,
	}
}

// Status возвращает отчет о последнем запуске или 404, если запусков еще не было
// @Summary Статус выгрузки
// @Description Отчет о последнем запуске выгрузки каталога
// @Tags export
// @Produce json
// @Success 200 {object} response
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /export/status [get]
func (h *ExportHandler) Status(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Last(r.Context())
	if err != nil {
		if errors.Is(err, export.ErrNoReport) {
			writeError(w, r, http.StatusNotFound, "not_found", "Выгрузка каталога еще не выполнялась")
			return
		}

		h.logger.ErrorWithContext(r.Context(), "Ошибка получения отчета о выгрузке",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка получения отчета о выгрузке")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    report,
	})
}
