package adaptor

import (
	"net/http"

	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	service usecase.AnalyticsService
	log     *zap.Logger
}

func NewAnalyticsHandler(service usecase.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log.With(zap.String("handler", "analytics")),
	}
}

// Summary handles GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "analytics summary")
		return
	}
	utils.ResponseSuccess(w, "success", summary)
}

// Demographics handles GET /api/v1/analytics/demographics
func (h *AnalyticsHandler) Demographics(w http.ResponseWriter, r *http.Request) {
	demographics, err := h.service.Demographics(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "analytics demographics")
		return
	}
	utils.ResponseSuccess(w, "success", demographics)
}

// EventAnalytics handles GET /api/v1/analytics/events/{id}
func (h *AnalyticsHandler) EventAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.service.EventAnalytics(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "event analytics")
		return
	}
	utils.ResponseSuccess(w, "success", stats)
}

// SalesTrend handles GET /api/v1/analytics/sales-trend
func (h *AnalyticsHandler) SalesTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.SalesTrend(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "sales trend")
		return
	}
	utils.ResponseSuccess(w, "success", trend)
}

// Export handles GET /api/v1/analytics/export?type=sales|events
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = usecase.ExportSales
	}

	data, filename, err := h.service.Export(r.Context(), kind)
	if err != nil {
		handleServiceError(w, h.log, err, "export")
		return
	}

	utils.ResponseCSV(w, filename, data)
}
