package transport

import (
	"errors"
	"fmt"
	"net/http"

	"boutique-pos/internal/middleware"
	"boutique-pos/internal/service"
	"boutique-pos/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SaleHandler handles HTTP requests for sale recording and analytics
type SaleHandler struct {
	sales     service.SaleService
	analytics service.AnalyticsService
	logger    *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales service.SaleService, analytics service.AnalyticsService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{sales: sales, analytics: analytics, logger: logger}
}

// RegisterRoutes registers all sale and analytics routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/analytics/dashboard", h.Dashboard)
		r.Get("/reports/daily", h.DailyReport)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
	})
}

// List handles sale listing with cashier/customer/date filters and
// pagination.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := service.SaleFilter{
		CashierID:  r.URL.Query().Get("cashier_id"),
		CustomerID: r.URL.Query().Get("customer_id"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		Skip:       intQuery(r, "skip", 0),
		Limit:      intQuery(r, "limit", service.DefaultPageLimit),
	}

	sales, total, err := h.sales.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d sales", len(sales)),
		Data:    sales,
		Total:   total,
	})
}

// Create handles sale recording. Stock is decremented per line item before
// the sale record is written; see the service for the non-atomicity caveat.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SaleCreate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.sales.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidSaleItem):
			middleware.RespondWithError(w, http.StatusBadRequest, "sale items must reference a product with positive quantity and price")
		default:
			h.logger.Error("Failed to create sale", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create sale")
		}
		return
	}

	h.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID),
		zap.Float64("total", sale.Total),
		zap.String("status", string(sale.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale created successfully",
		Data:    sale,
	})
}

// Get handles sale retrieval by id.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sale, err := h.sales.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to get sale", zap.String("sale_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sale retrieved successfully",
		Data:    sale,
	})
}

// Update handles sale updates, mainly status transitions.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.SaleUpdate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.sales.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to update sale", zap.String("sale_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sale updated successfully",
		Data:    sale,
	})
}

// Dashboard returns the analytics rollup for a trailing day window.
func (h *SaleHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 30)
	if days < 1 || days > 365 {
		middleware.RespondWithError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	analytics, err := h.analytics.Dashboard(r.Context(), days)
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sales analytics retrieved successfully",
		Data:    analytics,
	})
}

// DailyReport returns the rollup for one calendar day.
func (h *SaleHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return
	}

	report, err := h.analytics.DailyReport(r.Context(), date)
	if err != nil {
		h.logger.Error("Failed to build daily report", zap.String("date", date), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build daily report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Daily report for %s", date),
		Data:    report,
	})
}
