package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"boutique-pos/internal/middleware"
	"boutique-pos/internal/service"
	"boutique-pos/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerHandler handles HTTP requests for CRM operations
type CustomerHandler struct {
	customers service.CustomerService
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/loyalty/top", h.TopLoyalty)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Put("/{id}/loyalty", h.SetLoyalty)
	})
}

// List handles customer listing with search and pagination.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := service.CustomerFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   intQuery(r, "skip", 0),
		Limit:  intQuery(r, "limit", service.DefaultPageLimit),
	}

	customers, total, err := h.customers.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d customers", len(customers)),
		Data:    customers,
		Total:   total,
	})
}

// Create handles customer creation.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerCreate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.customers.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Customer created successfully",
		Data:    customer,
	})
}

// Get handles customer retrieval by id.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to get customer", zap.String("customer_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer retrieved successfully",
		Data:    customer,
	})
}

// Update handles partial customer updates.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.CustomerUpdate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.customers.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to update customer", zap.String("customer_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer updated successfully",
		Data:    customer,
	})
}

// TopLoyalty returns the customers with the highest loyalty balances.
func (h *CustomerHandler) TopLoyalty(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 10)
	if limit < 1 || limit > 100 {
		middleware.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	customers, err := h.customers.TopByLoyalty(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to rank loyalty customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to rank loyalty customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved top %d loyalty customers", len(customers)),
		Data:    customers,
		Total:   len(customers),
	})
}

// SetLoyalty overwrites a customer's loyalty points from the points query
// parameter. Negative values are stored as zero.
func (h *CustomerHandler) SetLoyalty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	raw := r.URL.Query().Get("points")
	points, err := strconv.Atoi(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "points query parameter must be an integer")
		return
	}

	customer, err := h.customers.SetLoyaltyPoints(r.Context(), id, points)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to update customer loyalty", zap.String("customer_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update customer loyalty")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer loyalty points updated successfully",
		Data:    customer,
	})
}

// Delete handles customer deletion.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer deleted successfully",
	})
}
