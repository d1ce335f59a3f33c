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

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/categories", h.Categories)
		r.Get("/low-stock", h.LowStock)
		r.Get("/out-of-stock", h.OutOfStock)
		r.Get("/sku/{sku}", h.GetBySKU)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles product listing with category/search filters and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := service.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Skip:     intQuery(r, "skip", 0),
		Limit:    intQuery(r, "limit", service.DefaultPageLimit),
	}

	products, total, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d products", len(products)),
		Data:    products,
		Total:   total,
	})
}

// Create handles product creation.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProductCreate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrSKUExists) {
			middleware.RespondWithError(w, http.StatusConflict, "product with this SKU already exists")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("sku", product.SKU))
	middleware.RespondWithJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// Get handles product retrieval by id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product retrieved successfully",
		Data:    product,
	})
}

// GetBySKU handles product retrieval by SKU.
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	product, err := h.products.GetBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product by SKU", zap.String("sku", sku), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product retrieved successfully",
		Data:    product,
	})
}

// Update handles partial product updates.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.ProductUpdate
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, store.ErrSKUExists):
			middleware.RespondWithError(w, http.StatusConflict, "product with this SKU already exists")
		default:
			h.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// Delete handles product deletion.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// Categories returns the distinct category names in the catalog.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Categories retrieved successfully",
		Data:    categories,
	})
}

// LowStock returns products at or below the stock threshold.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := intQuery(r, "threshold", 10)
	if threshold < 0 {
		threshold = 10
	}

	products, err := h.products.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("Failed to list low stock products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list low stock products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d low stock products", len(products)),
		Data:    products,
		Total:   len(products),
	})
}

// OutOfStock returns products with zero stock.
func (h *ProductHandler) OutOfStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.OutOfStock(r.Context())
	if err != nil {
		h.logger.Error("Failed to list out of stock products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list out of stock products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d out of stock products", len(products)),
		Data:    products,
		Total:   len(products),
	})
}
