package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"
)

// Pagination bounds shared by all list endpoints.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// ProductCreate is the input for creating a catalog item.
type ProductCreate struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Category    string           `json:"category" validate:"required,max=100"`
	Price       float64          `json:"price" validate:"required,gt=0"`
	Cost        float64          `json:"cost" validate:"gte=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
	SKU         string           `json:"sku" validate:"required,max=50"`
	Description string           `json:"description" validate:"max=1000"`
	Image       string           `json:"image" validate:"max=500"`
	Variants    []domain.Variant `json:"variants"`
}

// ProductUpdate is a partial update: only non-nil fields are applied and the
// record key can never change.
type ProductUpdate struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string           `json:"category" validate:"omitempty,min=1,max=100"`
	Price       *float64          `json:"price" validate:"omitempty,gt=0"`
	Cost        *float64          `json:"cost" validate:"omitempty,gte=0"`
	Stock       *int              `json:"stock" validate:"omitempty,gte=0"`
	SKU         *string           `json:"sku" validate:"omitempty,min=1,max=50"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Image       *string           `json:"image" validate:"omitempty,max=500"`
	Variants    *[]domain.Variant `json:"variants"`
}

// ProductFilter narrows and paginates product listings.
type ProductFilter struct {
	Category string
	Search   string
	Skip     int
	Limit    int
}

// ProductService defines catalog business logic.
type ProductService interface {
	Create(ctx context.Context, req ProductCreate) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Update(ctx context.Context, id string, req ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Categories(ctx context.Context) ([]string, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	OutOfStock(ctx context.Context) ([]domain.Product, error)
}

type productService struct {
	products *store.ProductStore
}

// NewProductService creates a new instance of ProductService
func NewProductService(products *store.ProductStore) ProductService {
	return &productService{products: products}
}

// Create inserts a new product after enforcing SKU uniqueness.
func (s *productService) Create(ctx context.Context, req ProductCreate) (*domain.Product, error) {
	existing, err := s.products.FindBySKU(req.SKU)
	if err != nil && !errors.Is(err, store.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check existing SKU: %w", err)
	}
	if existing != nil {
		return nil, store.ErrSKUExists
	}

	product := domain.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		SKU:         req.SKU,
		Description: req.Description,
		Image:       req.Image,
		Variants:    req.Variants,
	}
	created, err := s.products.Insert(product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &created, nil
}

func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(id)
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.products.FindBySKU(sku)
}

// Update applies the provided fields to an existing product. A SKU change is
// rejected when another product already carries the new SKU.
func (s *productService) Update(ctx context.Context, id string, req ProductUpdate) (*domain.Product, error) {
	if _, err := s.products.FindByID(id); err != nil {
		return nil, err
	}
	if req.SKU != nil {
		existing, err := s.products.FindBySKU(*req.SKU)
		if err != nil && !errors.Is(err, store.ErrProductNotFound) {
			return nil, fmt.Errorf("failed to check existing SKU: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, store.ErrSKUExists
		}
	}

	updated, found, err := s.products.Table.Update(id, func(p *domain.Product) {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Cost != nil {
			p.Cost = *req.Cost
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.SKU != nil {
			p.SKU = *req.SKU
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Image != nil {
			p.Image = *req.Image
		}
		if req.Variants != nil {
			p.Variants = *req.Variants
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return nil, store.ErrProductNotFound
	}
	return &updated, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	found, err := s.products.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return store.ErrProductNotFound
	}
	return nil
}

// List returns one page of products plus the total match count.
func (s *productService) List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error) {
	all, err := s.products.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	matched := make([]domain.Product, 0, len(all))
	search := strings.ToLower(filter.Search)
	for _, p := range all {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	return paginate(matched, filter.Skip, filter.Limit), total, nil
}

// Categories returns the sorted set of distinct category names.
func (s *productService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.products.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range all {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// LowStock returns products whose stock is at or below threshold but not yet
// exhausted.
func (s *productService) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	all, err := s.products.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	low := make([]domain.Product, 0)
	for _, p := range all {
		if p.Stock > 0 && p.Stock <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *productService) OutOfStock(ctx context.Context) ([]domain.Product, error) {
	all, err := s.products.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]domain.Product, 0)
	for _, p := range all {
		if p.Stock == 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// paginate slices one page out of records, clamping skip and limit to the
// shared bounds.
func paginate[T any](records []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if skip >= len(records) {
		return []T{}
	}
	end := skip + limit
	if end > len(records) {
		end = len(records)
	}
	return records[skip:end]
}
