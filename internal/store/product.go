package store

import (
	"errors"

	"boutique-pos/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSKUExists       = errors.New("product with this SKU already exists")
)

type productCodec struct{}

func (productCodec) Columns() []string {
	return []string{"id", "name", "category", "price", "cost", "stock", "sku", "description", "image", "variants"}
}

func (productCodec) Key(p domain.Product) string { return p.ID }

func (productCodec) WithKey(p domain.Product, key string) domain.Product {
	p.ID = key
	return p
}

func (productCodec) Decode(row map[string]string) domain.Product {
	return domain.Product{
		ID:          cleanCell(row["id"]),
		Name:        cleanCell(row["name"]),
		Category:    cleanCell(row["category"]),
		Price:       toFloat(row["price"]),
		Cost:        toFloat(row["cost"]),
		Stock:       toInt(row["stock"]),
		SKU:         cleanCell(row["sku"]),
		Description: cleanCell(row["description"]),
		Image:       cleanCell(row["image"]),
		Variants:    decodeList[domain.Variant](row["variants"]),
	}
}

func (productCodec) Encode(p domain.Product) map[string]string {
	variants := p.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	return map[string]string{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"price":       formatFloat(p.Price),
		"cost":        formatFloat(p.Cost),
		"stock":       formatInt(p.Stock),
		"sku":         p.SKU,
		"description": p.Description,
		"image":       p.Image,
		"variants":    encodeJSON(variants, "[]"),
	}
}

// ProductStore persists the product catalog in one CSV table.
type ProductStore struct {
	*Table[domain.Product]
}

// NewProductStore creates a product store over the CSV file at path.
func NewProductStore(path string) *ProductStore {
	return &ProductStore{NewTable(path, productCodec{})}
}

// FindByID retrieves a product by key.
func (s *ProductStore) FindByID(id string) (*domain.Product, error) {
	p, ok, err := s.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// FindBySKU retrieves the first product with a matching SKU. SKU uniqueness
// is enforced here at the store-access layer, not by the file format.
func (s *ProductStore) FindBySKU(sku string) (*domain.Product, error) {
	recs, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, p := range recs {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}
