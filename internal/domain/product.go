package domain

// Variant is a size/color variation of a product with its own stock and SKU.
type Variant struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku"`
}

// Product represents a catalog item
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"sku"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Variants    []Variant `json:"variants"`
}
