package store

import (
	"errors"

	"boutique-pos/internal/domain"
)

var ErrSaleNotFound = errors.New("sale not found")

type saleCodec struct{}

func (saleCodec) Columns() []string {
	return []string{
		"id", "customer_id", "items", "subtotal", "total", "payment_method",
		"cashier_id", "timestamp", "status", "paid_amount", "remaining_amount",
	}
}

func (saleCodec) Key(s domain.Sale) string { return s.ID }

func (saleCodec) WithKey(s domain.Sale, key string) domain.Sale {
	s.ID = key
	return s
}

func (saleCodec) Decode(row map[string]string) domain.Sale {
	return domain.Sale{
		ID:              cleanCell(row["id"]),
		CustomerID:      cleanCell(row["customer_id"]),
		Items:           decodeList[domain.SaleItem](row["items"]),
		Subtotal:        toFloat(row["subtotal"]),
		Total:           toFloat(row["total"]),
		PaymentMethod:   domain.PaymentMethod(cleanCell(row["payment_method"])),
		CashierID:       cleanCell(row["cashier_id"]),
		Timestamp:       cleanCell(row["timestamp"]),
		Status:          domain.SaleStatus(cleanCell(row["status"])),
		PaidAmount:      decodeOptionalFloat(row["paid_amount"]),
		RemainingAmount: decodeOptionalFloat(row["remaining_amount"]),
	}
}

func (saleCodec) Encode(s domain.Sale) map[string]string {
	items := s.Items
	if items == nil {
		items = []domain.SaleItem{}
	}
	row := map[string]string{
		"id":               s.ID,
		"customer_id":      s.CustomerID,
		"items":            encodeJSON(items, "[]"),
		"subtotal":         formatFloat(s.Subtotal),
		"total":            formatFloat(s.Total),
		"payment_method":   string(s.PaymentMethod),
		"cashier_id":       s.CashierID,
		"timestamp":        s.Timestamp,
		"status":           string(s.Status),
		"paid_amount":      "",
		"remaining_amount": "",
	}
	if s.PaidAmount != nil {
		row["paid_amount"] = formatFloat(*s.PaidAmount)
	}
	if s.RemainingAmount != nil {
		row["remaining_amount"] = formatFloat(*s.RemainingAmount)
	}
	return row
}

func decodeOptionalFloat(cell string) *float64 {
	if cleanCell(cell) == "" {
		return nil
	}
	v := toFloat(cell)
	return &v
}

// SaleStore persists recorded transactions in one CSV table.
type SaleStore struct {
	*Table[domain.Sale]
}

// NewSaleStore creates a sale store over the CSV file at path.
func NewSaleStore(path string) *SaleStore {
	return &SaleStore{NewTable(path, saleCodec{})}
}

// FindByID retrieves a sale by key.
func (s *SaleStore) FindByID(id string) (*domain.Sale, error) {
	sale, ok, err := s.FindByKey(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSaleNotFound
	}
	return &sale, nil
}
