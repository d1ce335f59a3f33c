package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidSaleItem   = errors.New("sale item is invalid")
)

// SaleCreate is the input for recording a transaction.
type SaleCreate struct {
	CustomerID      string               `json:"customer_id"`
	Items           []domain.SaleItem    `json:"items" validate:"required,min=1"`
	Subtotal        float64              `json:"subtotal" validate:"gte=0"`
	Total           float64              `json:"total" validate:"required,gt=0"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash credit_card debit_card mobile_payment"`
	CashierID       string               `json:"cashier_id" validate:"required"`
	Timestamp       string               `json:"timestamp"`
	Status          domain.SaleStatus    `json:"status" validate:"omitempty,oneof=completed partial_payment refunded partial_refund cancelled"`
	PaidAmount      *float64             `json:"paid_amount" validate:"omitempty,gte=0"`
	RemainingAmount *float64             `json:"remaining_amount" validate:"omitempty,gte=0"`
}

// SaleUpdate is a partial update, used mainly for status transitions.
// Transitions are deliberately unguarded: any status may replace any other,
// and no stock or customer aggregates are re-validated.
type SaleUpdate struct {
	Status          *domain.SaleStatus `json:"status" validate:"omitempty,oneof=completed partial_payment refunded partial_refund cancelled"`
	PaidAmount      *float64           `json:"paid_amount" validate:"omitempty,gte=0"`
	RemainingAmount *float64           `json:"remaining_amount" validate:"omitempty,gte=0"`
	Items           *[]domain.SaleItem `json:"items"`
	CashierID       *string            `json:"cashier_id"`
}

// SaleFilter narrows and paginates sale listings. Date bounds compare
// RFC 3339 timestamp strings lexicographically.
type SaleFilter struct {
	CashierID  string
	CustomerID string
	StartDate  string
	EndDate    string
	Skip       int
	Limit      int
}

// SaleService defines the sale-recording business logic: stock decrement,
// loyalty accrual and partial-payment bookkeeping on creation.
type SaleService interface {
	Create(ctx context.Context, req SaleCreate) (*domain.Sale, error)
	Get(ctx context.Context, id string) (*domain.Sale, error)
	Update(ctx context.Context, id string, req SaleUpdate) (*domain.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]domain.Sale, int, error)
}

type saleService struct {
	sales     *store.SaleStore
	products  *store.ProductStore
	customers *store.CustomerStore
	now       func() time.Time
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(sales *store.SaleStore, products *store.ProductStore, customers *store.CustomerStore) SaleService {
	return &saleService{
		sales:     sales,
		products:  products,
		customers: customers,
		now:       time.Now,
	}
}

// Create records a sale. For each line item the referenced product is looked
// up and its stock decremented immediately, one store mutation per item.
// This sequence is not atomic: a failure partway through leaves the earlier
// items' stock already decremented with no rollback, and no sale record.
// That matches the historical behavior of the system and is covered by a
// regression test; do not "fix" it without replacing the persistence model.
func (s *saleService) Create(ctx context.Context, req SaleCreate) (*domain.Sale, error) {
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price <= 0 {
			return nil, ErrInvalidSaleItem
		}
	}

	for _, item := range req.Items {
		product, err := s.products.FindByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("product %s has %d in stock, %d required: %w",
				product.Name, product.Stock, item.Quantity, ErrInsufficientStock)
		}
		quantity := item.Quantity
		if _, _, err := s.products.Table.Update(item.ProductID, func(p *domain.Product) {
			p.Stock -= quantity
		}); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}
	}

	if req.CustomerID != "" {
		if err := s.accrueCustomerStats(req.CustomerID, req.Total); err != nil {
			return nil, err
		}
	}

	sale := domain.Sale{
		CustomerID:      req.CustomerID,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
		CashierID:       req.CashierID,
		Timestamp:       req.Timestamp,
		Status:          req.Status,
		PaidAmount:      req.PaidAmount,
		RemainingAmount: req.RemainingAmount,
	}
	if sale.Status == "" {
		sale.Status = domain.SaleCompleted
	}
	if sale.Timestamp == "" {
		sale.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	applyPaymentStatus(&sale)

	created, err := s.sales.Insert(sale)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return &created, nil
}

// accrueCustomerStats folds a sale total into the customer's aggregates:
// total spent, visit count, loyalty points (one point per whole currency
// unit, truncated) and last visit. An unresolved customer reference is
// skipped silently.
func (s *saleService) accrueCustomerStats(customerID string, total float64) error {
	// found=false means the reference did not resolve; that is not an error.
	_, _, err := s.customers.Table.Update(customerID, func(c *domain.Customer) {
		c.TotalSpent += total
		c.Visits++
		c.LoyaltyPoints += int(total)
		c.LastVisit = s.now().UTC().Format(time.RFC3339)
	})
	if err != nil {
		return fmt.Errorf("failed to update customer %s: %w", customerID, err)
	}
	return nil
}

// applyPaymentStatus derives the payment state when a paid amount was
// supplied: full payment completes the sale with the paid amount clamped to
// the total, anything less marks it partial with the remainder recorded.
func applyPaymentStatus(sale *domain.Sale) {
	if sale.PaidAmount == nil {
		return
	}
	paid := *sale.PaidAmount
	if paid >= sale.Total {
		sale.Status = domain.SaleCompleted
		sale.PaidAmount = ptrFloat(sale.Total)
		sale.RemainingAmount = ptrFloat(0)
		return
	}
	sale.Status = domain.SalePartialPayment
	sale.RemainingAmount = ptrFloat(sale.Total - paid)
}

func ptrFloat(v float64) *float64 { return &v }

func (s *saleService) Get(ctx context.Context, id string) (*domain.Sale, error) {
	return s.sales.FindByID(id)
}

// Update overwrites the provided fields without re-validating stock or
// customer aggregates.
func (s *saleService) Update(ctx context.Context, id string, req SaleUpdate) (*domain.Sale, error) {
	updated, found, err := s.sales.Table.Update(id, func(sale *domain.Sale) {
		if req.Status != nil {
			sale.Status = *req.Status
		}
		if req.PaidAmount != nil {
			sale.PaidAmount = req.PaidAmount
		}
		if req.RemainingAmount != nil {
			sale.RemainingAmount = req.RemainingAmount
		}
		if req.Items != nil {
			sale.Items = *req.Items
		}
		if req.CashierID != nil {
			sale.CashierID = *req.CashierID
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	if !found {
		return nil, store.ErrSaleNotFound
	}
	return &updated, nil
}

// List returns one page of sales matching the filter plus the total match
// count.
func (s *saleService) List(ctx context.Context, filter SaleFilter) ([]domain.Sale, int, error) {
	all, err := s.sales.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	matched := make([]domain.Sale, 0, len(all))
	for _, sale := range all {
		if filter.CashierID != "" && sale.CashierID != filter.CashierID {
			continue
		}
		if filter.CustomerID != "" && sale.CustomerID != filter.CustomerID {
			continue
		}
		if filter.StartDate != "" && sale.Timestamp < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && sale.Timestamp > filter.EndDate {
			continue
		}
		matched = append(matched, sale)
	}

	total := len(matched)
	return paginate(matched, filter.Skip, filter.Limit), total, nil
}
