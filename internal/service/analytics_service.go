package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"
)

const topProductsLimit = 10

// TopProduct is one row of the top-sellers ranking.
type TopProduct struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// DayRevenue is one point of the chronological revenue trend.
type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Analytics is the dashboard rollup over a trailing day window.
type Analytics struct {
	TotalSales           float64            `json:"total_sales"`
	TotalTransactions    int                `json:"total_transactions"`
	AverageOrderValue    float64            `json:"average_order_value"`
	TopProducts          []TopProduct       `json:"top_products"`
	SalesByPaymentMethod map[string]int     `json:"sales_by_payment_method"`
	SalesByDay           map[string]float64 `json:"sales_by_day"`
	RevenueTrend         []DayRevenue       `json:"revenue_trend"`
}

// DailyReport summarizes a single calendar day.
type DailyReport struct {
	Date              string        `json:"date"`
	TotalRevenue      float64       `json:"total_revenue"`
	TotalTransactions int           `json:"total_transactions"`
	TotalItemsSold    int           `json:"total_items_sold"`
	AverageOrderValue float64       `json:"average_order_value"`
	Sales             []domain.Sale `json:"sales"`
}

// AnalyticsService derives read-side rollups from the full sales table.
// Nothing is persisted; every call recomputes from scratch.
type AnalyticsService interface {
	Dashboard(ctx context.Context, days int) (*Analytics, error)
	DailyReport(ctx context.Context, date string) (*DailyReport, error)
}

type analyticsService struct {
	sales    *store.SaleStore
	products *store.ProductStore
	now      func() time.Time
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(sales *store.SaleStore, products *store.ProductStore) AnalyticsService {
	return &analyticsService{
		sales:    sales,
		products: products,
		now:      time.Now,
	}
}

// Dashboard aggregates all sales whose timestamp falls within the trailing
// window of the given number of days.
func (s *analyticsService) Dashboard(ctx context.Context, days int) (*Analytics, error) {
	all, err := s.sales.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	recent := make([]domain.Sale, 0, len(all))
	for _, sale := range all {
		if sale.Timestamp >= cutoff {
			recent = append(recent, sale)
		}
	}

	analytics := &Analytics{
		TopProducts:          make([]TopProduct, 0),
		SalesByPaymentMethod: make(map[string]int),
		SalesByDay:           make(map[string]float64),
		RevenueTrend:         make([]DayRevenue, 0),
	}

	type productAgg struct {
		quantity int
		revenue  float64
	}
	perProduct := make(map[string]*productAgg)
	names := make(map[string]string)

	for _, sale := range recent {
		analytics.TotalSales += sale.Total
		analytics.TotalTransactions++
		analytics.SalesByPaymentMethod[string(sale.PaymentMethod)]++
		analytics.SalesByDay[dayOf(sale.Timestamp)] += sale.Total

		for _, item := range sale.Items {
			agg, ok := perProduct[item.ProductID]
			if !ok {
				agg = &productAgg{}
				perProduct[item.ProductID] = agg
				names[item.ProductID] = s.productName(item.ProductID)
			}
			agg.quantity += item.Quantity
			agg.revenue += item.Price * float64(item.Quantity)
		}
	}

	if analytics.TotalTransactions > 0 {
		analytics.AverageOrderValue = analytics.TotalSales / float64(analytics.TotalTransactions)
	}

	for id, agg := range perProduct {
		analytics.TopProducts = append(analytics.TopProducts, TopProduct{
			ProductID:    id,
			Name:         names[id],
			QuantitySold: agg.quantity,
			Revenue:      agg.revenue,
		})
	}
	sort.Slice(analytics.TopProducts, func(i, j int) bool {
		return analytics.TopProducts[i].Revenue > analytics.TopProducts[j].Revenue
	})
	if len(analytics.TopProducts) > topProductsLimit {
		analytics.TopProducts = analytics.TopProducts[:topProductsLimit]
	}

	for date, revenue := range analytics.SalesByDay {
		analytics.RevenueTrend = append(analytics.RevenueTrend, DayRevenue{Date: date, Revenue: revenue})
	}
	sort.Slice(analytics.RevenueTrend, func(i, j int) bool {
		return analytics.RevenueTrend[i].Date < analytics.RevenueTrend[j].Date
	})

	return analytics, nil
}

// DailyReport summarizes the sales of one calendar day (YYYY-MM-DD).
func (s *analyticsService) DailyReport(ctx context.Context, date string) (*DailyReport, error) {
	all, err := s.sales.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	report := &DailyReport{Date: date, Sales: make([]domain.Sale, 0)}
	for _, sale := range all {
		if dayOf(sale.Timestamp) != date {
			continue
		}
		report.Sales = append(report.Sales, sale)
		report.TotalRevenue += sale.Total
		report.TotalTransactions++
		for _, item := range sale.Items {
			report.TotalItemsSold += item.Quantity
		}
	}
	if report.TotalTransactions > 0 {
		report.AverageOrderValue = report.TotalRevenue / float64(report.TotalTransactions)
	}
	return report, nil
}

// productName resolves a product id to its display name, falling back to
// "Unknown" for dangling references.
func (s *analyticsService) productName(id string) string {
	product, err := s.products.FindByID(id)
	if err != nil {
		return "Unknown"
	}
	return product.Name
}

// dayOf extracts the YYYY-MM-DD prefix of an RFC 3339 timestamp.
func dayOf(timestamp string) string {
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}
