package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"boutique-pos/internal/domain"
	"boutique-pos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsFixture(t *testing.T) (*store.SaleStore, *store.ProductStore, *analyticsService) {
	t.Helper()
	dir := t.TempDir()
	sales := store.NewSaleStore(filepath.Join(dir, "sales.csv"))
	products := store.NewProductStore(filepath.Join(dir, "products.csv"))

	svc := NewAnalyticsService(sales, products).(*analyticsService)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	}
	return sales, products, svc
}

func TestDashboardWindowExcludesOldSales(t *testing.T) {
	sales, _, svc := newAnalyticsFixture(t)

	seed := []domain.Sale{
		{Total: 100, PaymentMethod: domain.PaymentCash, Timestamp: "2025-06-29T10:00:00Z", Status: domain.SaleCompleted},
		{Total: 50, PaymentMethod: domain.PaymentCreditCard, Timestamp: "2025-06-25T10:00:00Z", Status: domain.SaleCompleted},
		// Outside the 7 day window.
		{Total: 999, PaymentMethod: domain.PaymentCash, Timestamp: "2025-06-01T10:00:00Z", Status: domain.SaleCompleted},
	}
	for _, s := range seed {
		_, err := sales.Insert(s)
		require.NoError(t, err)
	}

	analytics, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, float64(150), analytics.TotalSales)
	assert.Equal(t, 2, analytics.TotalTransactions)
	assert.Equal(t, float64(75), analytics.AverageOrderValue)
	assert.Equal(t, 1, analytics.SalesByPaymentMethod["cash"])
	assert.Equal(t, 1, analytics.SalesByPaymentMethod["credit_card"])
	assert.Equal(t, float64(100), analytics.SalesByDay["2025-06-29"])
}

func TestDashboardEmptyWindow(t *testing.T) {
	_, _, svc := newAnalyticsFixture(t)

	analytics, err := svc.Dashboard(context.Background(), 30)
	require.NoError(t, err)

	assert.Zero(t, analytics.TotalSales)
	assert.Zero(t, analytics.TotalTransactions)
	assert.Zero(t, analytics.AverageOrderValue)
	assert.Empty(t, analytics.TopProducts)
	assert.Empty(t, analytics.RevenueTrend)
}

func TestDashboardTopProductsRanking(t *testing.T) {
	sales, products, svc := newAnalyticsFixture(t)

	big, err := products.Insert(domain.Product{Name: "Coat", SKU: "C-01", Price: 200})
	require.NoError(t, err)
	small, err := products.Insert(domain.Product{Name: "Sock", SKU: "S-01", Price: 5})
	require.NoError(t, err)

	_, err = sales.Insert(domain.Sale{
		Total:     410,
		Timestamp: "2025-06-29T10:00:00Z",
		Status:    domain.SaleCompleted,
		Items: []domain.SaleItem{
			{ProductID: big.ID, Quantity: 2, Price: 200},
			{ProductID: small.ID, Quantity: 2, Price: 5},
			{ProductID: "dangling", Quantity: 1, Price: 1},
		},
	})
	require.NoError(t, err)

	analytics, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, analytics.TopProducts, 3)
	assert.Equal(t, "Coat", analytics.TopProducts[0].Name)
	assert.Equal(t, float64(400), analytics.TopProducts[0].Revenue)
	assert.Equal(t, 2, analytics.TopProducts[0].QuantitySold)
	// Dangling references still rank, under a placeholder name.
	for _, tp := range analytics.TopProducts {
		if tp.ProductID == "dangling" {
			assert.Equal(t, "Unknown", tp.Name)
		}
	}
}

func TestDashboardTopProductsCapped(t *testing.T) {
	sales, _, svc := newAnalyticsFixture(t)

	items := make([]domain.SaleItem, 0, 15)
	for i := 0; i < 15; i++ {
		items = append(items, domain.SaleItem{
			ProductID: fmt.Sprintf("p-%d", i),
			Quantity:  1,
			Price:     float64(i + 1),
		})
	}
	_, err := sales.Insert(domain.Sale{
		Total:     120,
		Timestamp: "2025-06-29T10:00:00Z",
		Status:    domain.SaleCompleted,
		Items:     items,
	})
	require.NoError(t, err)

	analytics, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, analytics.TopProducts, 10)
	// Ranked by revenue, descending.
	for i := 1; i < len(analytics.TopProducts); i++ {
		assert.GreaterOrEqual(t, analytics.TopProducts[i-1].Revenue, analytics.TopProducts[i].Revenue)
	}
}

func TestDashboardRevenueTrendIsChronological(t *testing.T) {
	sales, _, svc := newAnalyticsFixture(t)

	for _, ts := range []string{"2025-06-29T10:00:00Z", "2025-06-27T10:00:00Z", "2025-06-28T10:00:00Z"} {
		_, err := sales.Insert(domain.Sale{Total: 10, Timestamp: ts, Status: domain.SaleCompleted})
		require.NoError(t, err)
	}

	analytics, err := svc.Dashboard(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, analytics.RevenueTrend, 3)
	assert.Equal(t, "2025-06-27", analytics.RevenueTrend[0].Date)
	assert.Equal(t, "2025-06-28", analytics.RevenueTrend[1].Date)
	assert.Equal(t, "2025-06-29", analytics.RevenueTrend[2].Date)
}

func TestDailyReport(t *testing.T) {
	sales, _, svc := newAnalyticsFixture(t)

	seed := []domain.Sale{
		{Total: 60, Timestamp: "2025-06-29T09:00:00Z", Status: domain.SaleCompleted,
			Items: []domain.SaleItem{{ProductID: "p1", Quantity: 2, Price: 30}}},
		{Total: 40, Timestamp: "2025-06-29T17:30:00Z", Status: domain.SaleCompleted,
			Items: []domain.SaleItem{{ProductID: "p2", Quantity: 1, Price: 40}}},
		{Total: 25, Timestamp: "2025-06-28T12:00:00Z", Status: domain.SaleCompleted,
			Items: []domain.SaleItem{{ProductID: "p1", Quantity: 1, Price: 25}}},
	}
	for _, s := range seed {
		_, err := sales.Insert(s)
		require.NoError(t, err)
	}

	report, err := svc.DailyReport(context.Background(), "2025-06-29")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-29", report.Date)
	assert.Equal(t, float64(100), report.TotalRevenue)
	assert.Equal(t, 2, report.TotalTransactions)
	assert.Equal(t, 3, report.TotalItemsSold)
	assert.Equal(t, float64(50), report.AverageOrderValue)
	assert.Len(t, report.Sales, 2)

	empty, err := svc.DailyReport(context.Background(), "2025-01-01")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalRevenue)
	assert.Zero(t, empty.AverageOrderValue)
	assert.Empty(t, empty.Sales)
}
