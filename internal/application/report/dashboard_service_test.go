package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/stockflow/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockDashboardRepository is a mock implementation of report.DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Counts(ctx context.Context) (*report.EntityCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.EntityCounts), args.Error(1)
}

func (m *MockDashboardRepository) CompletedSalesRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) ProductsBelow(ctx context.Context, threshold int64) ([]report.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]report.LowStockItem), args.Error(1)
}

func (m *MockDashboardRepository) RecentSales(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.ActivityEntry), args.Error(1)
}

func (m *MockDashboardRepository) RecentPurchases(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.ActivityEntry), args.Error(1)
}

func (m *MockDashboardRepository) CompletedSalesSince(ctx context.Context, since time.Time) ([]report.RevenueEntry, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]report.RevenueEntry), args.Error(1)
}

func TestDashboardService_GetDashboardStats(t *testing.T) {
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, 10, zaptest.NewLogger(t))
	counts := &report.EntityCounts{Products: 3, Customers: 2, Suppliers: 1, PurchaseOrders: 4, SalesOrders: 5}
	low := []report.LowStockItem{{ProductID: uuid.New(), Name: "A", Quantity: 1}}

	repo.On("Counts", mock.Anything).Return(counts, nil)
	repo.On("CompletedSalesRevenue", mock.Anything).Return(decimal.RequireFromString("99.5"), nil)
	repo.On("ProductsBelow", mock.Anything, int64(10)).Return(low, nil)

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Products)
	assert.Equal(t, int64(5), stats.SalesOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("99.5")))
	assert.Equal(t, low, stats.LowStock)
	repo.AssertExpectations(t)
}

func TestDashboardService_GetDashboardStatsError(t *testing.T) {
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, 10, nil)
	repo.On("Counts", mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.GetDashboardStats(context.Background())
	assert.Error(t, err)
}

func TestDashboardService_GetRecentActivity(t *testing.T) {
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, 10, nil)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	sales := []report.ActivityEntry{
		{Kind: report.ActivitySale, OrderID: uuid.New(), CreatedAt: at(5)},
		{Kind: report.ActivitySale, OrderID: uuid.New(), CreatedAt: at(1)},
	}
	purchases := []report.ActivityEntry{
		{Kind: report.ActivityPurchase, OrderID: uuid.New(), CreatedAt: at(3)},
		{Kind: report.ActivityPurchase, OrderID: uuid.New(), CreatedAt: at(2)},
	}
	repo.On("RecentSales", mock.Anything, 3).Return(sales, nil)
	repo.On("RecentPurchases", mock.Anything, 3).Return(purchases, nil)

	got, err := svc.GetRecentActivity(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, at(5), got[0].CreatedAt)
	assert.Equal(t, at(3), got[1].CreatedAt)
	assert.Equal(t, at(2), got[2].CreatedAt)
}

func TestDashboardService_GetRecentActivityLimits(t *testing.T) {
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, 10, nil)
	repo.On("RecentSales", mock.Anything, DefaultRecentActivityLimit).Return([]report.ActivityEntry{}, nil).Once()
	repo.On("RecentPurchases", mock.Anything, DefaultRecentActivityLimit).Return([]report.ActivityEntry{}, nil).Once()
	repo.On("RecentSales", mock.Anything, MaxRecentActivityLimit).Return([]report.ActivityEntry{}, nil).Once()
	repo.On("RecentPurchases", mock.Anything, MaxRecentActivityLimit).Return([]report.ActivityEntry{}, nil).Once()

	_, err := svc.GetRecentActivity(context.Background(), 0)
	require.NoError(t, err)
	_, err = svc.GetRecentActivity(context.Background(), 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDashboardService_GetMonthlyRevenue(t *testing.T) {
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, 10, nil)
	svc.SetClock(func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) })

	windowStart := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	repo.On("CompletedSalesSince", mock.Anything, windowStart).Return([]report.RevenueEntry{
		{CompletedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(10)},
		{CompletedAt: time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC), Amount: decimal.NewFromInt(5)},
		{CompletedAt: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(7)},
	}, nil)

	buckets, err := svc.GetMonthlyRevenue(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 12)

	assert.Equal(t, "2023-04", buckets[0].Month)
	assert.True(t, buckets[0].Revenue.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "2024-03", buckets[11].Month)
	assert.True(t, buckets[11].Revenue.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, int64(2), buckets[11].Orders)
	for _, b := range buckets[1:11] {
		assert.True(t, b.Revenue.IsZero(), b.Month)
	}
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i].Start.After(buckets[i-1].Start))
	}
}
