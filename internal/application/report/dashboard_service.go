package report

import (
	"context"
	"sort"
	"time"

	"github.com/erp/stockflow/internal/domain/report"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Recent activity limits
const (
	DefaultRecentActivityLimit = 10
	MaxRecentActivityLimit     = 50
	revenueMonths              = 12
)

// DashboardService serves the dashboard read models. It never writes.
type DashboardService struct {
	repo              report.DashboardRepository
	lowStockThreshold int64
	now               func() time.Time
	logger            *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo report.DashboardRepository, lowStockThreshold int64, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
		now:               func() time.Time { return time.Now().UTC() },
		logger:            logger,
	}
}

// SetClock overrides the time source used for the revenue window
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// GetDashboardStats returns counts, completed revenue and the low stock list
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*report.DashboardStats, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.CompletedSalesRevenue(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.ProductsBelow(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}

	return &report.DashboardStats{
		EntityCounts: *counts,
		TotalRevenue: revenue,
		LowStock:     lowStock,
	}, nil
}

// GetRecentActivity merges the newest sales and purchases, newest first
func (s *DashboardService) GetRecentActivity(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentActivityLimit
	}
	if limit > MaxRecentActivityLimit {
		limit = MaxRecentActivityLimit
	}

	sales, err := s.repo.RecentSales(ctx, limit)
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.RecentPurchases(ctx, limit)
	if err != nil {
		return nil, err
	}

	merged := make([]report.ActivityEntry, 0, len(sales)+len(purchases))
	merged = append(merged, sales...)
	merged = append(merged, purchases...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// GetMonthlyRevenue buckets completed sales revenue by UTC calendar month for
// the trailing 12 months including the current one. Months without sales are zero.
func (s *DashboardService) GetMonthlyRevenue(ctx context.Context) ([]report.MonthlyRevenue, error) {
	now := s.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := current.AddDate(0, -(revenueMonths - 1), 0)

	buckets := make([]report.MonthlyRevenue, revenueMonths)
	index := make(map[string]int, revenueMonths)
	for i := 0; i < revenueMonths; i++ {
		month := start.AddDate(0, i, 0)
		key := month.Format("2006-01")
		buckets[i] = report.MonthlyRevenue{Month: key, Start: month, Revenue: decimal.Zero}
		index[key] = i
	}

	entries, err := s.repo.CompletedSalesSince(ctx, start)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		i, ok := index[e.CompletedAt.UTC().Format("2006-01")]
		if !ok {
			s.logger.Debug("revenue entry outside window", zap.Time("completed_at", e.CompletedAt))
			continue
		}
		buckets[i].Revenue = buckets[i].Revenue.Add(e.Amount)
		buckets[i].Orders++
	}
	return buckets, nil
}
