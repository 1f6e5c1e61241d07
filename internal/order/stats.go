package order

import (
	"context"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes orders in a date range for the admin dashboard.
type Stats struct {
	TotalOrders       int64            `json:"total_orders"`
	TotalRevenue      float64          `json:"total_revenue"`
	AverageOrderValue float64          `json:"average_order_value"`
	MedianOrderValue  float64          `json:"median_order_value"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// Statistics aggregates order counts, revenue and order-value distribution
// over [from, to]. The two scans are independent and run concurrently.
func (s *Service) Statistics(ctx context.Context, from, to time.Time) (*Stats, error) {
	g, gctx := errgroup.WithContext(ctx)

	var rows []struct {
		Status string
		Count  int64
		Amount float64
	}
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Order{}).
			Select("status, count(*) as count, coalesce(sum(total), 0) as amount").
			Where("created_at >= ? and created_at <= ?", from, to).
			Group("status").
			Scan(&rows).Error
	})

	var totals []float64
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Order{}).
			Where("created_at >= ? and created_at <= ? and status <> ?",
				from, to, domain.OrderStatusCancelled).
			Pluck("total", &totals).Error
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Stats{ByStatus: make(map[string]int64, len(rows))}
	for _, r := range rows {
		out.ByStatus[r.Status] = r.Count
		out.TotalOrders += r.Count
		if r.Status != domain.OrderStatusCancelled {
			out.TotalRevenue += r.Amount
		}
	}
	if len(totals) > 0 {
		out.AverageOrderValue, _ = stats.Mean(totals)
		out.MedianOrderValue, _ = stats.Median(totals)
	}
	return out, nil
}
