package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/metrics"
	"github.com/drstein77/ordercalc/internal/models"
)

// CartTotals previews the totals of a cart at catalog prices. Unknown ids
// are returned and left out of the totals.
func (s *MemoryStorage) CartTotals(_ context.Context, cart []models.CartEntry) (models.Totals, []string) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	items, unknown := calc.CaptureLineItems(cart, s.products)
	return calc.ComputeOrderTotals(items), unknown
}

// SaveOrder captures the cart at current catalog prices and appends it to
// the history.
func (s *MemoryStorage) SaveOrder(ctx context.Context, cart []models.CartEntry) (models.Order, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	items, unknown := calc.CaptureLineItems(cart, s.products)
	if len(unknown) > 0 {
		return models.Order{}, fmt.Errorf("products %s: %w", strings.Join(unknown, ", "), ErrNotFound)
	}
	totals := calc.ComputeOrderTotals(items)
	if len(items) == 0 || totals.Total <= 0 {
		return models.Order{}, ErrEmptyOrder
	}

	order := models.Order{
		Date:  s.uniqueTimestamp(),
		Total: totals.Total,
		Items: items,
	}

	history := make([]models.Order, 0, len(s.history)+1)
	history = append(history, order)
	history = append(history, s.history...)
	if err := s.commitHistory(ctx, calc.SortHistory(history)); err != nil {
		return models.Order{}, err
	}

	metrics.OrdersSavedTotal.Inc()
	metrics.OrderValue.Observe(totals.Total)
	metrics.OrderCrateUnits.Observe(totals.CrateUnits)
	s.log.Info("Order saved",
		zap.Time("date", order.Date),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))

	return order, nil
}

// uniqueTimestamp returns the current instant at millisecond precision,
// moved forward until no saved order has it. Callers hold the lock.
func (s *MemoryStorage) uniqueTimestamp() time.Time {
	ts := s.now().UTC().Truncate(time.Millisecond)
	taken := make(map[int64]struct{}, len(s.history))
	for _, o := range s.history {
		taken[o.Date.UnixMilli()] = struct{}{}
	}
	for {
		if _, ok := taken[ts.UnixMilli()]; !ok {
			return ts
		}
		ts = ts.Add(time.Millisecond)
	}
}

// History returns the orders between the two calendar dates, most recent
// first. Nil bounds are open.
func (s *MemoryStorage) History(_ context.Context, start, end *time.Time) []models.Order {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return calc.FilterByDateRange(s.history, s.inLocation(start), s.inLocation(end))
}

// inLocation returns midnight of the store-calendar day that contains d.
func (s *MemoryStorage) inLocation(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	y, m, day := d.In(s.loc).Date()
	local := time.Date(y, m, day, 0, 0, 0, 0, s.loc)
	return &local
}

// Order finds the order saved at date.
func (s *MemoryStorage) Order(_ context.Context, date time.Time) (models.OrderDetails, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	for _, o := range s.history {
		if o.Date.Equal(date) {
			return calc.DescribeOrder(o, s.products), nil
		}
	}
	return models.OrderDetails{}, fmt.Errorf("order %s: %w", date.Format(time.RFC3339Nano), ErrNotFound)
}

// LastOrder returns the most recent order as a cart.
func (s *MemoryStorage) LastOrder(_ context.Context) (models.Cart, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	if len(s.history) == 0 {
		return models.Cart{}, fmt.Errorf("no saved orders: %w", ErrNotFound)
	}
	return models.Cart{Items: calc.CartFromOrder(s.history[0])}, nil
}

// DeleteOrders removes the orders saved at the given instants and reports
// how many were removed.
func (s *MemoryStorage) DeleteOrders(ctx context.Context, dates []time.Time) (int, error) {
	drop := make(map[int64]struct{}, len(dates))
	for _, d := range dates {
		drop[d.UnixNano()] = struct{}{}
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	kept := make([]models.Order, 0, len(s.history))
	for _, o := range s.history {
		if _, ok := drop[o.Date.UnixNano()]; !ok {
			kept = append(kept, o)
		}
	}
	removed := len(s.history) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commitHistory(ctx, kept); err != nil {
		return 0, err
	}

	metrics.OrdersDeletedTotal.Add(float64(removed))
	s.log.Info("Orders deleted", zap.Int("count", removed))
	return removed, nil
}

// MonthlyAnalytics reports sales of one calendar month in the store
// location.
func (s *MemoryStorage) MonthlyAnalytics(_ context.Context, year, month int) models.AnalyticsReport {
	s.mx.RLock()
	defer s.mx.RUnlock()

	orders := calc.FilterByMonth(s.history, year, month, s.loc)
	report := calc.ComputeMonthlyAnalytics(orders, s.products, year, month, s.loc)
	if len(report.Discrepancies) > 0 {
		s.log.Warn("Orders with totals not matching their lines",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("count", len(report.Discrepancies)))
	}
	return report
}
