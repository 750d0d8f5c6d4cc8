package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

// ExportBackup snapshots both collections.
func (s *MemoryStorage) ExportBackup(_ context.Context) models.Backup {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return models.Backup{
		Products: append([]models.Product{}, s.products...),
		History:  append([]models.Order{}, s.history...),
	}
}

// ImportBackup replaces both collections. Products are written first; if
// the history write then fails the catalog is restored.
func (s *MemoryStorage) ImportBackup(ctx context.Context, b models.Backup) error {
	if b.Products == nil || b.History == nil {
		return fmt.Errorf("%w: products and history are both required", ErrInvalidBackup)
	}

	products := append([]models.Product{}, b.Products...)
	for i := range products {
		if err := validateProduct(&products[i]); err != nil {
			return fmt.Errorf("%w: product %q: %v", ErrInvalidBackup, products[i].ID, err)
		}
	}

	// order dates are unique at millisecond precision, as in SaveOrder
	seen := make(map[int64]struct{}, len(b.History))
	for _, o := range b.History {
		if err := validateOrder(o); err != nil {
			return fmt.Errorf("%w: order %s: %v", ErrInvalidBackup, o.Date.Format(time.RFC3339Nano), err)
		}
		key := o.Date.UnixMilli()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: two orders saved at %s", ErrConflict, o.Date)
		}
		seen[key] = struct{}{}
	}
	history := calc.SortHistory(append([]models.Order{}, b.History...))

	s.mx.Lock()
	defer s.mx.Unlock()

	previous := s.products
	if err := s.commitProducts(ctx, products); err != nil {
		return err
	}
	if err := s.commitHistory(ctx, history); err != nil {
		if rollbackErr := s.commitProducts(ctx, previous); rollbackErr != nil {
			s.log.Error("Failed to restore products after import error", zap.Error(rollbackErr))
		}
		return err
	}

	s.log.Info("Backup imported",
		zap.Int("products", len(products)),
		zap.Int("orders", len(history)))
	return nil
}

func validateOrder(o models.Order) error {
	if o.Date.IsZero() {
		return errors.New("date is required")
	}
	for i, item := range o.Items {
		switch {
		case item.Quantity.Float() < 0:
			return fmt.Errorf("line %d: quantity must not be negative", i+1)
		case item.Price.Float() < 0:
			return fmt.Errorf("line %d: price must not be negative", i+1)
		case !item.Container.Valid():
			return fmt.Errorf("line %d: container must be %q or %q", i+1, models.Piece, models.Crate)
		}
	}
	if !calc.VerifyTotal(o) {
		return fmt.Errorf("total %.2f does not match its lines", o.Total)
	}
	return nil
}
