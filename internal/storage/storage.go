package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/metrics"
	"github.com/drstein77/ordercalc/internal/models"
)

var (
	ErrConflict       = errors.New("data conflict")
	ErrNotFound       = errors.New("not found")
	ErrEmptyOrder     = errors.New("order has no positive lines")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidBackup  = errors.New("invalid backup")
	ErrInvalidTheme   = errors.New("invalid theme")
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Log interface {
	Info(string, ...zap.Field)
	Warn(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Keeper persists the two collections and the theme as whole values.
type Keeper interface {
	LoadProducts(context.Context) ([]models.Product, error)
	SaveProducts(context.Context, []models.Product) error
	LoadHistory(context.Context) ([]models.Order, error)
	SaveHistory(context.Context, []models.Order) error
	LoadTheme(context.Context) (string, error)
	SaveTheme(context.Context, string) error
	Ping(context.Context) bool
	Close() bool
}

type Options struct {
	Location        *time.Location
	FrequencyWindow int
	Now             func() time.Time
}

// MemoryStorage keeps the catalog and history in memory and writes every
// change through to the keeper. A failed write leaves memory untouched.
type MemoryStorage struct {
	mx sync.RWMutex

	products []models.Product
	history  []models.Order
	theme    string

	loc    *time.Location
	window int
	now    func() time.Time

	keeper Keeper
	log    Log
}

// NewMemoryStorage loads the keeper's collections into a new MemoryStorage.
func NewMemoryStorage(ctx context.Context, keeper Keeper, log Log, opts Options) (*MemoryStorage, error) {
	if keeper == nil {
		return nil, errors.New("storage keeper is nil")
	}

	s := &MemoryStorage{
		loc:    opts.Location,
		window: opts.FrequencyWindow,
		now:    opts.Now,
		keeper: keeper,
		log:    log,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.window <= 0 {
		s.window = calc.DefaultFrequencyWindow
	}
	if s.now == nil {
		s.now = time.Now
	}

	var err error
	if s.products, err = keeper.LoadProducts(ctx); err != nil {
		return nil, fmt.Errorf("cannot load products: %w", err)
	}
	history, err := keeper.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load history: %w", err)
	}
	s.history = calc.SortHistory(history)
	if s.theme, err = keeper.LoadTheme(ctx); err != nil {
		return nil, fmt.Errorf("cannot load theme: %w", err)
	}
	if s.theme == "" {
		s.theme = ThemeDark
	}

	log.Info("store loaded",
		zap.Int("products", len(s.products)),
		zap.Int("orders", len(s.history)))

	return s, nil
}

// Location is the calendar used for day and month boundaries.
func (s *MemoryStorage) Location() *time.Location {
	return s.loc
}

func (s *MemoryStorage) Ping(ctx context.Context) bool {
	return s.keeper.Ping(ctx)
}

func (s *MemoryStorage) Close() bool {
	return s.keeper.Close()
}

func (s *MemoryStorage) Theme(_ context.Context) string {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.theme
}

func (s *MemoryStorage) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	if err := s.keeper.SaveTheme(ctx, theme); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("theme").Inc()
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.theme = theme
	return nil
}

// commitProducts persists products and swaps them in. Callers hold the
// write lock.
func (s *MemoryStorage) commitProducts(ctx context.Context, products []models.Product) error {
	if err := s.keeper.SaveProducts(ctx, products); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("products").Inc()
		s.log.Error("Failed to save products", zap.Error(err))
		return fmt.Errorf("failed to save products: %w", err)
	}
	s.products = products
	return nil
}

// commitHistory persists history and swaps it in. Callers hold the write
// lock.
func (s *MemoryStorage) commitHistory(ctx context.Context, history []models.Order) error {
	if err := s.keeper.SaveHistory(ctx, history); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("history").Inc()
		s.log.Error("Failed to save history", zap.Error(err))
		return fmt.Errorf("failed to save history: %w", err)
	}
	s.history = history
	return nil
}
