package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

const customIDPrefix = "custom_"

// Products returns a copy of the catalog.
func (s *MemoryStorage) Products(_ context.Context) []models.Product {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return append([]models.Product{}, s.products...)
}

// Catalog returns the frequently ordered shortlist followed by the catalog
// grouped by category. search narrows both.
func (s *MemoryStorage) Catalog(_ context.Context, search string) models.CatalogView {
	s.mx.RLock()
	defer s.mx.RUnlock()

	products := calc.SearchProducts(s.products, search)
	return models.CatalogView{
		Frequent:   calc.RankByFrequency(s.history, s.window, products),
		Categories: calc.GroupByCategory(products),
	}
}

// FrequentProducts ranks catalog products over the last window orders. A
// non-positive window uses the configured one.
func (s *MemoryStorage) FrequentProducts(_ context.Context, window int) []models.Product {
	if window <= 0 {
		window = s.window
	}

	s.mx.RLock()
	defer s.mx.RUnlock()
	return calc.RankByFrequency(s.history, window, s.products)
}

// SeedProducts stores products when the catalog is empty. It reports
// whether the seed was applied.
func (s *MemoryStorage) SeedProducts(ctx context.Context, products []models.Product) (bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if len(s.products) > 0 || len(products) == 0 {
		return false, nil
	}
	seed := append([]models.Product{}, products...)
	for i := range seed {
		if err := validateProduct(&seed[i]); err != nil {
			return false, fmt.Errorf("product %q: %w", seed[i].ID, err)
		}
	}
	if err := s.commitProducts(ctx, seed); err != nil {
		return false, err
	}
	s.log.Info("Catalog seeded", zap.Int("count", len(products)))
	return true, nil
}

func (s *MemoryStorage) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return models.Product{}, err
	}
	p.ID = customIDPrefix + uuid.NewString()

	s.mx.Lock()
	defer s.mx.Unlock()

	products := append(append([]models.Product{}, s.products...), p)
	if err := s.commitProducts(ctx, products); err != nil {
		return models.Product{}, err
	}
	s.log.Info("Product added", zap.String("id", p.ID))
	return p, nil
}

// UpdateProduct replaces the product with p.ID in place.
func (s *MemoryStorage) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(&p); err != nil {
		return models.Product{}, err
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	i := s.productIndex(p.ID)
	if i < 0 {
		return models.Product{}, fmt.Errorf("product %q: %w", p.ID, ErrNotFound)
	}
	products := append([]models.Product{}, s.products...)
	products[i] = p
	if err := s.commitProducts(ctx, products); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a product. Past orders keep referencing its id.
func (s *MemoryStorage) DeleteProduct(ctx context.Context, id string) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	products := make([]models.Product, 0, len(s.products)-1)
	products = append(products, s.products[:i]...)
	products = append(products, s.products[i+1:]...)
	return s.commitProducts(ctx, products)
}

func (s *MemoryStorage) productIndex(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Size = strings.TrimSpace(p.Size)
	p.Category = strings.TrimSpace(p.Category)

	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price.Float() < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case !p.Container.Valid():
		return fmt.Errorf("%w: container must be %q or %q", ErrInvalidProduct, models.Piece, models.Crate)
	}
	p.Price = models.Number(p.Price.Float())
	return nil
}
