// Package catalog provides the product list seeded into an empty store.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/drstein77/ordercalc/internal/models"
)

//go:embed products.json
var defaultProducts []byte

// Load reads the catalog at path, or the built-in one when path is empty.
func Load(path string) ([]models.Product, error) {
	data := defaultProducts
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return products, nil
}
