package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	products, err := Load("")
	require.NoError(t, err)
	require.NotEmpty(t, products)

	ids := make(map[string]bool)
	for _, p := range products {
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
		assert.True(t, p.Container.Valid(), p.ID)
		assert.Positive(t, p.Price.Float(), p.ID)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","name":"X","price":"12","container":"piece"}]`), 0o644))

	products, err := Load(path)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12.0, products[0].Price.Float())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
