package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/ordercalc/internal/catalog"
	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/models"
)

func TestOpenStoreUsesDataFile(t *testing.T) {
	ctx := context.Background()
	cfg := StoreConfig{
		DataFile: filepath.Join(t.TempDir(), "data", "store.json"),
		Location: time.UTC,
	}

	store, err := OpenStore(ctx, cfg, &logger.Logger{})
	require.NoError(t, err)

	products, err := catalog.Load("")
	require.NoError(t, err)
	seeded, err := store.SeedProducts(ctx, products)
	require.NoError(t, err)
	assert.True(t, seeded)

	order, err := store.SaveOrder(ctx, []models.CartEntry{{ID: products[0].ID, Quantity: 2}})
	require.NoError(t, err)
	require.True(t, store.Close())

	reopened, err := OpenStore(ctx, cfg, &logger.Logger{})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Len(t, reopened.Products(ctx), len(products))
	history := reopened.History(ctx, nil, nil)
	require.Len(t, history, 1)
	assert.True(t, order.Date.Equal(history[0].Date))

	seeded, err = reopened.SeedProducts(ctx, products)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestOpenKeeperRejectsEmptyDataFile(t *testing.T) {
	_, err := OpenKeeper(context.Background(), StoreConfig{}, &logger.Logger{})
	assert.Error(t, err)
}
