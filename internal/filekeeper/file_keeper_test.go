package filekeeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/models"
)

func TestFileKeeper(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")

	kp, err := NewFileKeeper(path, logger.Logger{})
	require.NoError(t, err)

	t.Run("missing file is empty", func(t *testing.T) {
		products, err := kp.LoadProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
		theme, err := kp.LoadTheme(ctx)
		require.NoError(t, err)
		assert.Empty(t, theme)
	})

	products := []models.Product{{ID: "milk", Name: "Gold", Size: "500ml", Price: 33, Category: "Milk", Container: models.Crate}}
	history := []models.Order{{
		Date:  time.Date(2024, 1, 15, 9, 30, 0, 123000000, time.UTC),
		Total: 66,
		Items: []models.LineItem{{ID: "milk", Price: 33, Quantity: 2, Container: models.Crate}},
	}}

	require.NoError(t, kp.SaveProducts(ctx, products))
	require.NoError(t, kp.SaveHistory(ctx, history))
	require.NoError(t, kp.SaveTheme(ctx, "light"))

	t.Run("collections are saved independently", func(t *testing.T) {
		gotProducts, err := kp.LoadProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, products, gotProducts)

		gotHistory, err := kp.LoadHistory(ctx)
		require.NoError(t, err)
		require.Len(t, gotHistory, 1)
		assert.True(t, history[0].Date.Equal(gotHistory[0].Date))
		assert.Equal(t, history[0].Items, gotHistory[0].Items)

		theme, err := kp.LoadTheme(ctx)
		require.NoError(t, err)
		assert.Equal(t, "light", theme)
	})

	t.Run("no temporary files are left behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("ping", func(t *testing.T) {
		assert.True(t, kp.Ping(ctx))
	})

	t.Run("corrupt file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := kp.LoadHistory(ctx)
		assert.Error(t, err)
		assert.Error(t, kp.SaveTheme(ctx, "dark"))
	})
}

func TestNewFileKeeperRequiresPath(t *testing.T) {
	_, err := NewFileKeeper("", logger.Logger{})
	assert.Error(t, err)
}
