package rediskeeper

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/models"
)

// Runs against a live server only: REDIS_TEST_ADDR=localhost:6379.
func TestRedisKeeper(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}
	ctx := context.Background()

	kp, err := NewRedisKeeper(ctx, addr, "", 15, logger.Logger{})
	require.NoError(t, err)
	defer kp.Close()
	require.NoError(t, kp.client.FlushDB(ctx).Err())

	products, err := kp.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	history := []models.Order{{
		Date:  time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		Total: 66,
		Items: []models.LineItem{{ID: "milk", Price: 33, Quantity: 2, Container: models.Crate}},
	}}
	require.NoError(t, kp.SaveHistory(ctx, history))
	got, err := kp.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, history[0].Date.Equal(got[0].Date))

	require.NoError(t, kp.SaveTheme(ctx, "light"))
	theme, err := kp.LoadTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)
	assert.True(t, kp.Ping(ctx))
}

func TestNewRedisKeeperRequiresAddr(t *testing.T) {
	_, err := NewRedisKeeper(context.Background(), "", "", 0, logger.Logger{})
	assert.Error(t, err)
}
