package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/ordercalc/internal/models"
)

func run(t *testing.T, dataFile string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"ordercalcctl", "--data-file", dataFile, "--tz", "UTC"}, args...)
	err := newApp(&out).Run(argv)
	return out.String(), err
}

func writeBackup(t *testing.T, path string) models.Backup {
	t.Helper()
	backup := models.Backup{
		Products: []models.Product{
			{ID: "milk", Name: "Gold", Size: "500ml", Price: 33, Category: "Milk", Container: models.Crate},
			{ID: "butter", Name: "Butter", Size: "100g", Price: 56, Category: "Butter", Container: models.Piece},
		},
	}
	require.NoError(t, json.Unmarshal([]byte(`[
		{"date": "2024-01-20T10:00:00Z", "total": 56, "items": [{"id": "butter", "price": 56, "quantity": 1, "container": "piece"}]},
		{"date": "2024-01-10T10:00:00Z", "total": 122, "items": [
			{"id": "milk", "price": 33, "quantity": 2, "container": "crate"},
			{"id": "butter", "price": 56, "quantity": 1, "container": "piece"}
		]}
	]`), &backup.History))

	b, err := json.Marshal(backup)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return backup
}

func TestSeed(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "store.json")

	out, err := run(t, dataFile, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded")

	out, err = run(t, dataFile, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")
}

func TestRestoreThenReport(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "store.json")
	backupFile := filepath.Join(dir, "backup.json")
	writeBackup(t, backupFile)

	out, err := run(t, dataFile, "restore", "--in", backupFile)
	require.NoError(t, err)
	assert.Equal(t, "restored 2 products and 2 orders\n", out)

	t.Run("analytics", func(t *testing.T) {
		out, err := run(t, dataFile, "analytics", "--month", "2024-01")
		require.NoError(t, err)

		var report models.AnalyticsReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 2, report.Orders)
		assert.InDelta(t, 178.0, report.TotalSales, 1e-9)
		assert.Equal(t, "Butter 100g", report.TopProducts[0].Name)

		_, err = run(t, dataFile, "analytics", "--month", "2023-05", "--format", "pdf")
		assert.Error(t, err)
	})

	t.Run("frequent", func(t *testing.T) {
		out, err := run(t, dataFile, "frequent")
		require.NoError(t, err)
		assert.Equal(t, "1. Butter - 100g\n2. Gold - 500ml\n", out)

		out, err = run(t, dataFile, "--window", "1", "frequent")
		require.NoError(t, err)
		assert.Equal(t, "1. Butter - 100g\n", out)
	})

	t.Run("export csv", func(t *testing.T) {
		out, err := run(t, dataFile, "export", "--start", "2024-01-01", "--end", "2024-01-15")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `"10/01/2024, 10:00:00",122.00,2.0,2 x Gold-500ml; 1 x Butter-100g`, lines[1])

		_, err = run(t, dataFile, "export", "--start", "2023-01-01", "--end", "2023-01-31")
		assert.Error(t, err)
	})

	t.Run("zipped export", func(t *testing.T) {
		path := filepath.Join(dir, "History.csv.zip")
		_, err := run(t, dataFile, "export", "--start", "2024-01-01", "--end", "2024-01-31", "--out", path)
		require.NoError(t, err)

		zr, err := zip.OpenReader(path)
		require.NoError(t, err)
		defer zr.Close()
		require.Len(t, zr.File, 1)
		assert.Equal(t, "History.csv", zr.File[0].Name)
	})

	t.Run("backup round trip through tar", func(t *testing.T) {
		path := filepath.Join(dir, "Backup.json.tar")
		_, err := run(t, dataFile, "backup", "--out", path)
		require.NoError(t, err)

		other := filepath.Join(t.TempDir(), "other.json")
		out, err := run(t, other, "restore", "--in", path)
		require.NoError(t, err)
		assert.Equal(t, "restored 2 products and 2 orders\n", out)
	})
}

func TestRestoreRejectsPartialBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products": []}`), 0o644))

	_, err := run(t, filepath.Join(dir, "store.json"), "restore", "--in", path)
	assert.Error(t, err)
}
