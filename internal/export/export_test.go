package export

import (
	"bytes"
	"encoding/csv"
	"image/png"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

func fixtures() ([]models.Order, []models.Product) {
	products := []models.Product{
		{ID: "milk", Name: "Gold", Size: "500ml", Price: 33, Category: "Milk", Container: models.Crate},
		{ID: "butter", Name: "Butter", Size: "100g", Price: 56, Category: "Butter", Container: models.Piece},
	}
	orders := []models.Order{
		{
			Date:  time.Date(2024, 1, 15, 9, 30, 5, 0, time.UTC),
			Total: 138.5,
			Items: []models.LineItem{
				{ID: "milk", Price: 33, Quantity: 2.5, Container: models.Crate},
				{ID: "butter", Price: 56, Quantity: 1, Container: models.Piece},
			},
		},
		{
			Date:  time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC),
			Total: 20,
			Items: []models.LineItem{{ID: "deleted", Price: 10, Quantity: 2, Container: models.Piece}},
		},
	}
	return orders, products
}

func TestHistoryCSV(t *testing.T) {
	orders, products := fixtures()
	var buf bytes.Buffer

	require.NoError(t, HistoryCSV(&buf, orders, products, time.UTC))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Total Amount", "Total Crates", "Products"},
		{"15/01/2024, 09:30:05", "138.50", "2.5", "2.5 x Gold-500ml; 1 x Butter-100g"},
		{"03/01/2024, 18:00:00", "20.00", "0.0", "2 x Unknown"},
	}, records)
}

func TestHistoryCSVUsesLocation(t *testing.T) {
	orders, products := fixtures()
	var buf bytes.Buffer
	ist := time.FixedZone("IST", 5*3600+1800)

	require.NoError(t, HistoryCSV(&buf, orders[1:], products, ist))
	assert.Contains(t, buf.String(), "03/01/2024, 23:30:00")
}

func TestHistoryPDF(t *testing.T) {
	orders, products := fixtures()
	// enough rows to force a page break
	for i := 0; i < 40; i++ {
		orders = append(orders, orders[0])
	}
	var buf bytes.Buffer

	require.NoError(t, HistoryPDF(&buf, orders, products, time.UTC, "2024-01-01", "2024-01-31"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTextEncoder(t *testing.T) {
	tr := textEncoder(gofpdf.New("P", "mm", "A4", ""))

	assert.Equal(t, "Amul Gold", tr("Amul Gold"))
	assert.Equal(t, "Caf\xe9 \x80", tr("Café €"))
	assert.Equal(t, "Rs .", tr("Rs ₹"))
}

func TestPDFWithNonLatinNames(t *testing.T) {
	orders, products := fixtures()
	products[0].Name = "दूध Gold"
	report := calc.ComputeMonthlyAnalytics(orders, products, 2024, 1, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, HistoryPDF(&buf, orders, products, time.UTC, "2024-01-01", "2024-01-31"))
	buf.Reset()
	require.NoError(t, AnalyticsPDF(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestAnalyticsPDF(t *testing.T) {
	orders, products := fixtures()
	report := calc.ComputeMonthlyAnalytics(orders, products, 2024, 1, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, AnalyticsPDF(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	empty := calc.ComputeMonthlyAnalytics(nil, products, 2024, 2, time.UTC)
	require.NoError(t, AnalyticsPDF(&buf, empty))
	assert.NotZero(t, buf.Len())
}

func TestItemsSummary(t *testing.T) {
	orders, products := fixtures()
	resolve := calc.Resolver(products)

	assert.Equal(t, "2x Unknown", itemsSummary(orders[1], resolve))
	assert.Equal(t, "2.5x Gold..., 1x Butter...", itemsSummary(orders[0], resolve))

	long := models.Order{Items: []models.LineItem{
		{ID: "butter", Quantity: 10}, {ID: "butter", Quantity: 20}, {ID: "butter", Quantity: 30},
	}}
	summary := itemsSummary(long, resolve)
	assert.Equal(t, "10x Butter..., 20x Butter..., ...", summary)
}

func TestCharts(t *testing.T) {
	orders, products := fixtures()
	report := calc.ComputeMonthlyAnalytics(orders, products, 2024, 1, time.UTC)

	t.Run("daily sales", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, DailySalesPNG(&buf, report.DailySales))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, chartWidth, img.Bounds().Dx())
		assert.Equal(t, chartHeight, img.Bounds().Dy())
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("history", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, HistoryPNG(&buf, orders, time.UTC, start, end))
		_, err := png.Decode(&buf)
		require.NoError(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, HistoryPNG(&buf, nil, time.UTC, start, end))
		_, err := png.Decode(&buf)
		require.NoError(t, err)
	})
}

func TestDailyTotals(t *testing.T) {
	orders, _ := fixtures()
	orders = append(orders, models.Order{Date: time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC), Total: 11.5})

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	days := dailyTotals(orders, time.UTC, start, end)
	require.Len(t, days, 13)
	assert.InDelta(t, 20.0, days[0], 1e-9)
	assert.InDelta(t, 150.0, days[12], 1e-9)
	assert.Zero(t, days[5])

	t.Run("buckets by local day", func(t *testing.T) {
		kolkata := time.FixedZone("IST", 5*3600+1800)
		days := dailyTotals(orders, kolkata, start.In(kolkata), time.Date(2024, 1, 16, 0, 0, 0, 0, kolkata))
		require.Len(t, days, 14)
		assert.InDelta(t, 138.5, days[12], 1e-9)
		assert.InDelta(t, 11.5, days[13], 1e-9)
	})

	t.Run("inverted range", func(t *testing.T) {
		assert.Empty(t, dailyTotals(orders, time.UTC, end, start))
	})
}
