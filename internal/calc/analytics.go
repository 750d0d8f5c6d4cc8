package calc

import (
	"sort"
	"time"

	"github.com/drstein77/ordercalc/internal/models"
)

const (
	TopProductsLimit = 5
	UnknownProduct   = "Unknown"
)

// DisplayName is the analytics label of a product id: "<name> <size>", or
// "Unknown" when the id no longer resolves.
func DisplayName(id string, byID map[string]models.Product) string {
	p, ok := byID[id]
	if !ok {
		return UnknownProduct
	}
	return p.Name + " " + p.Size
}

// ComputeMonthlyAnalytics builds the sales report of one calendar month.
// orders are expected to be already restricted to that month.
func ComputeMonthlyAnalytics(orders []models.Order, products []models.Product, year, month int, loc *time.Location) models.AnalyticsReport {
	if loc == nil {
		loc = time.Local
	}
	report := models.AnalyticsReport{
		Year:        year,
		Month:       month,
		Orders:      len(orders),
		TopProducts: []models.NamedValue{},
	}

	days := 0
	if month >= 1 && month <= 12 {
		days = DaysInMonth(year, month)
	}
	report.DailySales = make([]models.DayTotal, days)
	for i := range report.DailySales {
		report.DailySales[i].Day = i + 1
	}

	byID := indexProducts(products)
	var (
		names   []string
		revenue = make(map[string]float64)
	)
	for _, o := range orders {
		report.TotalSales += o.Total
		if !VerifyTotal(o) {
			report.Discrepancies = append(report.Discrepancies, o.Date)
		}

		for _, item := range o.Items {
			name := DisplayName(item.ID, byID)
			if _, seen := revenue[name]; !seen {
				names = append(names, name)
			}
			revenue[name] += quantity(item.Quantity) * item.Price.Float()
		}

		day := o.Date.In(loc).Day()
		if day >= 1 && day <= days {
			report.DailySales[day-1].Total += o.Total
		}
	}

	ranked := make([]models.NamedValue, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, models.NamedValue{Name: name, Value: revenue[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if len(ranked) > TopProductsLimit {
		ranked = ranked[:TopProductsLimit]
	}
	report.TopProducts = ranked

	return report
}
