// Package calc holds the pure order arithmetic: cart totals, history
// filters, monthly analytics and the frequently-ordered ranking. Nothing here
// touches storage and nothing returns an error; bad input degrades to zero.
package calc

import (
	"math"

	"github.com/drstein77/ordercalc/internal/models"
)

// quantity returns a usable quantity, treating negative or non-finite
// values as 0.
func quantity(n models.Number) float64 {
	q := n.Float()
	if q < 0 {
		return 0
	}
	return q
}

// ComputeOrderTotals sums quantity × price over positive lines and counts
// crate units over crate lines.
func ComputeOrderTotals(items []models.LineItem) models.Totals {
	var t models.Totals
	for _, item := range items {
		q := quantity(item.Quantity)
		if q <= 0 {
			continue
		}
		t.Total += q * item.Price.Float()
		if item.Container == models.Crate {
			t.CrateUnits += q
		}
	}
	return t
}

// CrateUnits counts crate units of a saved order.
func CrateUnits(o models.Order) float64 {
	return ComputeOrderTotals(o.Items).CrateUnits
}

const totalTolerance = 1e-6

// VerifyTotal reports whether the stored total of o matches the sum of its
// line items.
func VerifyTotal(o models.Order) bool {
	recomputed := ComputeOrderTotals(o.Items).Total
	return math.Abs(recomputed-o.Total) <= totalTolerance*math.Max(1, math.Abs(o.Total))
}

// CaptureLineItems turns cart entries into line items, taking price and
// container from the live catalog. Entries with no positive quantity are
// dropped. Ids missing from the catalog are returned separately.
func CaptureLineItems(cart []models.CartEntry, products []models.Product) (items []models.LineItem, unknown []string) {
	byID := indexProducts(products)
	for _, entry := range cart {
		q := quantity(entry.Quantity)
		if q <= 0 {
			continue
		}
		p, ok := byID[entry.ID]
		if !ok {
			unknown = append(unknown, entry.ID)
			continue
		}
		items = append(items, models.LineItem{
			ID:        p.ID,
			Price:     models.Number(p.Price.Float()),
			Quantity:  models.Number(q),
			Container: p.Container,
		})
	}
	return items, unknown
}

// CartFromOrder reverses CaptureLineItems for reloading a past order.
func CartFromOrder(o models.Order) []models.CartEntry {
	cart := make([]models.CartEntry, 0, len(o.Items))
	for _, item := range o.Items {
		cart = append(cart, models.CartEntry{ID: item.ID, Quantity: item.Quantity})
	}
	return cart
}

func indexProducts(products []models.Product) map[string]models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}
	return byID
}
