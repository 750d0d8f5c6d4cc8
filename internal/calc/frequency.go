package calc

import (
	"sort"
	"strings"

	"github.com/drstein77/ordercalc/internal/models"
)

// DefaultFrequencyWindow is how many recent orders feed the shortlist.
const DefaultFrequencyWindow = 50

// RankByFrequency returns the catalog products ordered in the most recent
// window orders, most ordered quantity first. Ties keep the order in which
// the ids were first met. Ids missing from the catalog are dropped.
func RankByFrequency(history []models.Order, window int, products []models.Product) []models.Product {
	if window <= 0 {
		window = DefaultFrequencyWindow
	}

	recent := SortHistory(append([]models.Order(nil), history...))
	if len(recent) > window {
		recent = recent[:window]
	}

	var (
		ids   []string
		usage = make(map[string]float64)
	)
	for _, o := range recent {
		for _, item := range o.Items {
			if _, seen := usage[item.ID]; !seen {
				ids = append(ids, item.ID)
			}
			usage[item.ID] += quantity(item.Quantity)
		}
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return usage[ids[i]] > usage[ids[j]]
	})

	byID := indexProducts(products)
	ranked := []models.Product{}
	for _, id := range ids {
		if usage[id] <= 0 {
			continue
		}
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}
	return ranked
}

// GroupByCategory groups products by category, categories sorted by name
// and products kept in catalog order.
func GroupByCategory(products []models.Product) []models.CategoryGroup {
	index := make(map[string]int)
	groups := []models.CategoryGroup{}
	for _, p := range products {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, models.CategoryGroup{Category: p.Category})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Category < groups[j].Category
	})
	return groups
}

// SearchProducts keeps products whose "name - size" label contains term,
// case-insensitively. An empty term keeps everything.
func SearchProducts(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	found := []models.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name+" - "+p.Size), term) {
			found = append(found, p)
		}
	}
	return found
}
