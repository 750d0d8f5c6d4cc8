package calc

import "github.com/drstein77/ordercalc/internal/models"

const unknownDetailName = "Unknown Product"

// DescribeOrder resolves the lines of a saved order for display. Prices are
// the captured ones.
func DescribeOrder(o models.Order, products []models.Product) models.OrderDetails {
	byID := indexProducts(products)
	details := models.OrderDetails{
		Date:       o.Date,
		Lines:      make([]models.OrderLine, 0, len(o.Items)),
		Total:      o.Total,
		CrateUnits: CrateUnits(o),
	}
	for _, item := range o.Items {
		name := unknownDetailName
		if p, ok := byID[item.ID]; ok {
			name = p.Name + " - " + p.Size
		}
		q := quantity(item.Quantity)
		details.Lines = append(details.Lines, models.OrderLine{
			Quantity: q,
			Name:     name,
			Price:    item.Price.Float(),
			Total:    q * item.Price.Float(),
		})
	}
	return details
}

// Resolver returns a lookup from product id to product over a catalog
// snapshot.
func Resolver(products []models.Product) func(id string) (models.Product, bool) {
	byID := indexProducts(products)
	return func(id string) (models.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}
}
