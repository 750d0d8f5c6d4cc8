// Package export renders history and analytics as CSV, PDF and PNG files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

const (
	dateTimeLayout = "02/01/2006, 15:04:05"
	unknownName    = "Unknown"
)

var csvHeader = []string{"Date", "Total Amount", "Total Crates", "Products"}

// HistoryCSV writes one row per order: date, total, crate units and the
// "qty x name-size" list.
func HistoryCSV(w io.Writer, orders []models.Order, products []models.Product, loc *time.Location) error {
	resolve := calc.Resolver(products)
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range orders {
		lines := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			name := unknownName
			if p, ok := resolve(item.ID); ok {
				name = p.Name + "-" + p.Size
			}
			lines = append(lines, formatQuantity(item.Quantity.Float())+" x "+name)
		}

		record := []string{
			o.Date.In(loc).Format(dateTimeLayout),
			formatAmount(o.Total),
			formatCrates(calc.CrateUnits(o)),
			strings.Join(lines, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatCrates(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
