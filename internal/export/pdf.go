package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

const (
	pageBottom    = 270.0
	rowHeight     = 15.0
	itemsMaxRunes = 30
	nameMaxRunes  = 10
)

// HistoryPDF writes the orders as a table with crate and amount totals.
// start and end only label the report.
func HistoryPDF(w io.Writer, orders []models.Order, products []models.Product, loc *time.Location, start, end string) error {
	resolve := calc.Resolver(products)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := textEncoder(pdf)
	pdf.SetTitle("Sales History", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Sales History", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Date Range: %s to %s", start, end), "", 1, "C", false, 0, "")

	y := tableHeader(pdf, 45)

	var grandTotal, grandCrates float64
	for _, o := range orders {
		crates := calc.CrateUnits(o)

		pdf.Text(10, y, o.Date.In(loc).Format(dateTimeLayout))
		pdf.Text(100, y, formatCrates(crates))
		pdf.Text(130, y, formatAmount(o.Total))
		pdf.SetFontSize(10)
		pdf.Text(160, y, tr(itemsSummary(o, resolve)))
		pdf.SetFontSize(12)

		grandTotal += o.Total
		grandCrates += crates
		y += rowHeight
		if y > pageBottom {
			pdf.AddPage()
			y = tableHeader(pdf, 20)
		}
	}

	y += 5
	pdf.Line(10, y, 200, y)
	y += 10
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(70, y, "Total Crates:")
	pdf.Text(100, y, formatCrates(grandCrates))
	pdf.Text(100, y+10, "Grand Total:")
	pdf.Text(130, y+10, "Rs "+formatAmount(grandTotal))

	return pdf.Output(w)
}

// textEncoder converts UTF-8 to the cp1252 encoding of the core fonts.
// Runes outside cp1252 come out as '.'.
func textEncoder(pdf *gofpdf.Fpdf) func(string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")
}

// tableHeader draws the column titles at y and returns where rows start.
func tableHeader(pdf *gofpdf.Fpdf, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(10, y, "Date & Time")
	pdf.Text(100, y, "Crates")
	pdf.Text(130, y, "Total (Rs)")
	pdf.Text(160, y, "Items")
	pdf.SetFont("Helvetica", "", 12)
	y += 3
	pdf.Line(10, y, 200, y)
	return y + 7
}

func itemsSummary(o models.Order, resolve func(string) (models.Product, bool)) string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		name := unknownName
		if p, ok := resolve(item.ID); ok {
			name = truncate(p.Name, nameMaxRunes) + "..."
		}
		parts = append(parts, formatQuantity(item.Quantity.Float())+"x "+name)
	}
	s := strings.Join(parts, ", ")
	if len([]rune(s)) > itemsMaxRunes {
		s = truncate(s, itemsMaxRunes) + "..."
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// AnalyticsPDF writes the monthly report: total sales, a bar chart of the top
// products and a line chart of day-wise sales.
func AnalyticsPDF(w io.Writer, report models.AnalyticsReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Analytics", false)
	pdf.AddPage()

	month := time.Date(report.Year, time.Month(report.Month), 1, 0, 0, 0, 0, time.UTC)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Sales Analytics - "+month.Format("January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Total Sales", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "Rs "+formatAmount(report.TotalSales), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Top 5 Selling Products (by Value)", "", 1, "L", false, 0, "")
	y := topProductsChart(pdf, report.TopProducts, pdf.GetY()+2)

	pdf.SetXY(10, y+8)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Day-wise Sales", "", 1, "L", false, 0, "")
	dailySalesChart(pdf, report.DailySales, pdf.GetY()+2)

	return pdf.Output(w)
}

// topProductsChart draws horizontal bars and returns the y below the chart.
func topProductsChart(pdf *gofpdf.Fpdf, top []models.NamedValue, y float64) float64 {
	const (
		labelX   = 10.0
		barX     = 70.0
		barMaxW  = 110.0
		barH     = 7.0
		barSpace = 10.0
	)

	pdf.SetFont("Helvetica", "", 10)
	if len(top) == 0 {
		pdf.Text(labelX, y+5, "No sales")
		return y + barSpace
	}

	tr := textEncoder(pdf)
	maxValue := top[0].Value
	pdf.SetFillColor(0, 102, 204)
	for i, p := range top {
		rowY := y + float64(i)*barSpace
		pdf.Text(labelX, rowY+5, tr(truncate(p.Name, 28)))
		width := 0.0
		if maxValue > 0 {
			width = barMaxW * p.Value / maxValue
		}
		pdf.Rect(barX, rowY, width, barH, "F")
		pdf.Text(barX+width+2, rowY+5, formatAmount(p.Value))
	}
	return y + float64(len(top))*barSpace
}

func dailySalesChart(pdf *gofpdf.Fpdf, days []models.DayTotal, y float64) {
	const (
		left   = 20.0
		width  = 170.0
		height = 70.0
	)
	bottom := y + height

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Line(left, y, left, bottom)
	pdf.Line(left, bottom, left+width, bottom)
	if len(days) == 0 {
		return
	}

	maxTotal := 0.0
	for _, d := range days {
		if d.Total > maxTotal {
			maxTotal = d.Total
		}
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(2, y+2, formatAmount(maxTotal))
	pdf.Text(12, bottom, "0")

	step := width / float64(len(days))
	point := func(i int) (float64, float64) {
		x := left + step*(float64(i)+0.5)
		if maxTotal == 0 {
			return x, bottom
		}
		return x, bottom - height*days[i].Total/maxTotal
	}

	pdf.SetDrawColor(217, 35, 42)
	pdf.SetFillColor(217, 35, 42)
	pdf.SetLineWidth(0.5)
	for i := range days {
		x, py := point(i)
		if i > 0 {
			px, ppy := point(i - 1)
			pdf.Line(px, ppy, x, py)
		}
		pdf.Circle(x, py, 0.7, "F")
		if days[i].Day == 1 || days[i].Day%5 == 0 {
			pdf.Text(x-1.5, bottom+4, fmt.Sprint(days[i].Day))
		}
	}
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
}
