package export

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"time"

	"github.com/disintegration/imaging"

	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/models"
)

const (
	chartWidth  = 960
	chartHeight = 480
	chartMargin = 40
)

var (
	background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor  = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	dailyColor = color.NRGBA{R: 217, G: 35, B: 42, A: 255}
	orderColor = color.NRGBA{R: 0, G: 102, B: 204, A: 255}
)

// DailySalesPNG draws the day-wise sales of a report as a bar chart.
func DailySalesPNG(w io.Writer, days []models.DayTotal) error {
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = d.Total
	}
	return imaging.Encode(w, barChart(values, dailyColor), imaging.PNG)
}

// HistoryPNG draws the day-by-day order totals from the calendar day of
// start to that of end, both taken in loc. Days without orders stay empty.
func HistoryPNG(w io.Writer, orders []models.Order, loc *time.Location, start, end time.Time) error {
	return imaging.Encode(w, barChart(dailyTotals(orders, loc, start, end), orderColor), imaging.PNG)
}

// dailyTotals buckets order totals into one slot per calendar day of the
// range. Orders outside it are ignored.
func dailyTotals(orders []models.Order, loc *time.Location, start, end time.Time) []float64 {
	if loc == nil {
		loc = time.Local
	}
	first := calc.StartOfDay(start.In(loc))
	last := calc.StartOfDay(end.In(loc))
	if last.Before(first) {
		return nil
	}

	index := make(map[string]int)
	var totals []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		index[d.Format(time.DateOnly)] = len(totals)
		totals = append(totals, 0)
	}
	for _, o := range orders {
		if i, ok := index[o.Date.In(loc).Format(time.DateOnly)]; ok {
			totals[i] += o.Total
		}
	}
	return totals
}

func barChart(values []float64, bar color.Color) *image.NRGBA {
	img := imaging.New(chartWidth, chartHeight, background)

	plot := image.Rect(chartMargin, chartMargin, chartWidth-chartMargin, chartHeight-chartMargin)
	fill(img, image.Rect(plot.Min.X-2, plot.Min.Y, plot.Min.X, plot.Max.Y), axisColor)
	fill(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+2), axisColor)

	maxValue := 0.0
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}
	if len(values) == 0 || maxValue <= 0 {
		return img
	}

	slot := float64(plot.Dx()) / float64(len(values))
	gap := int(slot * 0.2)
	for i, v := range values {
		if v <= 0 {
			continue
		}
		x0 := plot.Min.X + int(slot*float64(i)) + gap/2
		x1 := plot.Min.X + int(slot*float64(i+1)) - gap/2
		if x1 <= x0 {
			x1 = x0 + 1
		}
		top := plot.Max.Y - int(float64(plot.Dy())*v/maxValue)
		fill(img, image.Rect(x0, top, x1, plot.Max.Y), bar)
	}
	return img
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
