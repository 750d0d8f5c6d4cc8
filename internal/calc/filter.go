package calc

import (
	"sort"
	"time"

	"github.com/drstein77/ordercalc/internal/models"
)

// SortHistory orders history most recent first. The slice is sorted in place.
func SortHistory(history []models.Order) []models.Order {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history
}

// StartOfDay returns 00:00:00.000 of d's calendar date in d's location.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// EndOfDay returns 23:59:59.999 of d's calendar date in d's location.
func EndOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// FilterByDateRange keeps the orders placed between the start of start's day
// and the end of end's day. A nil bound is open.
func FilterByDateRange(history []models.Order, start, end *time.Time) []models.Order {
	var from, to time.Time
	if start != nil {
		from = StartOfDay(*start)
	}
	if end != nil {
		to = EndOfDay(*end)
	}
	if start != nil && end != nil && from.After(to) {
		return []models.Order{}
	}

	filtered := make([]models.Order, 0, len(history))
	for _, o := range history {
		if start != nil && o.Date.Before(from) {
			continue
		}
		if end != nil && o.Date.After(to) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// FilterByMonth keeps the orders whose local calendar year and month match.
func FilterByMonth(history []models.Order, year, month int, loc *time.Location) []models.Order {
	filtered := []models.Order{}
	if month < 1 || month > 12 {
		return filtered
	}
	if loc == nil {
		loc = time.Local
	}
	for _, o := range history {
		d := o.Date.In(loc)
		if d.Year() == year && int(d.Month()) == month {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
