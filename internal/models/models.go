package models

import "time"

// Container is the unit a product is sold in.
type Container string

const (
	Piece Container = "piece"
	Crate Container = "crate"
)

// Valid reports whether c is a known container kind.
func (c Container) Valid() bool {
	return c == Piece || c == Crate
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Price     Number    `json:"price"`
	Category  string    `json:"category"`
	Container Container `json:"container"`
}

// LineItem is one product line of a saved order. Price and Container are
// captured at sale time and never re-read from the catalog.
type LineItem struct {
	ID        string    `json:"id"`
	Price     Number    `json:"price"`
	Quantity  Number    `json:"quantity"`
	Container Container `json:"container"`
}

// Order is identified by its creation instant.
type Order struct {
	Date  time.Time  `json:"date"`
	Total float64    `json:"total"`
	Items []LineItem `json:"items"`
}

// CartEntry is a quantity picked for a catalog product.
type CartEntry struct {
	ID       string `json:"id"`
	Quantity Number `json:"quantity"`
}

type Cart struct {
	Items []CartEntry `json:"items"`
}

type Totals struct {
	Total      float64 `json:"total"`
	CrateUnits float64 `json:"crate_units"`
}

// NamedValue is a labelled amount, used for chart series.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type DayTotal struct {
	Day   int     `json:"day"`
	Total float64 `json:"total"`
}

type AnalyticsReport struct {
	Year          int          `json:"year"`
	Month         int          `json:"month"`
	Orders        int          `json:"orders"`
	TotalSales    float64      `json:"total_sales"`
	TopProducts   []NamedValue `json:"top_products"`
	DailySales    []DayTotal   `json:"daily_sales"`
	Discrepancies []time.Time  `json:"discrepancies,omitempty"`
}

// CategoryGroup is a catalog category and its products in catalog order.
type CategoryGroup struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}

type CatalogView struct {
	Frequent   []Product       `json:"frequent"`
	Categories []CategoryGroup `json:"categories"`
}

type OrderLine struct {
	Quantity float64 `json:"quantity"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type OrderDetails struct {
	Date       time.Time   `json:"date"`
	Lines      []OrderLine `json:"lines"`
	Total      float64     `json:"total"`
	CrateUnits float64     `json:"crate_units"`
}

// Backup is the whole-store snapshot used for export and import.
type Backup struct {
	Products []Product `json:"products"`
	History  []Order   `json:"history"`
}
