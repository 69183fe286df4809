package inventory

import "github.com/shopspring/decimal"

// StockStatus classifies a stock level's current numbers for reporting
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusOverstock  StockStatus = "overstock"
)

// StatusOf derives the stock status from a stock level's current numbers.
// It is a pure function of the level and never mutates state.
//
// Classification order: out of stock when nothing is available, low stock at
// or below the reorder point, overstock when a ceiling is set and exceeded,
// otherwise in stock.
func StatusOf(level *StockLevel) StockStatus {
	available := level.AvailableQuantity()

	if available.LessThanOrEqual(decimal.Zero) {
		return StockStatusOutOfStock
	}
	if available.LessThanOrEqual(level.MinimumQuantity) {
		return StockStatusLowStock
	}
	if level.MaximumQuantity.GreaterThan(decimal.Zero) && level.Quantity.GreaterThan(level.MaximumQuantity) {
		return StockStatusOverstock
	}
	return StockStatusInStock
}
