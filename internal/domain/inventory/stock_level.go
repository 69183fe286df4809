package inventory

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel represents the current on-hand and reserved quantity for one
// product in one warehouse. It is the aggregate root for stock operations.
// The composite identifier is TenantID + ProductID + WarehouseID; exactly one
// row exists per tuple.
//
// Invariants, enforced by every mutating method:
//   - Quantity >= 0
//   - ReservedQuantity >= 0 and ReservedQuantity <= Quantity
//   - AvailableQuantity() == Quantity - ReservedQuantity
type StockLevel struct {
	shared.TenantAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_warehouse,priority:2"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_warehouse,priority:3"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand units
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Held for pending orders
	MinimumQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Reorder point
	MaximumQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Overstock ceiling, zero means unset

	Location  string `gorm:"type:varchar(100)"` // Storage zone within the warehouse
	BinNumber string `gorm:"type:varchar(50)"`

	LastCountedAt       *time.Time       `gorm:"type:timestamptz"`
	LastCountedQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a new empty stock level for a product-warehouse combination
func NewStockLevel(tenantID, productID, warehouseID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	return &StockLevel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		WarehouseID:         warehouseID,
		Quantity:            decimal.Zero,
		ReservedQuantity:    decimal.Zero,
		MinimumQuantity:     decimal.Zero,
		MaximumQuantity:     decimal.Zero,
	}, nil
}

// AvailableQuantity returns the on-hand quantity minus the reserved quantity
func (s *StockLevel) AvailableQuantity() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// Increase adds quantity to the on-hand stock
func (s *StockLevel) Increase(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.Quantity = s.Quantity.Add(quantity)
	s.touch()
	return nil
}

// Decrease removes quantity from the on-hand stock. The removal is bounded by
// the available quantity so that reservations are never stranded above the
// remaining on-hand units.
func (s *StockLevel) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(s.AvailableQuantity()) {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient available stock")
	}

	s.Quantity = s.Quantity.Sub(quantity)
	s.touch()
	return nil
}

// AdjustTo sets the on-hand quantity to an absolute target and returns the
// applied delta. A target below the reserved quantity would strand
// reservations and is rejected.
func (s *StockLevel) AdjustTo(target decimal.Decimal) (decimal.Decimal, error) {
	if target.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Target quantity cannot be negative")
	}
	if target.LessThan(s.ReservedQuantity) {
		return decimal.Zero, shared.NewDomainError("INVARIANT_VIOLATION", "Target quantity cannot drop below reserved quantity")
	}

	delta := target.Sub(s.Quantity)
	s.Quantity = target
	s.touch()
	return delta, nil
}

// Reserve holds quantity for a pending order without removing it from stock
func (s *StockLevel) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.ReservedQuantity.Add(quantity).GreaterThan(s.Quantity) {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Reserved quantity cannot exceed on-hand quantity")
	}

	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.touch()
	return nil
}

// Release returns previously reserved quantity to the available pool
func (s *StockLevel) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(s.ReservedQuantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Release exceeds reserved quantity")
	}

	s.ReservedQuantity = s.ReservedQuantity.Sub(quantity)
	s.touch()
	return nil
}

// RecordCount stamps the result of a physical count on the stock level.
// The quantity itself is adjusted separately via AdjustTo and always
// persists in the same save, so the stamp does not advance the version:
// the versioned save expects exactly one increment per loaded row.
func (s *StockLevel) RecordCount(counted decimal.Decimal, at time.Time) {
	s.LastCountedAt = &at
	s.LastCountedQuantity = &counted
	s.UpdatedAt = time.Now()
}

// SetThresholds sets the reorder point and the optional overstock ceiling
func (s *StockLevel) SetThresholds(minimum, maximum *decimal.Decimal) error {
	newMin := s.MinimumQuantity
	newMax := s.MaximumQuantity
	if minimum != nil {
		if minimum.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
		}
		newMin = *minimum
	}
	if maximum != nil {
		if maximum.IsNegative() {
			return shared.NewDomainError("INVALID_QUANTITY", "Maximum quantity cannot be negative")
		}
		newMax = *maximum
	}
	if newMax.GreaterThan(decimal.Zero) && newMax.LessThan(newMin) {
		return shared.NewDomainError("INVALID_QUANTITY", "Maximum quantity cannot be below minimum quantity")
	}

	s.MinimumQuantity = newMin
	s.MaximumQuantity = newMax
	s.touch()
	return nil
}

// SetLocation sets the bin/location fields
func (s *StockLevel) SetLocation(location, binNumber string) {
	s.Location = location
	s.BinNumber = binNumber
	s.touch()
}

// IsBelowMinimum returns true if the available quantity is at or below the reorder point
func (s *StockLevel) IsBelowMinimum() bool {
	return s.MinimumQuantity.GreaterThan(decimal.Zero) && s.AvailableQuantity().LessThanOrEqual(s.MinimumQuantity)
}

// IsAboveMaximum returns true if a ceiling is set and the on-hand quantity exceeds it
func (s *StockLevel) IsAboveMaximum() bool {
	return s.MaximumQuantity.GreaterThan(decimal.Zero) && s.Quantity.GreaterThan(s.MaximumQuantity)
}

// CanFulfill returns true if the available quantity can cover the requested quantity
func (s *StockLevel) CanFulfill(quantity decimal.Decimal) bool {
	return s.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// Validate checks the stock level invariants
func (s *StockLevel) Validate() error {
	if s.Quantity.IsNegative() {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Quantity cannot be negative")
	}
	if s.ReservedQuantity.IsNegative() {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Reserved quantity cannot be negative")
	}
	if s.ReservedQuantity.GreaterThan(s.Quantity) {
		return shared.NewDomainError("INVARIANT_VIOLATION", "Reserved quantity cannot exceed on-hand quantity")
	}
	return nil
}

func (s *StockLevel) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
