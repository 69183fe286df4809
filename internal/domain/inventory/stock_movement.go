package inventory

import (
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypePurchase represents stock received from a supplier
	MovementTypePurchase MovementType = "purchase"
	// MovementTypeSale represents stock shipped for a sale
	MovementTypeSale MovementType = "sale"
	// MovementTypeTransferIn represents stock arriving from another warehouse
	MovementTypeTransferIn MovementType = "transfer_in"
	// MovementTypeTransferOut represents stock leaving for another warehouse
	MovementTypeTransferOut MovementType = "transfer_out"
	// MovementTypeAdjustment represents a correction to an absolute target quantity
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeReturn represents stock returned by a customer
	MovementTypeReturn MovementType = "return"
	// MovementTypeProduction represents stock produced in-house
	MovementTypeProduction MovementType = "production"
	// MovementTypeDamage represents stock written off as damaged
	MovementTypeDamage MovementType = "damage"
	// MovementTypeCount represents a physical count reconciliation
	MovementTypeCount MovementType = "count"
	// MovementTypeReservation represents quantity held for a pending order
	MovementTypeReservation MovementType = "reservation"
	// MovementTypeRelease represents a reservation returned to the available pool
	MovementTypeRelease MovementType = "release"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is recognized
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSale,
		MovementTypeTransferIn,
		MovementTypeTransferOut,
		MovementTypeAdjustment,
		MovementTypeReturn,
		MovementTypeProduction,
		MovementTypeDamage,
		MovementTypeCount,
		MovementTypeReservation,
		MovementTypeRelease:
		return true
	}
	return false
}

// IsInbound returns true if this movement type increases on-hand quantity
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementTypePurchase, MovementTypeTransferIn, MovementTypeReturn, MovementTypeProduction:
		return true
	}
	return false
}

// IsOutbound returns true if this movement type decreases on-hand quantity
func (t MovementType) IsOutbound() bool {
	switch t {
	case MovementTypeSale, MovementTypeTransferOut, MovementTypeDamage:
		return true
	}
	return false
}

// IsAbsolute returns true if this movement type carries a target quantity
// rather than a delta
func (t MovementType) IsAbsolute() bool {
	return t == MovementTypeAdjustment || t == MovementTypeCount
}

// AffectsReservation returns true if this movement type changes the reserved
// quantity instead of the on-hand quantity
func (t MovementType) AffectsReservation() bool {
	return t == MovementTypeReservation || t == MovementTypeRelease
}

// StockMovement is an immutable ledger entry recording one quantity-changing
// event against a stock level. Once written, movements are never modified;
// corrections are expressed as new movements. The stock level's current
// numbers are a materialized cache of this ledger.
type StockMovement struct {
	shared.BaseEntity
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_tenant_time,priority:1"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	WarehouseID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_warehouse"`
	MovementType       MovementType    `gorm:"type:varchar(20);not null;index:idx_stock_movement_type"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Magnitude of the event, direction comes from the type
	RelatedWarehouseID *uuid.UUID      `gorm:"type:uuid"`                   // Transfer counterpart
	ReferenceType      string          `gorm:"type:varchar(50);index:idx_stock_movement_reference,priority:1"`
	ReferenceID        string          `gorm:"type:varchar(100);index:idx_stock_movement_reference,priority:2"`
	ReferenceNumber    string          `gorm:"type:varchar(100)"`
	Notes              string          `gorm:"type:varchar(255)"`
	QuantityBefore     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // On-hand quantity at the primary warehouse before the event
	QuantityAfter      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // On-hand quantity at the primary warehouse after the event
	CreatedBy          *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new ledger entry. Quantity is the positive
// magnitude of the event; a zero quantity is allowed only for the absolute
// movement types, where a no-op reapplication is still recorded.
func NewStockMovement(
	tenantID, productID, warehouseID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	quantityBefore, quantityAfter decimal.Decimal,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if quantity.IsZero() && !movementType.IsAbsolute() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		MovementType:   movementType,
		Quantity:       quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  quantityAfter,
	}, nil
}

// WithRelatedWarehouse sets the transfer counterpart warehouse
func (m *StockMovement) WithRelatedWarehouse(warehouseID uuid.UUID) *StockMovement {
	m.RelatedWarehouseID = &warehouseID
	return m
}

// WithReference sets the source document reference
func (m *StockMovement) WithReference(referenceType, referenceID, referenceNumber string) *StockMovement {
	m.ReferenceType = referenceType
	m.ReferenceID = referenceID
	m.ReferenceNumber = referenceNumber
	return m
}

// WithNotes sets the free-form notes
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithCreatedBy sets the operator who triggered the movement
func (m *StockMovement) WithCreatedBy(userID uuid.UUID) *StockMovement {
	m.CreatedBy = &userID
	return m
}

// SignedQuantity returns the quantity with sign based on the movement type.
// Absolute and reservation types return the net on-hand change.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType.IsOutbound() {
		return m.Quantity.Neg()
	}
	if m.MovementType.IsAbsolute() || m.MovementType.AffectsReservation() {
		return m.QuantityAfter.Sub(m.QuantityBefore)
	}
	return m.Quantity
}
