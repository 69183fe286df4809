package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/inventory"
)

// ApplyMovementRequest represents a request to apply a stock movement
type ApplyMovementRequest struct {
	ProductID        uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID      uuid.UUID       `json:"warehouse_id" binding:"required"`
	MovementType     string          `json:"movement_type" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	RelatedWarehouse *uuid.UUID      `json:"related_warehouse_id"` // transfers only
	ReferenceType    string          `json:"reference_type"`
	ReferenceID      string          `json:"reference_id"`
	ReferenceNumber  string          `json:"reference_number"`
	Notes            string          `json:"notes"`
	OperatorID       *uuid.UUID      `json:"operator_id"`
}

// NormalizedType resolves request aliases to a canonical movement type.
// "in" and "out" are generic receipts/issues; "transfer" resolves to the
// inbound leg, with RelatedWarehouse naming the source.
func (r *ApplyMovementRequest) NormalizedType() inventory.MovementType {
	switch strings.ToLower(strings.TrimSpace(r.MovementType)) {
	case "in":
		return inventory.MovementTypePurchase
	case "out":
		return inventory.MovementTypeSale
	case "transfer":
		return inventory.MovementTypeTransferIn
	default:
		return inventory.MovementType(strings.ToLower(strings.TrimSpace(r.MovementType)))
	}
}

// SetThresholdsRequest represents a request to set reorder thresholds
type SetThresholdsRequest struct {
	ProductID       uuid.UUID        `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID        `json:"warehouse_id" binding:"required"`
	MinimumQuantity *decimal.Decimal `json:"minimum_quantity"`
	MaximumQuantity *decimal.Decimal `json:"maximum_quantity"`
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ID                  uuid.UUID             `json:"id"`
	TenantID            uuid.UUID             `json:"tenant_id"`
	ProductID           uuid.UUID             `json:"product_id"`
	WarehouseID         uuid.UUID             `json:"warehouse_id"`
	Quantity            decimal.Decimal       `json:"quantity"`
	ReservedQuantity    decimal.Decimal       `json:"reserved_quantity"`
	AvailableQuantity   decimal.Decimal       `json:"available_quantity"`
	MinimumQuantity     decimal.Decimal       `json:"minimum_quantity"`
	MaximumQuantity     decimal.Decimal       `json:"maximum_quantity"`
	Status              inventory.StockStatus `json:"status"`
	Location            string                `json:"location,omitempty"`
	BinNumber           string                `json:"bin_number,omitempty"`
	LastCountedAt       *time.Time            `json:"last_counted_at,omitempty"`
	LastCountedQuantity *decimal.Decimal      `json:"last_counted_quantity,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	Version             int                   `json:"version"`
}

// StockMovementResponse represents a ledger entry in API responses
type StockMovementResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	WarehouseID        uuid.UUID       `json:"warehouse_id"`
	MovementType       string          `json:"movement_type"`
	Quantity           decimal.Decimal `json:"quantity"`
	SignedQuantity     decimal.Decimal `json:"signed_quantity"`
	RelatedWarehouseID *uuid.UUID      `json:"related_warehouse_id,omitempty"`
	ReferenceType      string          `json:"reference_type,omitempty"`
	ReferenceID        string          `json:"reference_id,omitempty"`
	ReferenceNumber    string          `json:"reference_number,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	QuantityBefore     decimal.Decimal `json:"quantity_before"`
	QuantityAfter      decimal.Decimal `json:"quantity_after"`
	CreatedBy          *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ApplyMovementResponse carries the ledger entries recorded for a movement
// (one entry for most types, two for transfers) and the resulting stock levels.
type ApplyMovementResponse struct {
	Movements []StockMovementResponse `json:"movements"`
	Levels    []StockLevelResponse    `json:"levels"`
}

// StockLevelListFilter represents filter options for stock level lists
type StockLevelListFilter struct {
	Search       string     `form:"search"`
	WarehouseID  *uuid.UUID `form:"warehouse_id"`
	ProductID    *uuid.UUID `form:"product_id"`
	BelowMinimum *bool      `form:"below_minimum"`
	OutOfStock   *bool      `form:"out_of_stock"`
	Page         int        `form:"page" binding:"min=1"`
	PageSize     int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for ledger queries.
// Date bounds are inclusive and expect RFC 3339 timestamps.
type MovementListFilter struct {
	ProductID     *uuid.UUID `form:"product_id"`
	WarehouseID   *uuid.UUID `form:"warehouse_id"`
	MovementType  string     `form:"movement_type"`
	ReferenceType string     `form:"reference_type"`
	ReferenceID   string     `form:"reference_id"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02T15:04:05Z07:00"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `form:"page" binding:"min=1"`
	PageSize      int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToStockLevelResponse converts a stock level to its API representation
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ID:                  level.ID,
		TenantID:            level.TenantID,
		ProductID:           level.ProductID,
		WarehouseID:         level.WarehouseID,
		Quantity:            level.Quantity,
		ReservedQuantity:    level.ReservedQuantity,
		AvailableQuantity:   level.AvailableQuantity(),
		MinimumQuantity:     level.MinimumQuantity,
		MaximumQuantity:     level.MaximumQuantity,
		Status:              inventory.StatusOf(level),
		Location:            level.Location,
		BinNumber:           level.BinNumber,
		LastCountedAt:       level.LastCountedAt,
		LastCountedQuantity: level.LastCountedQuantity,
		CreatedAt:           level.CreatedAt,
		UpdatedAt:           level.UpdatedAt,
		Version:             level.Version,
	}
}

// ToStockLevelResponses converts a slice of stock levels
func ToStockLevelResponses(levels []*inventory.StockLevel) []StockLevelResponse {
	responses := make([]StockLevelResponse, len(levels))
	for i, level := range levels {
		responses[i] = ToStockLevelResponse(level)
	}
	return responses
}

// ToStockMovementResponse converts a ledger entry to its API representation
func ToStockMovementResponse(movement *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:                 movement.ID,
		TenantID:           movement.TenantID,
		ProductID:          movement.ProductID,
		WarehouseID:        movement.WarehouseID,
		MovementType:       movement.MovementType.String(),
		Quantity:           movement.Quantity,
		SignedQuantity:     movement.SignedQuantity(),
		RelatedWarehouseID: movement.RelatedWarehouseID,
		ReferenceType:      movement.ReferenceType,
		ReferenceID:        movement.ReferenceID,
		ReferenceNumber:    movement.ReferenceNumber,
		Notes:              movement.Notes,
		QuantityBefore:     movement.QuantityBefore,
		QuantityAfter:      movement.QuantityAfter,
		CreatedBy:          movement.CreatedBy,
		CreatedAt:          movement.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of ledger entries
func ToStockMovementResponses(movements []*inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i, movement := range movements {
		responses[i] = ToStockMovementResponse(movement)
	}
	return responses
}
