package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// LevelFilter narrows stock level queries. Zero-value fields are ignored;
// every predicate is applied by the store, so paging totals stay accurate.
type LevelFilter struct {
	ProductID    *uuid.UUID
	WarehouseID  *uuid.UUID
	BelowMinimum bool
	OutOfStock   bool
	Filter       shared.Filter
}

// MovementFilter narrows ledger queries. Zero-value fields are ignored.
type MovementFilter struct {
	ProductID     *uuid.UUID
	WarehouseID   *uuid.UUID
	MovementType  *MovementType
	ReferenceType string
	ReferenceID   string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Filter        shared.Filter
}

// StockLevelRepository persists stock level aggregates
type StockLevelRepository interface {
	// FindByIDForTenant loads a stock level by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockLevel, error)

	// FindByProductAndWarehouse loads the unique level for a product in a warehouse
	FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*StockLevel, error)

	// GetOrCreate returns the level for a product in a warehouse, creating a
	// zero-quantity row if none exists yet
	GetOrCreate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*StockLevel, error)

	// FindByProduct returns all levels for a product across warehouses
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*StockLevel, error)

	// FindLevels returns levels matching the filter with pagination
	FindLevels(ctx context.Context, tenantID uuid.UUID, filter LevelFilter) (*shared.Paginated[*StockLevel], error)

	// FindBelowMinimum returns levels whose available quantity is at or below
	// their reorder point. Levels without a reorder point are excluded.
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*StockLevel], error)

	// FindOutOfStock returns levels with no available quantity
	FindOutOfStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*StockLevel], error)

	// Save persists a stock level without a version check
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock persists a stock level using optimistic locking on the
	// version column. Returns a concurrency conflict error when the stored
	// version no longer matches.
	SaveWithLock(ctx context.Context, level *StockLevel) error

	// CountByWarehouse counts all stock level rows in a warehouse, zero
	// quantity included. Used to block deleting referenced warehouses.
	CountByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (int64, error)

	// TotalQuantityByProduct sums on-hand quantity for a product across warehouses
	TotalQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error)
}

// StockMovementRepository persists the append-only movement ledger.
// Movements are never updated or deleted once written.
type StockMovementRepository interface {
	// Create appends a movement to the ledger
	Create(ctx context.Context, movement *StockMovement) error

	// FindByIDForTenant loads a movement by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockMovement, error)

	// FindForTenant returns movements matching the filter, newest first
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) (*shared.Paginated[*StockMovement], error)

	// FindByReference returns movements recorded for a source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType, referenceID string) ([]*StockMovement, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) (int64, error)
}
