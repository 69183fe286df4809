package warehouse

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for warehouse persistence
type Repository interface {
	// FindByIDForTenant finds a warehouse by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Warehouse, error)

	// FindPrimary finds the primary warehouse for a tenant
	FindPrimary(ctx context.Context, tenantID uuid.UUID) (*Warehouse, error)

	// FindAllForTenant finds all warehouses for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Warehouse, error)

	// ExistsByCode checks whether a warehouse code is already taken in a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, w *Warehouse) error

	// DeleteForTenant deletes a warehouse within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// ClearPrimary unsets the primary flag on all warehouses of a tenant
	ClearPrimary(ctx context.Context, tenantID uuid.UUID) error

	// CountForTenant counts warehouses matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
