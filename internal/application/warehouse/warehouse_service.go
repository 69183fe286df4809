package warehouse

import (
	"context"

	"github.com/google/uuid"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
)

// WarehouseService handles warehouse-related business operations
type WarehouseService struct {
	warehouseRepo  warehouse.Repository
	stockLevelRepo inventory.StockLevelRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouseRepo warehouse.Repository, stockLevelRepo inventory.StockLevelRepository) *WarehouseService {
	return &WarehouseService{
		warehouseRepo:  warehouseRepo,
		stockLevelRepo: stockLevelRepo,
	}
}

// Create creates a new warehouse
func (s *WarehouseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
	}

	w, err := warehouse.NewWarehouse(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		w.SetDescription(req.Description)
	}
	if req.Address != "" || req.City != "" || req.Country != "" {
		w.SetAddress(req.Address, req.City, req.Country)
	}
	if req.TotalCapacity != nil {
		if err := w.SetCapacity(req.TotalCapacity, nil); err != nil {
			return nil, err
		}
	}

	if req.IsPrimary != nil && *req.IsPrimary {
		// Clear the previous primary first
		if err := s.warehouseRepo.ClearPrimary(ctx, tenantID); err != nil {
			return nil, err
		}
		w.SetPrimary(true)
	}

	if err := s.warehouseRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// GetByID retrieves a warehouse by ID
func (s *WarehouseService) GetByID(ctx context.Context, tenantID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// GetByCode retrieves a warehouse by code
func (s *WarehouseService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// GetPrimary retrieves the tenant's primary warehouse
func (s *WarehouseService) GetPrimary(ctx context.Context, tenantID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindPrimary(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// List retrieves warehouses for a tenant with pagination
func (s *WarehouseService) List(ctx context.Context, tenantID uuid.UUID, filter WarehouseListFilter) ([]WarehouseResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	total, err := s.warehouseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	warehouses, err := s.warehouseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToWarehouseResponses(warehouses), total, nil
}

// Update updates a warehouse's mutable fields
func (s *WarehouseService) Update(ctx context.Context, tenantID, warehouseID uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != w.Code {
		exists, err := s.warehouseRepo.ExistsByCode(ctx, tenantID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse with this code already exists")
		}
		if err := w.UpdateCode(*req.Code); err != nil {
			return nil, err
		}
	}
	if req.Name != nil {
		if err := w.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		w.SetDescription(*req.Description)
	}
	if req.Address != nil || req.City != nil || req.Country != nil {
		address, city, country := w.Address, w.City, w.Country
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Country != nil {
			country = *req.Country
		}
		w.SetAddress(address, city, country)
	}
	if req.TotalCapacity != nil || req.CurrentUsage != nil {
		if err := w.SetCapacity(req.TotalCapacity, req.CurrentUsage); err != nil {
			return nil, err
		}
	}

	if err := s.warehouseRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// Delete deletes a warehouse. Deletion is blocked while any stock level rows
// reference the warehouse, even at zero quantity: without the rule a deleted
// warehouse would leave dangling rows that still list and accept movements.
func (s *WarehouseService) Delete(ctx context.Context, tenantID, warehouseID uuid.UUID) error {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}

	referenced, err := s.stockLevelRepo.CountByWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if referenced > 0 {
		return shared.NewDomainError("CONFLICT", "Cannot delete a warehouse with stock level records")
	}

	return s.warehouseRepo.DeleteForTenant(ctx, tenantID, w.ID)
}

// Activate reactivates a deactivated warehouse
func (s *WarehouseService) Activate(ctx context.Context, tenantID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := w.Activate(); err != nil {
		return nil, err
	}
	if err := s.warehouseRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// Deactivate deactivates a warehouse
func (s *WarehouseService) Deactivate(ctx context.Context, tenantID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := w.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.warehouseRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}

// SetPrimary designates a warehouse as the tenant's primary warehouse,
// clearing the flag from any previous primary.
func (s *WarehouseService) SetPrimary(ctx context.Context, tenantID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot make an inactive warehouse primary")
	}

	if err := s.warehouseRepo.ClearPrimary(ctx, tenantID); err != nil {
		return nil, err
	}
	w.SetPrimary(true)
	if err := s.warehouseRepo.Save(ctx, w); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(w)
	return &response, nil
}
