package warehouse

import (
	"time"

	"github.com/google/uuid"

	"github.com/backoffice/backend/internal/domain/warehouse"
)

// CreateWarehouseRequest represents a request to create a warehouse
type CreateWarehouseRequest struct {
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	TotalCapacity *int64 `json:"total_capacity"`
	IsPrimary     *bool  `json:"is_primary"`
}

// UpdateWarehouseRequest represents a request to update a warehouse
type UpdateWarehouseRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	TotalCapacity *int64  `json:"total_capacity"`
	CurrentUsage  *int64  `json:"current_usage"`
}

// WarehouseListFilter represents filter options for warehouse lists
type WarehouseListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"is_active"`
	IsPrimary     bool      `json:"is_primary"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	Country       string    `json:"country,omitempty"`
	TotalCapacity *int64    `json:"total_capacity,omitempty"`
	CurrentUsage  *int64    `json:"current_usage,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToWarehouseResponse converts a warehouse to its API representation
func ToWarehouseResponse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:            w.ID,
		TenantID:      w.TenantID,
		Code:          w.Code,
		Name:          w.Name,
		Description:   w.Description,
		IsActive:      w.IsActive,
		IsPrimary:     w.IsPrimary,
		Address:       w.Address,
		City:          w.City,
		Country:       w.Country,
		TotalCapacity: w.TotalCapacity,
		CurrentUsage:  w.CurrentUsage,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// ToWarehouseResponses converts a slice of warehouses
func ToWarehouseResponses(warehouses []warehouse.Warehouse) []WarehouseResponse {
	responses := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		responses[i] = ToWarehouseResponse(&warehouses[i])
	}
	return responses
}
