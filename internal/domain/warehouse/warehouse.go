package warehouse

import (
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Warehouse represents a physical or logical stock location for a tenant.
// It is the aggregate root for warehouse lifecycle operations; stock
// quantities themselves live in the inventory context.
type Warehouse struct {
	shared.TenantAggregateRoot
	Code          string `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name          string `gorm:"type:varchar(200);not null"`
	Description   string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null;default:true"`
	IsPrimary     bool   `gorm:"not null;default:false"`
	Address       string `gorm:"type:text"`
	City          string `gorm:"type:varchar(100)"`
	Country       string `gorm:"type:varchar(100)"`
	TotalCapacity *int64 `gorm:""`
	CurrentUsage  *int64 `gorm:""`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse with required fields
func NewWarehouse(tenantID uuid.UUID, code, name string) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		IsActive:            true,
		IsPrimary:           false,
	}, nil
}

// Rename updates the warehouse's name
func (w *Warehouse) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}

	w.Name = name
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// UpdateCode updates the warehouse's code
func (w *Warehouse) UpdateCode(code string) error {
	code = strings.TrimSpace(code)
	if err := validateCode(code); err != nil {
		return err
	}

	w.Code = strings.ToUpper(code)
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// SetDescription sets the free-form description
func (w *Warehouse) SetDescription(description string) {
	w.Description = description
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// SetAddress sets the warehouse's location information
func (w *Warehouse) SetAddress(address, city, country string) {
	w.Address = address
	w.City = city
	w.Country = country
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// SetCapacity sets the storage capacity and current usage counters
func (w *Warehouse) SetCapacity(totalCapacity, currentUsage *int64) error {
	if totalCapacity != nil && *totalCapacity < 0 {
		return shared.NewDomainError("INVALID_CAPACITY", "Total capacity cannot be negative")
	}
	if currentUsage != nil && *currentUsage < 0 {
		return shared.NewDomainError("INVALID_CAPACITY", "Current usage cannot be negative")
	}

	w.TotalCapacity = totalCapacity
	w.CurrentUsage = currentUsage
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// SetPrimary marks or unmarks this warehouse as the tenant's primary warehouse
func (w *Warehouse) SetPrimary(isPrimary bool) {
	w.IsPrimary = isPrimary
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Activate enables the warehouse for stock operations
func (w *Warehouse) Activate() error {
	if w.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Warehouse is already active")
	}

	w.IsActive = true
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Deactivate disables the warehouse. A primary warehouse cannot be deactivated.
func (w *Warehouse) Deactivate() error {
	if !w.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Warehouse is already inactive")
	}
	if w.IsPrimary {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate the primary warehouse")
	}

	w.IsActive = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Warehouse code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Warehouse code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Warehouse code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name cannot exceed 200 characters")
	}
	return nil
}
