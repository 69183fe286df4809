package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GORM stock level repository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByIDForTenant finds a stock level by ID within a tenant
func (r *GormStockLevelRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByProductAndWarehouse finds the unique level for a product in a warehouse
func (r *GormStockLevelRepository) FindByProductAndWarehouse(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// GetOrCreate gets the existing stock level or creates a zero-quantity row
func (r *GormStockLevelRepository) GetOrCreate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	level, err := r.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	level, err = inventory.NewStockLevel(tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}

	// Use ON CONFLICT to handle race conditions on concurrent first movements
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(level).Error; err != nil {
		return nil, err
	}

	// If the row wasn't created (conflict), fetch the existing one
	if level.ID == uuid.Nil {
		return r.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
	}

	return level, nil
}

// FindByProduct finds all levels for a product across warehouses
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockLevel, error) {
	var levels []*inventory.StockLevel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("warehouse_id ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// FindLevels finds levels matching the filter with pagination. Every
// predicate runs in SQL so the count reflects the same conditions as the page.
func (r *GormStockLevelRepository) FindLevels(ctx context.Context, tenantID uuid.UUID, filter inventory.LevelFilter) (*shared.Paginated[*inventory.StockLevel], error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Where("tenant_id = ?", tenantID)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.BelowMinimum {
		query = query.Where("minimum_quantity > 0 AND (quantity - reserved_quantity) <= minimum_quantity")
	}
	if filter.OutOfStock {
		query = query.Where("(quantity - reserved_quantity) <= 0")
	}

	return r.paginate(query, filter.Filter)
}

// FindBelowMinimum finds levels at or below their reorder point
func (r *GormStockLevelRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockLevel], error) {
	return r.FindLevels(ctx, tenantID, inventory.LevelFilter{BelowMinimum: true, Filter: filter})
}

// FindOutOfStock finds levels with no available quantity
func (r *GormStockLevelRepository) FindOutOfStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockLevel], error) {
	return r.FindLevels(ctx, tenantID, inventory.LevelFilter{OutOfStock: true, Filter: filter})
}

// Save creates or updates a stock level without a version check
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, level.Version-1).
		Updates(map[string]interface{}{
			"quantity":              level.Quantity,
			"reserved_quantity":     level.ReservedQuantity,
			"minimum_quantity":      level.MinimumQuantity,
			"maximum_quantity":      level.MaximumQuantity,
			"location":              level.Location,
			"bin_number":            level.BinNumber,
			"last_counted_at":       level.LastCountedAt,
			"last_counted_quantity": level.LastCountedQuantity,
			"version":               level.Version,
			"updated_at":            level.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock level was modified by another transaction")
	}
	return nil
}

// CountByWarehouse counts all stock level rows in a warehouse, including
// zero-quantity ones. Warehouse deletion keys off this count.
func (r *GormStockLevelRepository) CountByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// TotalQuantityByProduct sums on-hand quantity for a product across all warehouses
func (r *GormStockLevelRepository) TotalQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&inventory.StockLevel{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// paginate runs the count plus page query and wraps the result.
// The query is cloned via Session so both finishers see the same conditions.
func (r *GormStockLevelRepository) paginate(query *gorm.DB, filter shared.Filter) (*shared.Paginated[*inventory.StockLevel], error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var levels []*inventory.StockLevel
	if err := applyFilter(query, filter).Find(&levels).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter)
	result := shared.NewPaginated(levels, total, page, pageSize)
	return &result, nil
}

// applyFilter applies pagination and ordering to the query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	page, pageSize := normalizePage(filter)
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

func normalizePage(filter shared.Filter) (page, pageSize int) {
	page, pageSize = filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
