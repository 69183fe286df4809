package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/backend/internal/domain/shared"
)

func createTestStockLevel(t *testing.T) *StockLevel {
	t.Helper()
	level, err := NewStockLevel(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return level
}

func TestNewStockLevel(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates stock level successfully", func(t *testing.T) {
		level, err := NewStockLevel(tenantID, productID, warehouseID)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, level.ID)
		assert.Equal(t, tenantID, level.TenantID)
		assert.Equal(t, productID, level.ProductID)
		assert.Equal(t, warehouseID, level.WarehouseID)
		assert.True(t, level.Quantity.IsZero())
		assert.True(t, level.ReservedQuantity.IsZero())
		assert.Equal(t, 1, level.Version)
	})

	t.Run("fails with nil product ID", func(t *testing.T) {
		level, err := NewStockLevel(tenantID, uuid.Nil, warehouseID)

		require.Error(t, err)
		assert.Nil(t, level)
		assert.Contains(t, err.Error(), "Product ID")
	})

	t.Run("fails with nil warehouse ID", func(t *testing.T) {
		level, err := NewStockLevel(tenantID, productID, uuid.Nil)

		require.Error(t, err)
		assert.Nil(t, level)
		assert.Contains(t, err.Error(), "Warehouse ID")
	})
}

func TestStockLevel_AvailableQuantity(t *testing.T) {
	level := createTestStockLevel(t)
	level.Quantity = decimal.NewFromInt(100)
	level.ReservedQuantity = decimal.NewFromInt(30)

	assert.Equal(t, decimal.NewFromInt(70), level.AvailableQuantity())
}

func TestStockLevel_Increase(t *testing.T) {
	t.Run("increases quantity", func(t *testing.T) {
		level := createTestStockLevel(t)

		err := level.Increase(decimal.NewFromInt(50))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(50), level.Quantity)
		assert.Equal(t, 2, level.Version)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		level := createTestStockLevel(t)

		err := level.Increase(decimal.Zero)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})
}

func TestStockLevel_Decrease(t *testing.T) {
	t.Run("decreases quantity", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)

		err := level.Decrease(decimal.NewFromInt(5))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(5), level.Quantity)
	})

	t.Run("fails when quantity exceeds available", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)
		level.ReservedQuantity = decimal.NewFromInt(8)

		err := level.Decrease(decimal.NewFromInt(5))

		require.Error(t, err)
		assert.True(t, shared.IsInsufficientStock(err))
		// state unchanged on rejection
		assert.Equal(t, decimal.NewFromInt(10), level.Quantity)
		assert.Equal(t, 1, level.Version)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)

		err := level.Decrease(decimal.NewFromInt(-1))

		require.Error(t, err)
	})
}

func TestStockLevel_AdjustTo(t *testing.T) {
	t.Run("returns delta from current quantity", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)

		delta, err := level.AdjustTo(decimal.NewFromInt(25))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(15), delta)
		assert.Equal(t, decimal.NewFromInt(25), level.Quantity)
	})

	t.Run("is idempotent for equal target", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(25)

		delta, err := level.AdjustTo(decimal.NewFromInt(25))

		require.NoError(t, err)
		assert.True(t, delta.IsZero())
		assert.Equal(t, decimal.NewFromInt(25), level.Quantity)
	})

	t.Run("rejects negative target", func(t *testing.T) {
		level := createTestStockLevel(t)

		_, err := level.AdjustTo(decimal.NewFromInt(-5))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("rejects target below reservations", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)
		level.ReservedQuantity = decimal.NewFromInt(6)

		_, err := level.AdjustTo(decimal.NewFromInt(5))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVARIANT_VIOLATION", domainErr.Code)
	})
}

func TestStockLevel_Reserve(t *testing.T) {
	t.Run("reserves available stock", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)

		err := level.Reserve(decimal.NewFromInt(4))

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(4), level.ReservedQuantity)
		assert.Equal(t, decimal.NewFromInt(6), level.AvailableQuantity())
	})

	t.Run("fails when reservation exceeds on-hand quantity", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)
		level.ReservedQuantity = decimal.NewFromInt(8)

		err := level.Reserve(decimal.NewFromInt(3))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVARIANT_VIOLATION", domainErr.Code)
		assert.Equal(t, decimal.NewFromInt(8), level.ReservedQuantity)
	})
}

func TestStockLevel_Release(t *testing.T) {
	t.Run("releases reserved stock", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)
		level.ReservedQuantity = decimal.NewFromInt(5)

		err := level.Release(decimal.NewFromInt(5))

		require.NoError(t, err)
		assert.True(t, level.ReservedQuantity.IsZero())
	})

	t.Run("fails when release exceeds reservations", func(t *testing.T) {
		level := createTestStockLevel(t)
		level.Quantity = decimal.NewFromInt(10)
		level.ReservedQuantity = decimal.NewFromInt(2)

		err := level.Release(decimal.NewFromInt(5))

		require.Error(t, err)
		assert.True(t, shared.IsInsufficientStock(err))
	})
}

func TestStockLevel_RecordCount(t *testing.T) {
	level := createTestStockLevel(t)
	level.Quantity = decimal.NewFromInt(10)
	countedAt := time.Now()

	delta, err := level.AdjustTo(decimal.NewFromInt(8))
	require.NoError(t, err)
	level.RecordCount(decimal.NewFromInt(8), countedAt)

	assert.Equal(t, decimal.NewFromInt(-2), delta)
	assert.Equal(t, decimal.NewFromInt(8), level.Quantity)
	require.NotNil(t, level.LastCountedAt)
	assert.Equal(t, countedAt, *level.LastCountedAt)
	require.NotNil(t, level.LastCountedQuantity)
	assert.Equal(t, decimal.NewFromInt(8), *level.LastCountedQuantity)
}

func TestStockLevel_RecordCount_KeepsVersion(t *testing.T) {
	level := createTestStockLevel(t)
	level.Quantity = decimal.NewFromInt(10)

	_, err := level.AdjustTo(decimal.NewFromInt(8))
	require.NoError(t, err)
	versionAfterAdjust := level.Version

	level.RecordCount(decimal.NewFromInt(8), time.Now())

	// The stamp rides along with the adjustment in one save, so it must
	// not advance the version a second time.
	assert.Equal(t, versionAfterAdjust, level.Version)
}

func TestStockLevel_SetThresholds(t *testing.T) {
	t.Run("sets minimum and maximum", func(t *testing.T) {
		level := createTestStockLevel(t)
		min := decimal.NewFromInt(5)
		max := decimal.NewFromInt(100)

		err := level.SetThresholds(&min, &max)

		require.NoError(t, err)
		assert.Equal(t, min, level.MinimumQuantity)
		assert.Equal(t, max, level.MaximumQuantity)
	})

	t.Run("rejects maximum below minimum", func(t *testing.T) {
		level := createTestStockLevel(t)
		min := decimal.NewFromInt(50)
		max := decimal.NewFromInt(10)

		err := level.SetThresholds(&min, &max)

		require.Error(t, err)
	})

	t.Run("rejects negative minimum", func(t *testing.T) {
		level := createTestStockLevel(t)
		min := decimal.NewFromInt(-1)

		err := level.SetThresholds(&min, nil)

		require.Error(t, err)
	})
}

func TestStockLevel_IsBelowMinimum(t *testing.T) {
	level := createTestStockLevel(t)
	level.Quantity = decimal.NewFromInt(10)
	level.MinimumQuantity = decimal.NewFromInt(15)

	assert.True(t, level.IsBelowMinimum())

	level.MinimumQuantity = decimal.Zero
	assert.False(t, level.IsBelowMinimum())
}

func TestStockLevel_CanFulfill(t *testing.T) {
	level := createTestStockLevel(t)
	level.Quantity = decimal.NewFromInt(10)
	level.ReservedQuantity = decimal.NewFromInt(4)

	assert.True(t, level.CanFulfill(decimal.NewFromInt(6)))
	assert.False(t, level.CanFulfill(decimal.NewFromInt(7)))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		reserved int64
		min      int64
		max      int64
		want     StockStatus
	}{
		{"out of stock when nothing on hand", 0, 0, 0, 0, StockStatusOutOfStock},
		{"out of stock when fully reserved", 10, 10, 0, 0, StockStatusOutOfStock},
		{"low stock at reorder point", 5, 0, 5, 0, StockStatusLowStock},
		{"low stock below reorder point", 3, 0, 5, 0, StockStatusLowStock},
		{"in stock above reorder point", 6, 0, 5, 0, StockStatusInStock},
		{"in stock without thresholds", 1, 0, 0, 0, StockStatusInStock},
		{"overstock above maximum", 120, 0, 5, 100, StockStatusOverstock},
		{"in stock at maximum", 100, 0, 5, 100, StockStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := createTestStockLevel(t)
			level.Quantity = decimal.NewFromInt(tt.quantity)
			level.ReservedQuantity = decimal.NewFromInt(tt.reserved)
			level.MinimumQuantity = decimal.NewFromInt(tt.min)
			level.MaximumQuantity = decimal.NewFromInt(tt.max)

			assert.Equal(t, tt.want, StatusOf(level))
		})
	}
}
