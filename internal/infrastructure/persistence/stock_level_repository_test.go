package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
)

// newMockStockLevelRepository creates a GormStockLevelRepository with a mocked SQL connection
func newMockStockLevelRepository(t *testing.T) (*GormStockLevelRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockLevelRepository(gormDB), mock, mockDB
}

func stockLevelRows(levelID, tenantID, productID, warehouseID uuid.UUID, quantity, reserved int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "product_id", "warehouse_id",
		"quantity", "reserved_quantity", "minimum_quantity", "maximum_quantity",
		"version",
	}).AddRow(
		levelID, tenantID, productID, warehouseID,
		decimal.NewFromInt(quantity), decimal.NewFromInt(reserved), decimal.Zero, decimal.Zero,
		1,
	)
}

func TestGormStockLevelRepository_FindByProductAndWarehouse(t *testing.T) {
	t.Run("finds existing stock level", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		levelID := uuid.New()
		tenantID := uuid.New()
		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id = \$1 AND product_id = \$2 AND warehouse_id = \$3`).
			WithArgs(tenantID, productID, warehouseID, 1).
			WillReturnRows(stockLevelRows(levelID, tenantID, productID, warehouseID, 100, 10))

		level, err := repo.FindByProductAndWarehouse(context.Background(), tenantID, productID, warehouseID)

		assert.NoError(t, err)
		assert.NotNil(t, level)
		assert.Equal(t, levelID, level.ID)
		assert.Equal(t, productID, level.ProductID)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing level", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id`).
			WillReturnError(gorm.ErrRecordNotFound)

		level, err := repo.FindByProductAndWarehouse(context.Background(), uuid.New(), uuid.New(), uuid.New())

		assert.Error(t, err)
		assert.Nil(t, level)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_GetOrCreate(t *testing.T) {
	t.Run("returns existing level without insert", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		levelID := uuid.New()
		tenantID := uuid.New()
		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id`).
			WillReturnRows(stockLevelRows(levelID, tenantID, productID, warehouseID, 50, 0))

		level, err := repo.GetOrCreate(context.Background(), tenantID, productID, warehouseID)

		require.NoError(t, err)
		assert.Equal(t, levelID, level.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates zero-quantity row with ON CONFLICT when missing", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`INSERT INTO "stock_levels"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		level, err := repo.GetOrCreate(context.Background(), tenantID, productID, warehouseID)

		require.NoError(t, err)
		assert.NotNil(t, level)
		assert.Equal(t, productID, level.ProductID)
		assert.Equal(t, warehouseID, level.WarehouseID)
		assert.True(t, level.Quantity.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_SaveWithLock(t *testing.T) {
	t.Run("saves when stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		level := mustNewStockLevel(t)
		require.NoError(t, level.Increase(decimal.NewFromInt(10)))

		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), level)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when no row matches the version", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		level := mustNewStockLevel(t)
		require.NoError(t, level.Increase(decimal.NewFromInt(10)))

		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), level)

		assert.Error(t, err)
		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_FindLevels(t *testing.T) {
	t.Run("applies product and warehouse predicates in SQL", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_levels" WHERE tenant_id = \$1 AND product_id = \$2 AND warehouse_id = \$3`).
			WithArgs(tenantID, productID, warehouseID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id = \$1 AND product_id = \$2 AND warehouse_id = \$3`).
			WillReturnRows(stockLevelRows(uuid.New(), tenantID, productID, warehouseID, 7, 0))

		result, err := repo.FindLevels(context.Background(), tenantID, inventory.LevelFilter{
			ProductID:   &productID,
			WarehouseID: &warehouseID,
			Filter:      shared.DefaultFilter(),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, productID, result.Items[0].ProductID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_FindBelowMinimum(t *testing.T) {
	t.Run("returns paginated levels at or below reorder point", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_levels" WHERE tenant_id = \$1 AND .*minimum_quantity > 0`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE tenant_id = \$1 AND .*minimum_quantity > 0`).
			WillReturnRows(stockLevelRows(uuid.New(), tenantID, uuid.New(), uuid.New(), 2, 0))

		result, err := repo.FindBelowMinimum(context.Background(), tenantID, shared.DefaultFilter())

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_CountByWarehouse(t *testing.T) {
	t.Run("counts every row including zero quantity", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_levels" WHERE tenant_id = \$1 AND warehouse_id = \$2`).
			WithArgs(tenantID, warehouseID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountByWarehouse(context.Background(), tenantID, warehouseID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_TotalQuantityByProduct(t *testing.T) {
	t.Run("sums on-hand quantity across warehouses", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) as total FROM "stock_levels"`).
			WithArgs(tenantID, productID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(250)))

		total, err := repo.TotalQuantityByProduct(context.Background(), tenantID, productID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(250)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func mustNewStockLevel(t *testing.T) *inventory.StockLevel {
	t.Helper()
	level, err := inventory.NewStockLevel(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return level
}
