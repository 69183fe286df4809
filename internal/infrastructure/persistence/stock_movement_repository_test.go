package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

// newMockStockMovementRepository creates a GormStockMovementRepository with a mocked SQL connection
func newMockStockMovementRepository(t *testing.T) (*GormStockMovementRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormStockMovementRepository(gormDB), mock, mockDB
}

func movementRows(movementID, tenantID, productID, warehouseID uuid.UUID, movementType inventory.MovementType) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "product_id", "warehouse_id", "movement_type",
		"quantity", "quantity_before", "quantity_after", "created_at",
	}).AddRow(
		movementID, tenantID, productID, warehouseID, string(movementType),
		decimal.NewFromInt(10), decimal.NewFromInt(0), decimal.NewFromInt(10), time.Now(),
	)
}

func TestGormStockMovementRepository_Create(t *testing.T) {
	t.Run("appends movement to the ledger", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		movement, err := inventory.NewStockMovement(
			uuid.New(), uuid.New(), uuid.New(),
			inventory.MovementTypePurchase,
			decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(10),
		)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Create(context.Background(), movement)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMovementRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds movement within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		movementID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, movementID, 1).
			WillReturnRows(movementRows(movementID, tenantID, uuid.New(), uuid.New(), inventory.MovementTypePurchase))

		movement, err := repo.FindByIDForTenant(context.Background(), tenantID, movementID)

		assert.NoError(t, err)
		assert.NotNil(t, movement)
		assert.Equal(t, movementID, movement.ID)
		assert.Equal(t, inventory.MovementTypePurchase, movement.MovementType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing movement", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE tenant_id`).
			WillReturnError(gorm.ErrRecordNotFound)

		movement, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.Error(t, err)
		assert.Nil(t, movement)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMovementRepository_FindForTenant(t *testing.T) {
	t.Run("filters by product and movement type", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()
		movementType := inventory.MovementTypeSale

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_movements" WHERE tenant_id = \$1 AND product_id = \$2 AND movement_type = \$3`).
			WithArgs(tenantID, productID, movementType).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE tenant_id = \$1 AND product_id = \$2 AND movement_type = \$3`).
			WillReturnRows(movementRows(uuid.New(), tenantID, productID, uuid.New(), movementType))

		result, err := repo.FindForTenant(context.Background(), tenantID, inventory.MovementFilter{
			ProductID:    &productID,
			MovementType: &movementType,
			Filter:       shared.DefaultFilter(),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, movementType, result.Items[0].MovementType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by date range", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_movements" WHERE tenant_id = \$1 AND created_at >= \$2 AND created_at <= \$3`).
			WithArgs(tenantID, from, to).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE tenant_id = \$1 AND created_at >= \$2 AND created_at <= \$3`).
			WillReturnRows(movementRows(uuid.New(), tenantID, uuid.New(), uuid.New(), inventory.MovementTypePurchase))

		result, err := repo.FindForTenant(context.Background(), tenantID, inventory.MovementFilter{
			CreatedAfter:  &from,
			CreatedBefore: &to,
			Filter:        shared.DefaultFilter(),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMovementRepository_FindByReference(t *testing.T) {
	t.Run("finds movements for a source document", func(t *testing.T) {
		repo, mock, mockDB := newMockStockMovementRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := movementRows(uuid.New(), tenantID, uuid.New(), uuid.New(), inventory.MovementTypeSale)

		mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE tenant_id = \$1 AND reference_type = \$2 AND reference_id = \$3`).
			WithArgs(tenantID, "sales_order", "SO-1001").
			WillReturnRows(rows)

		movements, err := repo.FindByReference(context.Background(), tenantID, "sales_order", "SO-1001")

		require.NoError(t, err)
		assert.Len(t, movements, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
