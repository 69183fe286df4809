package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoffice/backend/internal/domain/shared"
)

func TestMovementType_IsValid(t *testing.T) {
	valid := []MovementType{
		MovementTypePurchase, MovementTypeSale,
		MovementTypeTransferIn, MovementTypeTransferOut,
		MovementTypeAdjustment, MovementTypeReturn,
		MovementTypeProduction, MovementTypeDamage,
		MovementTypeCount, MovementTypeReservation, MovementTypeRelease,
	}
	for _, mt := range valid {
		assert.True(t, mt.IsValid(), mt.String())
	}
	assert.False(t, MovementType("teleport").IsValid())
	assert.False(t, MovementType("").IsValid())
}

func TestMovementType_Direction(t *testing.T) {
	assert.True(t, MovementTypePurchase.IsInbound())
	assert.True(t, MovementTypeReturn.IsInbound())
	assert.True(t, MovementTypeProduction.IsInbound())
	assert.True(t, MovementTypeTransferIn.IsInbound())

	assert.True(t, MovementTypeSale.IsOutbound())
	assert.True(t, MovementTypeDamage.IsOutbound())
	assert.True(t, MovementTypeTransferOut.IsOutbound())

	assert.True(t, MovementTypeAdjustment.IsAbsolute())
	assert.True(t, MovementTypeCount.IsAbsolute())
	assert.False(t, MovementTypeSale.IsAbsolute())

	assert.True(t, MovementTypeReservation.AffectsReservation())
	assert.True(t, MovementTypeRelease.AffectsReservation())
	assert.False(t, MovementTypePurchase.AffectsReservation())
}

func TestNewStockMovement(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates movement successfully", func(t *testing.T) {
		movement, err := NewStockMovement(
			tenantID, productID, warehouseID,
			MovementTypePurchase,
			decimal.NewFromInt(10),
			decimal.NewFromInt(5), decimal.NewFromInt(15),
		)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, movement.ID)
		assert.Equal(t, MovementTypePurchase, movement.MovementType)
		assert.Equal(t, decimal.NewFromInt(10), movement.Quantity)
		assert.Equal(t, decimal.NewFromInt(5), movement.QuantityBefore)
		assert.Equal(t, decimal.NewFromInt(15), movement.QuantityAfter)
	})

	t.Run("fails with invalid movement type", func(t *testing.T) {
		_, err := NewStockMovement(
			tenantID, productID, warehouseID,
			MovementType("teleport"),
			decimal.NewFromInt(10),
			decimal.Zero, decimal.Zero,
		)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_MOVEMENT_TYPE", domainErr.Code)
	})

	t.Run("fails with negative quantity", func(t *testing.T) {
		_, err := NewStockMovement(
			tenantID, productID, warehouseID,
			MovementTypeSale,
			decimal.NewFromInt(-1),
			decimal.Zero, decimal.Zero,
		)

		require.Error(t, err)
	})

	t.Run("fails with zero quantity for relative types", func(t *testing.T) {
		_, err := NewStockMovement(
			tenantID, productID, warehouseID,
			MovementTypeSale,
			decimal.Zero,
			decimal.Zero, decimal.Zero,
		)

		require.Error(t, err)
	})

	t.Run("allows zero quantity for absolute types", func(t *testing.T) {
		movement, err := NewStockMovement(
			tenantID, productID, warehouseID,
			MovementTypeAdjustment,
			decimal.Zero,
			decimal.NewFromInt(25), decimal.NewFromInt(25),
		)

		require.NoError(t, err)
		assert.True(t, movement.Quantity.IsZero())
	})

	t.Run("fails with nil tenant ID", func(t *testing.T) {
		_, err := NewStockMovement(
			uuid.Nil, productID, warehouseID,
			MovementTypePurchase,
			decimal.NewFromInt(1),
			decimal.Zero, decimal.NewFromInt(1),
		)

		require.Error(t, err)
	})
}

func TestStockMovement_Builders(t *testing.T) {
	source := uuid.New()
	operator := uuid.New()

	movement, err := NewStockMovement(
		uuid.New(), uuid.New(), uuid.New(),
		MovementTypeTransferIn,
		decimal.NewFromInt(5),
		decimal.Zero, decimal.NewFromInt(5),
	)
	require.NoError(t, err)

	movement.
		WithRelatedWarehouse(source).
		WithReference("transfer_order", "TO-1001", "TRF-2024-0042").
		WithNotes("rebalancing").
		WithCreatedBy(operator)

	require.NotNil(t, movement.RelatedWarehouseID)
	assert.Equal(t, source, *movement.RelatedWarehouseID)
	assert.Equal(t, "transfer_order", movement.ReferenceType)
	assert.Equal(t, "TO-1001", movement.ReferenceID)
	assert.Equal(t, "TRF-2024-0042", movement.ReferenceNumber)
	assert.Equal(t, "rebalancing", movement.Notes)
	require.NotNil(t, movement.CreatedBy)
	assert.Equal(t, operator, *movement.CreatedBy)
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	tests := []struct {
		name         string
		movementType MovementType
		quantity     int64
		before       int64
		after        int64
		want         int64
	}{
		{"purchase is positive", MovementTypePurchase, 10, 0, 10, 10},
		{"sale is negative", MovementTypeSale, 5, 10, 5, -5},
		{"transfer out is negative", MovementTypeTransferOut, 3, 10, 7, -3},
		{"transfer in is positive", MovementTypeTransferIn, 3, 0, 3, 3},
		{"adjustment is the net change", MovementTypeAdjustment, 15, 10, 25, 15},
		{"count down is the net change", MovementTypeCount, 2, 10, 8, -2},
		{"reservation leaves on-hand unchanged", MovementTypeReservation, 4, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movement, err := NewStockMovement(
				uuid.New(), uuid.New(), uuid.New(),
				tt.movementType,
				decimal.NewFromInt(tt.quantity),
				decimal.NewFromInt(tt.before), decimal.NewFromInt(tt.after),
			)
			require.NoError(t, err)

			got := movement.SignedQuantity()
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s, want %d", got, tt.want)
		})
	}
}
