package inventory

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/warehouse"
)

const (
	// maxApplyAttempts bounds the optimistic-lock retry loop in ApplyMovement
	maxApplyAttempts = 3
)

// InventoryService is the sole mutation entry point for stock. Every quantity
// change flows through ApplyMovement, which updates the stock level row(s) and
// appends the matching ledger entries in one transaction.
type InventoryService struct {
	txScope        TransactionScope
	stockLevelRepo inventory.StockLevelRepository
	movementRepo   inventory.StockMovementRepository
	warehouseRepo  warehouse.Repository
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	txScope TransactionScope,
	stockLevelRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
	warehouseRepo warehouse.Repository,
) *InventoryService {
	return &InventoryService{
		txScope:        txScope,
		stockLevelRepo: stockLevelRepo,
		movementRepo:   movementRepo,
		warehouseRepo:  warehouseRepo,
		idempotencyCfg: shared.IdempotencyConfig{Enabled: false},
	}
}

// SetIdempotencyStore enables reference-based duplicate detection.
// Requests carrying a reference ID are rejected when the same reference
// was already applied within the configured TTL.
func (s *InventoryService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idempotencyCfg = cfg
}

// ApplyMovement validates and applies a stock movement atomically: it reads
// the affected stock level(s), computes the resulting quantities, writes them
// with an optimistic version check, and appends the ledger entries — all in
// one transaction. On a version conflict the whole sequence is retried a
// bounded number of times.
func (s *InventoryService) ApplyMovement(ctx context.Context, tenantID uuid.UUID, req ApplyMovementRequest) (*ApplyMovementResponse, error) {
	movementType := req.NormalizedType()
	if err := validateMovementRequest(tenantID, movementType, req); err != nil {
		return nil, err
	}
	if err := s.ensureWarehouse(ctx, tenantID, req.WarehouseID); err != nil {
		return nil, err
	}
	if req.RelatedWarehouse != nil {
		if err := s.ensureWarehouse(ctx, tenantID, *req.RelatedWarehouse); err != nil {
			return nil, err
		}
	}

	idempotencyKey := s.idempotencyKey(tenantID, movementType, req)
	if idempotencyKey != "" {
		processed, err := s.idempotency.IsProcessed(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if processed {
			return nil, shared.NewDomainError("DUPLICATE_MOVEMENT",
				fmt.Sprintf("Movement with reference %s/%s was already applied", req.ReferenceType, req.ReferenceID))
		}
	}

	var response *ApplyMovementResponse
	var err error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var applyErr error
			response, applyErr = s.apply(ctx, repos, tenantID, movementType, req)
			return applyErr
		})
		if err == nil || !shared.IsConcurrencyConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		// Marked after commit: a crash between commit and mark lets a retry
		// through, which the ledger reference query can still reconcile.
		if _, err := s.idempotency.MarkProcessed(ctx, idempotencyKey, s.idempotencyCfg.TTL); err != nil {
			return nil, err
		}
	}

	return response, nil
}

// apply performs a single attempt of the read-compute-write-append sequence
// inside an open transaction.
func (s *InventoryService) apply(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	switch {
	case movementType == inventory.MovementTypeTransferIn || movementType == inventory.MovementTypeTransferOut:
		return s.applyTransfer(ctx, repos, tenantID, movementType, req)
	case movementType.IsInbound():
		return s.applyInbound(ctx, repos, tenantID, movementType, req)
	case movementType.IsOutbound():
		return s.applyOutbound(ctx, repos, tenantID, movementType, req)
	case movementType.IsAbsolute():
		return s.applyAbsolute(ctx, repos, tenantID, movementType, req)
	case movementType.AffectsReservation():
		return s.applyReservation(ctx, repos, tenantID, movementType, req)
	default:
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE",
			fmt.Sprintf("Unsupported movement type: %s", movementType))
	}
}

// applyInbound handles purchase, return and production receipts. A missing
// stock level row is created on the fly with a zero quantity.
func (s *InventoryService) applyInbound(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	level, err := repos.StockLevelRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	before := level.Quantity
	if err := level.Increase(req.Quantity); err != nil {
		return nil, err
	}
	if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	movement, err := s.recordMovement(ctx, repos, tenantID, movementType, req, req.WarehouseID, req.Quantity, before, level.Quantity)
	if err != nil {
		return nil, err
	}

	return newApplyResponse([]*inventory.StockMovement{movement}, []*inventory.StockLevel{level}), nil
}

// applyOutbound handles sale and damage issues. The issue is bounded by the
// available (unreserved) quantity; a missing row cannot go negative and is
// reported as not found.
func (s *InventoryService) applyOutbound(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	level, err := repos.StockLevelRepo().FindByProductAndWarehouse(ctx, tenantID, req.ProductID, req.WarehouseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Cannot create negative stock level")
		}
		return nil, err
	}

	before := level.Quantity
	if err := level.Decrease(req.Quantity); err != nil {
		return nil, err
	}
	if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	movement, err := s.recordMovement(ctx, repos, tenantID, movementType, req, req.WarehouseID, req.Quantity, before, level.Quantity)
	if err != nil {
		return nil, err
	}

	return newApplyResponse([]*inventory.StockMovement{movement}, []*inventory.StockLevel{level}), nil
}

// applyTransfer moves a quantity between two warehouses. The source is
// decremented, the destination incremented (created if absent), and both legs
// are written to the ledger. Rows are saved in warehouse-ID order so that
// concurrent opposite-direction transfers cannot deadlock.
func (s *InventoryService) applyTransfer(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	var sourceID, destID uuid.UUID
	if movementType == inventory.MovementTypeTransferIn {
		destID = req.WarehouseID
		sourceID = *req.RelatedWarehouse
	} else {
		sourceID = req.WarehouseID
		destID = *req.RelatedWarehouse
	}

	source, err := repos.StockLevelRepo().FindByProductAndWarehouse(ctx, tenantID, req.ProductID, sourceID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Cannot create negative stock level")
		}
		return nil, err
	}
	dest, err := repos.StockLevelRepo().GetOrCreate(ctx, tenantID, req.ProductID, destID)
	if err != nil {
		return nil, err
	}

	sourceBefore := source.Quantity
	destBefore := dest.Quantity
	if err := source.Decrease(req.Quantity); err != nil {
		return nil, err
	}
	if err := dest.Increase(req.Quantity); err != nil {
		return nil, err
	}

	for _, level := range orderByWarehouseID(source, dest) {
		if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
			return nil, err
		}
	}

	outLeg, err := inventory.NewStockMovement(
		tenantID, req.ProductID, sourceID,
		inventory.MovementTypeTransferOut,
		req.Quantity, sourceBefore, source.Quantity,
	)
	if err != nil {
		return nil, err
	}
	inLeg, err := inventory.NewStockMovement(
		tenantID, req.ProductID, destID,
		inventory.MovementTypeTransferIn,
		req.Quantity, destBefore, dest.Quantity,
	)
	if err != nil {
		return nil, err
	}
	outLeg.WithRelatedWarehouse(destID)
	inLeg.WithRelatedWarehouse(sourceID)
	for _, movement := range []*inventory.StockMovement{outLeg, inLeg} {
		decorateMovement(movement, req)
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return nil, err
		}
	}

	// The requested warehouse's leg comes first in the response
	movements := []*inventory.StockMovement{outLeg, inLeg}
	levels := []*inventory.StockLevel{source, dest}
	if movementType == inventory.MovementTypeTransferIn {
		movements = []*inventory.StockMovement{inLeg, outLeg}
		levels = []*inventory.StockLevel{dest, source}
	}
	return newApplyResponse(movements, levels), nil
}

// applyAbsolute handles adjustment and count: the request quantity is a
// target absolute value, and the applied delta is target minus current.
// Reapplying the same target is a recorded no-op.
func (s *InventoryService) applyAbsolute(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	level, err := repos.StockLevelRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	before := level.Quantity
	delta, err := level.AdjustTo(req.Quantity)
	if err != nil {
		return nil, err
	}
	if movementType == inventory.MovementTypeCount {
		level.RecordCount(req.Quantity, time.Now().UTC())
	}
	if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	movement, err := s.recordMovement(ctx, repos, tenantID, movementType, req, req.WarehouseID, delta.Abs(), before, level.Quantity)
	if err != nil {
		return nil, err
	}

	return newApplyResponse([]*inventory.StockMovement{movement}, []*inventory.StockLevel{level}), nil
}

// applyReservation handles reservation and release: on-hand quantity is
// untouched, only the reserved portion moves.
func (s *InventoryService) applyReservation(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
) (*ApplyMovementResponse, error) {
	level, err := repos.StockLevelRepo().FindByProductAndWarehouse(ctx, tenantID, req.ProductID, req.WarehouseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Cannot create negative stock level")
		}
		return nil, err
	}

	before := level.Quantity
	if movementType == inventory.MovementTypeReservation {
		err = level.Reserve(req.Quantity)
	} else {
		err = level.Release(req.Quantity)
	}
	if err != nil {
		return nil, err
	}
	if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}

	movement, err := s.recordMovement(ctx, repos, tenantID, movementType, req, req.WarehouseID, req.Quantity, before, level.Quantity)
	if err != nil {
		return nil, err
	}

	return newApplyResponse([]*inventory.StockMovement{movement}, []*inventory.StockLevel{level}), nil
}

// recordMovement appends a single ledger entry for the primary warehouse
func (s *InventoryService) recordMovement(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	movementType inventory.MovementType,
	req ApplyMovementRequest,
	warehouseID uuid.UUID,
	quantity, before, after decimal.Decimal,
) (*inventory.StockMovement, error) {
	movement, err := inventory.NewStockMovement(tenantID, req.ProductID, warehouseID, movementType, quantity, before, after)
	if err != nil {
		return nil, err
	}
	decorateMovement(movement, req)
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// GetStockLevel retrieves the stock level for a product in a warehouse
func (s *InventoryService) GetStockLevel(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.stockLevelRepo.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListStockLevels retrieves a paginated list of stock levels
func (s *InventoryService) ListStockLevels(ctx context.Context, tenantID uuid.UUID, filter StockLevelListFilter) ([]StockLevelResponse, int64, error) {
	domainFilter := inventory.LevelFilter{
		ProductID:    filter.ProductID,
		WarehouseID:  filter.WarehouseID,
		BelowMinimum: filter.BelowMinimum != nil && *filter.BelowMinimum,
		OutOfStock:   filter.OutOfStock != nil && *filter.OutOfStock,
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}

	page, err := s.stockLevelRepo.FindLevels(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockLevelResponses(page.Items), page.Total, nil
}

// GetStockLevelsByProduct retrieves all stock levels for a product across warehouses
func (s *InventoryService) GetStockLevelsByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.stockLevelRepo.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return ToStockLevelResponses(levels), nil
}

// GetLowStockProducts retrieves stock levels at or below their reorder point
func (s *InventoryService) GetLowStockProducts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, int64, error) {
	page, err := s.stockLevelRepo.FindBelowMinimum(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockLevelResponses(page.Items), page.Total, nil
}

// GetOutOfStockProducts retrieves stock levels with no available quantity
func (s *InventoryService) GetOutOfStockProducts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockLevelResponse, int64, error) {
	page, err := s.stockLevelRepo.FindOutOfStock(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockLevelResponses(page.Items), page.Total, nil
}

// ListMovements retrieves a paginated view of the movement ledger
func (s *InventoryService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	domainFilter := inventory.MovementFilter{
		ProductID:     filter.ProductID,
		WarehouseID:   filter.WarehouseID,
		ReferenceType: filter.ReferenceType,
		ReferenceID:   filter.ReferenceID,
		CreatedAfter:  filter.DateFrom,
		CreatedBefore: filter.DateTo,
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
	}
	if filter.MovementType != "" {
		movementType := inventory.MovementType(filter.MovementType)
		if !movementType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_MOVEMENT_TYPE",
				fmt.Sprintf("Unknown movement type: %s", filter.MovementType))
		}
		domainFilter.MovementType = &movementType
	}

	page, err := s.movementRepo.FindForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockMovementResponses(page.Items), page.Total, nil
}

// GetMovement retrieves a single ledger entry
func (s *InventoryService) GetMovement(ctx context.Context, tenantID, movementID uuid.UUID) (*StockMovementResponse, error) {
	movement, err := s.movementRepo.FindByIDForTenant(ctx, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	response := ToStockMovementResponse(movement)
	return &response, nil
}

// SetThresholds updates the reorder point and overstock ceiling for a stock
// level, creating the row if it does not exist yet.
func (s *InventoryService) SetThresholds(ctx context.Context, tenantID uuid.UUID, req SetThresholdsRequest) (*StockLevelResponse, error) {
	var response *StockLevelResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		level, err := repos.StockLevelRepo().GetOrCreate(ctx, tenantID, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if err := level.SetThresholds(req.MinimumQuantity, req.MaximumQuantity); err != nil {
			return err
		}
		if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
			return err
		}
		r := ToStockLevelResponse(level)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// validateMovementRequest rejects malformed requests before any read or write
func validateMovementRequest(tenantID uuid.UUID, movementType inventory.MovementType, req ApplyMovementRequest) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if req.ProductID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Product ID is required")
	}
	if req.WarehouseID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Warehouse ID is required")
	}
	if !movementType.IsValid() {
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE",
			fmt.Sprintf("Unknown movement type: %s", req.MovementType))
	}

	if movementType.IsAbsolute() {
		if req.Quantity.IsNegative() {
			return shared.NewDomainError("VALIDATION_ERROR", "Target quantity cannot be negative")
		}
	} else if !req.Quantity.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}

	if movementType == inventory.MovementTypeTransferIn || movementType == inventory.MovementTypeTransferOut {
		if req.RelatedWarehouse == nil || *req.RelatedWarehouse == uuid.Nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Related warehouse ID is required for transfers")
		}
		if *req.RelatedWarehouse == req.WarehouseID {
			return shared.NewDomainError("VALIDATION_ERROR", "Transfer source and destination must differ")
		}
	}

	return nil
}

// ensureWarehouse verifies that a referenced warehouse exists in the tenant
// and is active. Movements never mint stock rows for unknown warehouses.
func (s *InventoryService) ensureWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) error {
	wh, err := s.warehouseRepo.FindByIDForTenant(ctx, tenantID, warehouseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Warehouse %s not found", warehouseID))
		}
		return err
	}
	if !wh.IsActive {
		return shared.NewDomainError("WAREHOUSE_INACTIVE",
			fmt.Sprintf("Warehouse %s is inactive", warehouseID))
	}
	return nil
}

// idempotencyKey builds the duplicate-detection key for a request, or returns
// an empty string when idempotency does not apply.
func (s *InventoryService) idempotencyKey(tenantID uuid.UUID, movementType inventory.MovementType, req ApplyMovementRequest) string {
	if s.idempotency == nil || !s.idempotencyCfg.Enabled || req.ReferenceID == "" {
		return ""
	}
	return fmt.Sprintf("movement:%s:%s:%s:%s", tenantID, movementType, req.ReferenceType, req.ReferenceID)
}

func decorateMovement(movement *inventory.StockMovement, req ApplyMovementRequest) {
	if req.ReferenceType != "" || req.ReferenceID != "" || req.ReferenceNumber != "" {
		movement.WithReference(req.ReferenceType, req.ReferenceID, req.ReferenceNumber)
	}
	if req.Notes != "" {
		movement.WithNotes(req.Notes)
	}
	if req.OperatorID != nil {
		movement.WithCreatedBy(*req.OperatorID)
	}
}

func newApplyResponse(movements []*inventory.StockMovement, levels []*inventory.StockLevel) *ApplyMovementResponse {
	return &ApplyMovementResponse{
		Movements: ToStockMovementResponses(movements),
		Levels:    ToStockLevelResponses(levels),
	}
}

// orderByWarehouseID returns the two levels sorted by warehouse ID so writes
// always take row locks in the same global order
func orderByWarehouseID(a, b *inventory.StockLevel) []*inventory.StockLevel {
	if bytes.Compare(a.WarehouseID[:], b.WarehouseID[:]) <= 0 {
		return []*inventory.StockLevel{a, b}
	}
	return []*inventory.StockLevel{b, a}
}
