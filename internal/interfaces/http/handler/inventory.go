package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invapp "github.com/backoffice/backend/internal/application/inventory"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles stock level and movement ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *invapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *invapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// ApplyMovement handles POST /inventory/movements
func (h *InventoryHandler) ApplyMovement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req invapp.ApplyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.OperatorID == nil {
		req.OperatorID = getOperatorID(c)
	}

	result, err := h.inventoryService.ApplyMovement(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetStockLevel handles GET /inventory/stock-levels/:productID/:warehouseID
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	warehouseID, err := uuid.Parse(c.Param("warehouseID"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	level, err := h.inventoryService.GetStockLevel(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// ListStockLevels handles GET /inventory/stock-levels
func (h *InventoryHandler) ListStockLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := invapp.StockLevelListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, total, err := h.inventoryService.ListStockLevels(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// GetStockLevelsByProduct handles GET /inventory/products/:productID/stock-levels
func (h *InventoryHandler) GetStockLevelsByProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	levels, err := h.inventoryService.GetStockLevelsByProduct(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}

// ListLowStock handles GET /inventory/stock-levels/low
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	levels, total, err := h.inventoryService.GetLowStockProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// ListOutOfStock handles GET /inventory/stock-levels/out-of-stock
func (h *InventoryHandler) ListOutOfStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	levels, total, err := h.inventoryService.GetOutOfStockProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// ListMovements handles GET /inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := invapp.MovementListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// GetMovement handles GET /inventory/movements/:id
func (h *InventoryHandler) GetMovement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	movementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid movement ID")
		return
	}

	movement, err := h.inventoryService.GetMovement(c.Request.Context(), tenantID, movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// SetThresholds handles PUT /inventory/stock-levels/thresholds
func (h *InventoryHandler) SetThresholds(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req invapp.SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.inventoryService.SetThresholds(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, level)
}

// bindListFilter binds common pagination query params into a shared.Filter
func (h *InventoryHandler) bindListFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter, true
}
