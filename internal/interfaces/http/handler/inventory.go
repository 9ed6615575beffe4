package handler

import (
	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles manual stock adjustments and low-stock scans
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
	monitor       *inventoryapp.StockThresholdMonitor
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService, monitor *inventoryapp.StockThresholdMonitor) *InventoryHandler {
	return &InventoryHandler{
		ledgerService: ledgerService,
		monitor:       monitor,
	}
}

// AdjustStockRequest represents a manual stock correction
// @Description Signed quantity change applied to one product
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required,ne=0,min=-1000000000,max=1000000000" example:"-3"`
	Reason string `json:"reason" binding:"max=255" example:"damaged in transit"`
}

// Adjust godoc
// @ID           adjustProductStock
// @Summary      Adjust product stock
// @Description  Applies quantity += delta in one transaction. A result below zero is
// @Description  refused with INVARIANT_VIOLATION.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Product ID" format(uuid)
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      200 {object} APIResponse[inventoryapp.StockChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/products/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	change, err := h.ledgerService.Adjust(c.Request.Context(), productID, req.Delta, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inventoryapp.ToStockChangeResponse(*change))
}

// ScanLowStock godoc
// @ID           scanLowStock
// @Summary      Run a low-stock scan
// @Description  Evaluates every product at or below the critical threshold and raises
// @Description  alerts for those without one inside the dedup window.
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[inventoryapp.ScanResultResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /inventory/low-stock/scan [post]
func (h *InventoryHandler) ScanLowStock(c *gin.Context) {
	created, err := h.monitor.Scan(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inventoryapp.ScanResultResponse{
		AlertsCreated: created,
		Threshold:     h.monitor.Config().Critical,
	})
}
