package handler

import (
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
// @Description Request body for creating a pending purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID string             `json:"supplier_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Create godoc
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Creates a pending purchase order. Stock is untouched until the order completes.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body CreatePurchaseOrderRequest true "Purchase order"
// @Success      201 {object} APIResponse[tradeapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /trade/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tradeapp.CreatePurchaseOrderRequest{
		SupplierID: uuid.MustParse(req.SupplierID),
		Items:      toItemInputs(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.PurchaseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /trade/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Newest first, optionally filtered by status
// @Tags         purchase-orders
// @Produce      json
// @Param        status    query string false "pending, completed or cancelled"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.PurchaseOrderResponse]
// @Router       /trade/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), query.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Transition godoc
// @ID           transitionPurchaseOrder
// @Summary      Complete or cancel a purchase order
// @Description  Completing adds every item quantity to stock atomically with the status change.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Purchase order ID" format(uuid)
// @Param        request body TransitionOrderRequest true "Target status"
// @Success      200 {object} APIResponse[tradeapp.PurchaseOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /trade/purchase-orders/{id}/transition [post]
func (h *PurchaseOrderHandler) Transition(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), id, tradeapp.TransitionRequest{Status: req.Status})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
