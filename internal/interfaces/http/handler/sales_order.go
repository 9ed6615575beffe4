package handler

import (
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderHandler handles sales order API endpoints
type SalesOrderHandler struct {
	BaseHandler
	orderService *tradeapp.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orderService *tradeapp.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orderService: orderService}
}

// CreateSalesOrderRequest represents a request to create a sales order
// @Description Request body for creating a pending sales order. total_amount is
// @Description optional and, when sent, must equal the sum of the lines.
type CreateSalesOrderRequest struct {
	CustomerID  *string            `json:"customer_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount *decimal.Decimal   `json:"total_amount" swaggertype:"string" example:"99.90"`
}

// Create godoc
// @ID           createSalesOrder
// @Summary      Create a sales order
// @Description  Creates a pending sales order. Stock is only checked and deducted on completion.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        request body CreateSalesOrderRequest true "Sales order"
// @Success      201 {object} APIResponse[tradeapp.SalesOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /trade/sales-orders [post]
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	appReq := tradeapp.CreateSalesOrderRequest{
		Items:       toItemInputs(req.Items),
		TotalAmount: req.TotalAmount,
	}
	if req.CustomerID != nil && *req.CustomerID != "" {
		customerID := uuid.MustParse(*req.CustomerID)
		appReq.CustomerID = &customerID
	}

	order, err := h.orderService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getSalesOrder
// @Summary      Get a sales order
// @Tags         sales-orders
// @Produce      json
// @Param        id path string true "Sales order ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.SalesOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /trade/sales-orders/{id} [get]
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
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
// @ID           listSalesOrders
// @Summary      List sales orders
// @Tags         sales-orders
// @Produce      json
// @Param        status    query string false "pending, completed or cancelled"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.SalesOrderResponse]
// @Router       /trade/sales-orders [get]
func (h *SalesOrderHandler) List(c *gin.Context) {
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
// @ID           transitionSalesOrder
// @Summary      Complete or cancel a sales order
// @Description  Completing deducts every item quantity from stock atomically with the status
// @Description  change, or fails with INSUFFICIENT_STOCK leaving everything untouched.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Sales order ID" format(uuid)
// @Param        request body TransitionOrderRequest true "Target status"
// @Success      200 {object} APIResponse[tradeapp.SalesOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /trade/sales-orders/{id}/transition [post]
func (h *SalesOrderHandler) Transition(c *gin.Context) {
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
