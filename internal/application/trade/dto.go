package trade

import (
	"time"

	appinventory "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput represents an item in a create order request
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID        `json:"supplier_id"`
	Items      []OrderItemInput `json:"items"`
}

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order.
// TotalAmount is optional; when present it must equal the computed total.
type CreateSalesOrderRequest struct {
	CustomerID  *uuid.UUID       `json:"customer_id"`
	Items       []OrderItemInput `json:"items"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

// ==================== Shared DTOs ====================

// TransitionRequest asks for a status change
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListQuery represents order listing options
type OrderListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                          `json:"id"`
	SupplierID   uuid.UUID                          `json:"supplier_id"`
	Status       string                             `json:"status"`
	TotalAmount  decimal.Decimal                    `json:"total_amount"`
	Items        []OrderItemResponse                `json:"items"`
	Version      int                                `json:"version"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
	CompletedAt  *time.Time                         `json:"completed_at,omitempty"`
	CancelledAt  *time.Time                         `json:"cancelled_at,omitempty"`
	StockChanges []appinventory.StockChangeResponse `json:"stock_changes,omitempty"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID           uuid.UUID                          `json:"id"`
	CustomerID   *uuid.UUID                         `json:"customer_id,omitempty"`
	Status       string                             `json:"status"`
	TotalAmount  decimal.Decimal                    `json:"total_amount"`
	Items        []OrderItemResponse                `json:"items"`
	Version      int                                `json:"version"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
	CompletedAt  *time.Time                         `json:"completed_at,omitempty"`
	CancelledAt  *time.Time                         `json:"cancelled_at,omitempty"`
	StockChanges []appinventory.StockChangeResponse `json:"stock_changes,omitempty"`
}

// OrderListResponse is one page of orders
type OrderListResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func toLineInputs(items []OrderItemInput) []trade.LineInput {
	lines := make([]trade.LineInput, len(items))
	for i, item := range items {
		lines[i] = trade.LineInput{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
	}
	return lines
}

func toItemResponses(items []trade.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, item := range items {
		out[i] = OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Amount:    item.Amount(),
		}
	}
	return out
}

func toStockChangeResponses(changes []inventory.StockChange) []appinventory.StockChangeResponse {
	if len(changes) == 0 {
		return nil
	}
	out := make([]appinventory.StockChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = appinventory.ToStockChangeResponse(c)
	}
	return out
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:          o.ID,
		SupplierID:  o.SupplierID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		Items:       toItemResponses(o.Items),
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
	}
}

// ToSalesOrderResponse converts a domain SalesOrder to a response
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	return SalesOrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		Items:       toItemResponses(o.Items),
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
	}
}

func toOrderFilter(query OrderListQuery) (trade.OrderFilter, error) {
	filter := trade.OrderFilter{
		Filter: shared.Filter{Page: query.Page, PageSize: query.PageSize}.Normalize(),
	}
	if query.Status != "" {
		status := trade.OrderStatus(query.Status)
		if !status.IsValid() {
			return filter, shared.InvalidArgumentError("unknown order status %q", query.Status)
		}
		filter.Status = &status
	}
	return filter, nil
}

// missingProduct returns the first requested id that is absent from found
func missingProduct(requested []uuid.UUID, found []inventory.Product) (uuid.UUID, bool) {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, p := range found {
		present[p.ID] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
