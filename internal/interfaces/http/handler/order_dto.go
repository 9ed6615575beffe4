package handler

import (
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest represents one line of a create order request
// @Description Order line
type OrderItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity  int64           `json:"quantity" binding:"max=1000000000" example:"10"`
	Price     decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
}

// TransitionOrderRequest asks to complete or cancel a pending order
// @Description Order status transition
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required" example:"completed"`
}

// OrderListQuery is bound from the list query string
type OrderListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q OrderListQuery) toApp() tradeapp.OrderListQuery {
	return tradeapp.OrderListQuery{Status: q.Status, Page: q.Page, PageSize: q.PageSize}
}

// toItemInputs converts validated lines. product_id is already checked by the
// uuid binding rule, so parse failures cannot occur here.
func toItemInputs(items []OrderItemRequest) []tradeapp.OrderItemInput {
	out := make([]tradeapp.OrderItemInput, len(items))
	for i, item := range items {
		out[i] = tradeapp.OrderItemInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return out
}
