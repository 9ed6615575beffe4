package inventory

import (
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockChangeResponse represents an applied adjustment in API responses
type StockChangeResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Before      int64     `json:"before"`
	After       int64     `json:"after"`
	Delta       int64     `json:"delta"`
}

// ToStockChangeResponse converts a domain StockChange to a response
func ToStockChangeResponse(c inventory.StockChange) StockChangeResponse {
	return StockChangeResponse{
		ProductID:   c.ProductID,
		ProductName: c.ProductName,
		Before:      c.Before,
		After:       c.After,
		Delta:       c.Delta,
	}
}

// ScanResultResponse reports the outcome of a low-stock scan
type ScanResultResponse struct {
	AlertsCreated int   `json:"alerts_created"`
	Threshold     int64 `json:"threshold"`
}
