package models

import (
	"time"

	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemModel holds the columns shared by purchase and sales order lines
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null;default:0"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int64           `gorm:"not null;check:quantity > 0"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null;check:price >= 0"`
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		LineNo:    m.LineNo,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Price:     m.Price,
	}
}

func orderItemModelFromDomain(i trade.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:        i.ID,
		OrderID:   i.OrderID,
		LineNo:    i.LineNo,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Price:     i.Price,
	}
}

// PurchaseOrderItemModel is a purchase order line
type PurchaseOrderItemModel struct {
	OrderItemModel
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// SalesOrderItemModel is a sales order line
type SalesOrderItemModel struct {
	OrderItemModel
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	AggregateModel
	SupplierID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	Status      trade.OrderStatus        `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	CompletedAt *time.Time               `gorm:"index"`
	CancelledAt *time.Time
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierID:        m.SupplierID,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		CompletedAt:       utcPtr(m.CompletedAt),
		CancelledAt:       utcPtr(m.CancelledAt),
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		SupplierID:  o.SupplierID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
		Items:       make([]PurchaseOrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, item := range o.Items {
		m.Items[i] = PurchaseOrderItemModel{OrderItemModel: orderItemModelFromDomain(item)}
	}
	return m
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate root
type SalesOrderModel struct {
	AggregateModel
	CustomerID  *uuid.UUID            `gorm:"type:uuid;index"`
	Status      trade.OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	CompletedAt *time.Time            `gorm:"index"`
	CancelledAt *time.Time
	Items       []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		CompletedAt:       utcPtr(m.CompletedAt),
		CancelledAt:       utcPtr(m.CancelledAt),
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = m.Items[i].ToDomain()
	}
	return order
}

// SalesOrderModelFromDomain creates a persistence model from a domain SalesOrder
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
		Items:       make([]SalesOrderItemModel, len(o.Items)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i, item := range o.Items {
		m.Items[i] = SalesOrderItemModel{OrderItemModel: orderItemModelFromDomain(item)}
	}
	return m
}
