package models

import (
	"time"

	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for notifications.
// The composite index backs the low-stock dedup lookup.
type NotificationModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	Type      notification.Type `gorm:"type:varchar(20);not null;index:idx_notifications_dedup,priority:1"`
	Message   string            `gorm:"type:varchar(1000);not null"`
	RelatedID *uuid.UUID        `gorm:"type:uuid;index:idx_notifications_dedup,priority:2"`
	Read      bool              `gorm:"not null;default:false;index"`
	CreatedAt time.Time         `gorm:"not null;index:idx_notifications_dedup,priority:3"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:        m.ID,
		Type:      m.Type,
		Message:   m.Message,
		RelatedID: m.RelatedID,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// AllModels lists every model in dependency order, for test schemas
func AllModels() []any {
	return []any{
		&ProductModel{},
		&SupplierModel{},
		&CustomerModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&NotificationModel{},
	}
}
