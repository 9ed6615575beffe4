package notification

import (
	"time"

	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/google/uuid"
)

// CreateNotificationRequest is sent by master-data collaborators
type CreateNotificationRequest struct {
	Type      string     `json:"type" binding:"required,oneof=purchase sale customer supplier user category system low_stock"`
	Message   string     `json:"message" binding:"required,max=1000"`
	RelatedID *uuid.UUID `json:"related_id"`
}

// ListNotificationsQuery represents notification listing options
type ListNotificationsQuery struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification to a response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type.String(),
		Message:   n.Message,
		RelatedID: n.RelatedID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse is one page of notifications
type NotificationListResponse struct {
	Items    []NotificationResponse `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// UnreadCountResponse carries the unread total
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
