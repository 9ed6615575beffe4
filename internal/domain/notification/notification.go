package notification

import (
	"strings"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a notification
type Type string

const (
	TypeLowStock Type = "low_stock"
	TypePurchase Type = "purchase"
	TypeSale     Type = "sale"
	TypeCustomer Type = "customer"
	TypeSupplier Type = "supplier"
	TypeUser     Type = "user"
	TypeCategory Type = "category"
	TypeSystem   Type = "system"
)

// AllTypes lists every notification type
var AllTypes = []Type{
	TypeLowStock, TypePurchase, TypeSale, TypeCustomer,
	TypeSupplier, TypeUser, TypeCategory, TypeSystem,
}

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// IsReservedForSystem reports whether only internal components may raise this type
func (t Type) IsReservedForSystem() bool {
	return t == TypeLowStock
}

// Notification is a user-facing message about something that happened
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	Message   string     `json:"message"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewNotification creates an unread notification
func NewNotification(t Type, message string, relatedID *uuid.UUID) (*Notification, error) {
	if !t.IsValid() {
		return nil, shared.InvalidArgumentError("unknown notification type %q", t)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.InvalidArgumentError("notification message cannot be empty")
	}
	if len(message) > 1000 {
		return nil, shared.InvalidArgumentError("notification message cannot exceed 1000 characters")
	}
	if relatedID != nil && *relatedID == uuid.Nil {
		relatedID = nil
	}

	return &Notification{
		ID:        uuid.New(),
		Type:      t,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkRead flips the read flag. Returns false if it was already read.
func (n *Notification) MarkRead() bool {
	if n.Read {
		return false
	}
	n.Read = true
	return true
}

// Filter narrows notification listings
type Filter struct {
	shared.Filter
	UnreadOnly bool
	Type       *Type
}
