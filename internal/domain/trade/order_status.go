package trade

import (
	"strings"

	"github.com/erp/stockflow/internal/domain/shared"
)

// OrderStatus is the lifecycle status shared by purchase and sales orders
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ParseTransitionTarget validates a requested target status.
// Only completed and cancelled can be requested; pending is the creation state.
func ParseTransitionTarget(raw string) (OrderStatus, error) {
	target := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if target != OrderStatusCompleted && target != OrderStatusCancelled {
		return "", shared.InvalidArgumentError("invalid target status %q: must be completed or cancelled", raw).
			WithDetail("status", raw)
	}
	return target, nil
}

func transitionConflict(kind string, from, to OrderStatus) *shared.DomainError {
	return shared.ConflictError("cannot move %s from %s to %s", kind, from, to).
		WithDetail("current_status", from.String()).
		WithDetail("target_status", to.String())
}
