package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// Create inserts a notification
	Create(ctx context.Context, n *Notification) error

	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// List returns one page of notifications ordered by created_at desc, and the total count
	List(ctx context.Context, filter Filter) ([]Notification, int64, error)

	// MarkRead sets read=true on one notification. Returns NOT_FOUND if it does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkAllRead sets read=true everywhere and returns the rows that changed
	MarkAllRead(ctx context.Context) (int64, error)

	// CountUnread returns the number of unread notifications
	CountUnread(ctx context.Context) (int64, error)

	// ExistsSince reports whether a notification of the given type about relatedID
	// was created at or after since
	ExistsSince(ctx context.Context, t Type, relatedID uuid.UUID, since time.Time) (bool, error)
}
