package notification

import "context"

// Broadcaster pushes newly created notifications to live subscribers.
// Delivery is best effort; implementations must not block the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, n *Notification)
}

// NopBroadcaster discards every notification
type NopBroadcaster struct{}

// Broadcast does nothing
func (NopBroadcaster) Broadcast(context.Context, *Notification) {}

// MultiBroadcaster fans a notification out to several broadcasters
type MultiBroadcaster []Broadcaster

// Broadcast forwards n to every wrapped broadcaster
func (m MultiBroadcaster) Broadcast(ctx context.Context, n *Notification) {
	for _, b := range m {
		if b != nil {
			b.Broadcast(ctx, n)
		}
	}
}
