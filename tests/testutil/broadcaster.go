package testutil

import (
	"context"
	"sync"

	"github.com/erp/stockflow/internal/domain/notification"
)

// RecordingBroadcaster captures every broadcast notification.
type RecordingBroadcaster struct {
	mu   sync.Mutex
	sent []notification.Notification
}

// NewRecordingBroadcaster creates an empty RecordingBroadcaster.
func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

// Broadcast implements notification.Broadcaster.
func (b *RecordingBroadcaster) Broadcast(_ context.Context, n *notification.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, *n)
}

// Sent returns a copy of the broadcast notifications in order.
func (b *RecordingBroadcaster) Sent() []notification.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]notification.Notification, len(b.sent))
	copy(out, b.sent)
	return out
}

// Count returns how many notifications were broadcast.
func (b *RecordingBroadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

// CountType returns how many broadcast notifications have the given type.
func (b *RecordingBroadcaster) CountType(t notification.Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, sent := range b.sent {
		if sent.Type == t {
			n++
		}
	}
	return n
}

var _ notification.Broadcaster = (*RecordingBroadcaster)(nil)
