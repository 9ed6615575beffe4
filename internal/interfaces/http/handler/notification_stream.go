package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	notificationapp "github.com/erp/stockflow/internal/application/notification"
	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSE event names
const (
	EventConnected       = "connected"
	EventHeartbeat       = "heartbeat"
	EventNewNotification = "new-notification"
)

const (
	defaultStreamHeartbeat  = 30 * time.Second
	defaultStreamBufferSize = 16
	defaultStreamMaxClients = 10000
)

// ErrStreamAlreadyStarted is returned by Start when called twice
var ErrStreamAlreadyStarted = errors.New("notification stream already started")

type sseMessage struct {
	Event string
	Data  string
	ID    string
}

type sseClient struct {
	id string
	ch chan sseMessage
}

// NotificationStreamHandler is the SSE hub. It implements
// notification.Broadcaster so the notification service can push new records
// to every connected client.
type NotificationStreamHandler struct {
	BaseHandler
	logger     *zap.Logger
	heartbeat  time.Duration
	bufferSize int
	maxClients int

	mu      sync.RWMutex
	clients map[string]*sseClient

	ctx     context.Context
	cancel  context.CancelFunc
	startMu sync.Mutex
	started bool
}

var _ notification.Broadcaster = (*NotificationStreamHandler)(nil)

// NotificationStreamOption configures a NotificationStreamHandler
type NotificationStreamOption func(*NotificationStreamHandler)

// WithStreamLogger sets the logger
func WithStreamLogger(logger *zap.Logger) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithStreamBufferSize sets how many messages may queue per client before
// new ones are dropped for that client
func WithStreamBufferSize(size int) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithStreamMaxClients caps concurrent connections. Zero removes the cap.
func WithStreamMaxClients(max int) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if max >= 0 {
			h.maxClients = max
		}
	}
}

// NewNotificationStreamHandler creates the SSE hub
func NewNotificationStreamHandler(opts ...NotificationStreamOption) *NotificationStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationStreamHandler{
		logger:     zap.NewNop(),
		heartbeat:  defaultStreamHeartbeat,
		bufferSize: defaultStreamBufferSize,
		maxClients: defaultStreamMaxClients,
		clients:    make(map[string]*sseClient),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start begins sending heartbeats
func (h *NotificationStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return ErrStreamAlreadyStarted
	}
	go h.sendHeartbeats()
	h.started = true
	h.logger.Info("Notification stream started", zap.Duration("heartbeat", h.heartbeat))
	return nil
}

// Stop disconnects every client and stops the heartbeat
func (h *NotificationStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("Notification stream stopped")
}

// Broadcast sends n to every connected client as a new-notification event.
// Clients whose buffer is full miss the message.
func (h *NotificationStreamHandler) Broadcast(_ context.Context, n *notification.Notification) {
	if n == nil {
		return
	}
	data, err := json.Marshal(notificationapp.ToNotificationResponse(n))
	if err != nil {
		h.logger.Error("Failed to marshal notification", zap.Error(err))
		return
	}
	h.broadcast(sseMessage{
		Event: EventNewNotification,
		Data:  string(data),
		ID:    n.ID.String(),
	})
}

// ClientCount returns the number of connected clients
func (h *NotificationStreamHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stream godoc
// @ID           streamNotifications
// @Summary      Subscribe to new notifications
// @Description  Server-Sent Events stream. Each new notification arrives as a
// @Description  new-notification event whose data is the notification JSON.
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      503 {object} ErrorResponse
// @Router       /notifications/stream [get]
func (h *NotificationStreamHandler) Stream(c *gin.Context) {
	client, ok := h.register()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUnavailable,
			"Maximum number of stream connections reached",
			getRequestID(c),
		))
		return
	}
	defer h.unregister(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.logger.Info("Notification stream client connected",
		zap.String("client_id", client.id),
		zap.Int("clients", h.ClientCount()))

	writeEvent(c.Writer, sseMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.id, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("Notification stream client disconnected", zap.String("client_id", client.id))
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.ch:
			writeEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// register adds a client unless the hub is full. The check and the insert
// happen under one lock so concurrent connects cannot exceed maxClients.
func (h *NotificationStreamHandler) register() (*sseClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return nil, false
	}
	client := &sseClient{
		id: uuid.NewString(),
		ch: make(chan sseMessage, h.bufferSize),
	}
	h.clients[client.id] = client
	return client, true
}

// unregister removes the client. Its channel is never closed: a concurrent
// broadcast may still hold a reference, and an unread buffered channel is
// collected once both sides drop it.
func (h *NotificationStreamHandler) unregister(client *sseClient) {
	h.mu.Lock()
	delete(h.clients, client.id)
	h.mu.Unlock()
}

func (h *NotificationStreamHandler) broadcast(msg sseMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.ch <- msg:
		default:
			h.logger.Warn("Stream client buffer full, dropping message",
				zap.String("client_id", client.id),
				zap.String("event", msg.Event))
		}
	}
}

func (h *NotificationStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case now := <-ticker.C:
			h.broadcast(sseMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, now.Unix()),
			})
		}
	}
}

func writeEvent(w io.Writer, msg sseMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
