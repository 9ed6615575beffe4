package notification

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService persists notifications and pushes new ones to live subscribers
type NotificationService struct {
	repo        notification.Repository
	broadcaster notification.Broadcaster
	logger      *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo notification.Repository, broadcaster notification.Broadcaster, logger *zap.Logger) *NotificationService {
	if broadcaster == nil {
		broadcaster = notification.NopBroadcaster{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Create persists a notification and broadcasts it.
// The broadcast never affects the result: once stored, the notification is returned.
func (s *NotificationService) Create(ctx context.Context, t notification.Type, message string, relatedID *uuid.UUID) (*notification.Notification, error) {
	n, err := notification.NewNotification(t, message, relatedID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification",
			zap.String("type", t.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, n)

	s.logger.Debug("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", n.Type.String()),
	)
	return n, nil
}

// CreateFromRequest handles notifications raised by master-data collaborators.
// low_stock is reserved for the stock monitor.
func (s *NotificationService) CreateFromRequest(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error) {
	t := notification.Type(req.Type)
	if t.IsReservedForSystem() {
		return nil, shared.InvalidArgumentError("notification type %s cannot be created directly", t).
			WithDetail("type", req.Type)
	}
	n, err := s.Create(ctx, t, req.Message, req.RelatedID)
	if err != nil {
		return nil, err
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// List returns notifications newest first
func (s *NotificationService) List(ctx context.Context, query ListNotificationsQuery) (*NotificationListResponse, error) {
	filter := notification.Filter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
		}.Normalize(),
		UnreadOnly: query.UnreadOnly,
	}
	if query.Type != "" {
		t := notification.Type(query.Type)
		if !t.IsValid() {
			return nil, shared.InvalidArgumentError("unknown notification type %q", query.Type)
		}
		filter.Type = &t
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &NotificationListResponse{
		Items:    make([]NotificationResponse, len(items)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range items {
		resp.Items[i] = ToNotificationResponse(&items[i])
	}
	return resp, nil
}

// MarkRead marks one notification as read. Marking an already read notification succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every notification as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context) (*MarkAllReadResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("notifications marked read", zap.Int64("updated", updated))
	return &MarkAllReadResponse{Updated: updated}, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context) (*UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Unread: count}, nil
}

// ExistsSince reports whether a notification about relatedID exists in [since, now]
func (s *NotificationService) ExistsSince(ctx context.Context, t notification.Type, relatedID uuid.UUID, since time.Time) (bool, error) {
	return s.repo.ExistsSince(ctx, t, relatedID, since)
}
