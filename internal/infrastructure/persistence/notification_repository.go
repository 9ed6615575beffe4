package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/notification"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error; err != nil {
		return translateError("create notification", err)
	}
	return nil
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find notification", "Notification", id, err)
	}
	return model.ToDomain(), nil
}

// List returns one page of notifications and the total count
func (r *GormNotificationRepository) List(ctx context.Context, filter notification.Filter) ([]notification.Notification, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.NotificationModel{})
		if filter.UnreadOnly {
			query = query.Where("read = ?", false)
		}
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, translateError("count notifications", err)
	}

	var rows []models.NotificationModel
	if err := applyPage(base(), filter.Filter, NotificationSortFields).Find(&rows).Error; err != nil {
		return nil, 0, translateError("list notifications", err)
	}

	items := make([]notification.Notification, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, total, nil
}

// MarkRead sets read=true on one notification
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return translateError("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NotFoundError("Notification", id)
	}
	return nil
}

// MarkAllRead sets read=true on every unread notification
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("read = ?", false).
		Update("read", true)
	if result.Error != nil {
		return 0, translateError("mark all notifications read", result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread returns the number of unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("read = ?", false).
		Count(&count).Error; err != nil {
		return 0, translateError("count unread notifications", err)
	}
	return count, nil
}

// ExistsSince backs the low-stock dedup check via idx_notifications_dedup
func (r *GormNotificationRepository) ExistsSince(ctx context.Context, t notification.Type, relatedID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("type = ? AND related_id = ? AND created_at >= ?", t, relatedID, since.UTC()).
		Count(&count).Error; err != nil {
		return false, translateError("check recent notification", err)
	}
	return count > 0, nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
