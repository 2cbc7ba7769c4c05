package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// NotificationEventRepository 通知投递事件数据访问接口
// 事件表仅追加：没有 Update/Delete。
type NotificationEventRepository interface {
	Append(ctx context.Context, event *model.NotificationEvent) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]model.NotificationEvent, error)
}

type notificationEventRepo struct {
	db *gorm.DB
}

// NewNotificationEventRepo 创建 NotificationEventRepository 实例
func NewNotificationEventRepo(db *gorm.DB) NotificationEventRepository {
	return &notificationEventRepo{db: db}
}

func (r *notificationEventRepo) Append(ctx context.Context, event *model.NotificationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *notificationEventRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]model.NotificationEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []model.NotificationEvent
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
