package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	CRUD[model.Notification]
	CreateBatch(ctx context.Context, list []model.Notification) error
	// MarkRead 标记单条为已读；非本人或不存在时返回 gorm.ErrRecordNotFound
	MarkRead(ctx context.Context, id, recipientID string, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, recipientID string, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type notificationRepo struct {
	crudRepo[model.Notification]
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{crudRepo: newCRUD[model.Notification](db, NotificationList)}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, list []model.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(list, 200).Error
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("COALESCE(read_at, ?)", at),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID string, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND expires_at > ?", recipientID, false, now).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
