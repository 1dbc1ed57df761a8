package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

var ErrNotificationNotFound = apperrors.New(apperrors.KindNotFound, 20901, "通知不存在")

// NotificationService 站内通知业务接口
// 用户只能看到、操作发给自己的通知
type NotificationService interface {
	List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Notification, int64, error)
	GetByID(ctx context.Context, id string, caller Caller) (*model.Notification, error)
	// Send 管理员手动发送系统通知，返回实际投递条数
	Send(ctx context.Context, req *dto.CreateNotificationRequest, caller Caller) (int, error)
	MarkRead(ctx context.Context, id string, caller Caller) (*model.Notification, error)
	MarkAllRead(ctx context.Context, caller Caller) (int64, error)
	UnreadCount(ctx context.Context, caller Caller) (int64, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// PurgeExpired 删除过期通知（由定时任务调用）
	PurgeExpired(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	notify *notifier
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, notify *notifier, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, notify: notify, logger: logger, now: time.Now}
}

// List 仅本人未过期的通知
func (s *notificationService) List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Notification, int64, error) {
	q.Filters = append(q.Filters,
		query.Condition{Field: "recipient_id", Op: query.OpEq, Value: caller.UserID},
		query.Condition{Field: "expires_at", Op: query.OpGt, Value: s.now()},
	)
	return s.repo.Notification.List(ctx, q)
}

func (s *notificationService) GetByID(ctx context.Context, id string, caller Caller) (*model.Notification, error) {
	n, err := fetch(ctx, s.repo.Notification, id, ErrNotificationNotFound)
	if err != nil {
		return nil, err
	}
	// 他人的通知同样按不存在处理，不暴露其存在
	if n.RecipientID != caller.UserID {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

func (s *notificationService) Send(ctx context.Context, req *dto.CreateNotificationRequest, caller Caller) (int, error) {
	sent := s.notify.toUsers(ctx, req.RecipientIDs, notice{
		Type:     model.NotifySystem,
		Priority: req.Priority,
		Title:    req.Title,
		Message:  req.Message,
		SenderID: caller.UserID,
	})
	s.logger.Info("系统通知已发送", zap.String("by", caller.UserID), zap.Int("recipients", sent))
	return sent, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string, caller Caller) (*model.Notification, error) {
	if err := remapNotFound(s.repo.Notification.MarkRead(ctx, id, caller.UserID, s.now())); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, caller)
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller Caller) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, caller.UserID, s.now())
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, caller Caller) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, caller.UserID, s.now())
}

func (s *notificationService) Delete(ctx context.Context, id string, caller Caller) error {
	if _, err := s.GetByID(ctx, id, caller); err != nil {
		return err
	}
	return remove(ctx, s.repo.Notification, id, ErrNotificationNotFound)
}

func (s *notificationService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.Notification.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("清理过期通知失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("已清理过期通知", zap.Int64("count", n))
	}
	return n, nil
}

func remapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.Translate(err, nil).Kind == apperrors.KindNotFound {
		return ErrNotificationNotFound
	}
	return err
}
