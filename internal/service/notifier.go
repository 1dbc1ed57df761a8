package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
)

const defaultNotificationTTL = 30 * 24 * time.Hour

// notice 一条待投递的站内通知（收件人在投递时展开）
type notice struct {
	Type        string
	Priority    string
	Title       string
	Message     string
	SenderID    string
	RelatedType string
	RelatedID   string
}

// notifier 站内通知扇出
// 投递是尽力而为的附带动作：失败只记录日志，不影响主流程
type notifier struct {
	repo   *repository.Repository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func newNotifier(repo *repository.Repository, ttl time.Duration, logger *zap.Logger) *notifier {
	if ttl <= 0 {
		ttl = defaultNotificationTTL
	}
	return &notifier{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

// build 为每个收件人生成一条通知（发送者本人除外）
func (n *notifier) build(recipients []string, msg notice) []model.Notification {
	now := n.now()
	seen := make(map[string]bool, len(recipients))
	list := make([]model.Notification, 0, len(recipients))
	for _, id := range recipients {
		if id == "" || seen[id] || id == msg.SenderID {
			continue
		}
		seen[id] = true

		item := model.Notification{
			RecipientID: id,
			Type:        msg.Type,
			Priority:    msg.Priority,
			Title:       msg.Title,
			Message:     msg.Message,
			ExpiresAt:   now.Add(n.ttl),
			CreatedAt:   now,
		}
		if item.Priority == "" {
			item.Priority = model.PriorityMedium
		}
		if msg.SenderID != "" {
			item.SenderID = strPtr(msg.SenderID)
		}
		if msg.RelatedType != "" {
			item.RelatedType = strPtr(msg.RelatedType)
		}
		if msg.RelatedID != "" {
			item.RelatedID = strPtr(msg.RelatedID)
		}
		list = append(list, item)
	}
	return list
}

// toUsers 发送给指定用户
func (n *notifier) toUsers(ctx context.Context, userIDs []string, msg notice) int {
	list := n.build(userIDs, msg)
	if len(list) == 0 {
		return 0
	}
	if err := n.repo.Notification.CreateBatch(ctx, list); err != nil {
		n.logger.Warn("投递通知失败",
			zap.String("type", msg.Type),
			zap.Int("recipients", len(list)),
			zap.Error(err),
		)
		return 0
	}
	return len(list)
}

// toRoles 发送给指定角色的全部在职用户
func (n *notifier) toRoles(ctx context.Context, roles []string, msg notice) int {
	var ids []string
	for _, role := range roles {
		users, err := n.repo.User.ListByRole(ctx, role)
		if err != nil {
			n.logger.Warn("查询通知收件人失败", zap.String("role", role), zap.Error(err))
			continue
		}
		for _, u := range users {
			ids = append(ids, u.UserID)
		}
	}
	return n.toUsers(ctx, ids, msg)
}

// toAdmins 发送给全部管理员
func (n *notifier) toAdmins(ctx context.Context, msg notice) int {
	return n.toRoles(ctx, []string{model.RoleAdmin}, msg)
}
