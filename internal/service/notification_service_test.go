package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
)

func setupNotifications() (*notificationService, *mockRepos, time.Time) {
	m := newMockRepos()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	n := testNotifier(m)
	n.now = func() time.Time { return now }
	svc := NewNotificationService(m.repo, n, zap.NewNop()).(*notificationService)
	svc.now = func() time.Time { return now }
	return svc, m, now
}

// ── notifier 测试 ──

func TestNotifier_Build_DedupesAndSkipsSender(t *testing.T) {
	m := newMockRepos()
	n := testNotifier(m)

	list := n.build([]string{"u1", "u2", "u1", "", "sender"}, notice{Type: model.NotifySystem, Title: "t", SenderID: "sender"})
	if len(list) != 2 {
		t.Fatalf("期望 2 条（去重、跳过空值与发送者），实际 %d", len(list))
	}
	for _, item := range list {
		if item.Priority != model.PriorityMedium {
			t.Errorf("缺省优先级应为 medium，实际=%s", item.Priority)
		}
		if item.SenderID == nil || *item.SenderID != "sender" {
			t.Error("应记录发送者")
		}
	}
}

func TestNotifier_ToUsers_FailureIsSwallowed(t *testing.T) {
	m := newMockRepos()
	m.notifications.failBatch = errors.New("db down")
	n := testNotifier(m)

	if got := n.toUsers(context.Background(), []string{"u1"}, notice{Title: "t"}); got != 0 {
		t.Errorf("投递失败应返回 0，实际 %d", got)
	}
}

// ── NotificationService 测试 ──

func TestNotificationService_SendAndList(t *testing.T) {
	svc, m, _ := setupNotifications()

	sent, err := svc.Send(context.Background(), &dto.CreateNotificationRequest{
		RecipientIDs: []string{"user-a", "user-b"}, Title: "系统维护", Message: "今晚 22:00",
	}, adminCaller)
	if err != nil {
		t.Fatalf("Send 应成功: %v", err)
	}
	if sent != 2 {
		t.Errorf("期望投递 2 条，实际 %d", sent)
	}

	caller := Caller{UserID: "user-a", Role: model.RoleStudent}
	if _, _, err := svc.List(context.Background(), newListQuery(), caller); err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if !hasFilter(m.notifications.lastQuery, "recipient_id", "user-a") {
		t.Error("列表应限定为本人通知")
	}
}

func TestNotificationService_GetByID_OtherUserHidden(t *testing.T) {
	svc, m, now := setupNotifications()
	m.notifications.put(&model.Notification{NotificationID: "ntf-x", RecipientID: "user-a", Title: "t", ExpiresAt: now.Add(time.Hour)})

	_, err := svc.GetByID(context.Background(), "ntf-x", Caller{UserID: "user-b", Role: model.RoleStudent})
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("他人的通知应按不存在处理，实际: %v", err)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, m, now := setupNotifications()
	m.notifications.put(&model.Notification{NotificationID: "ntf-1", RecipientID: "user-a", Title: "t", ExpiresAt: now.Add(time.Hour)})
	caller := Caller{UserID: "user-a", Role: model.RoleStudent}

	n, err := svc.MarkRead(context.Background(), "ntf-1", caller)
	if err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if !n.IsRead || n.ReadAt == nil || !n.ReadAt.Equal(now) {
		t.Errorf("期望已读且 read_at=%v，实际: %+v", now, n)
	}

	_, err = svc.MarkRead(context.Background(), "ntf-1", Caller{UserID: "user-b", Role: model.RoleStudent})
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("标记他人通知期望 ErrNotificationNotFound，实际: %v", err)
	}
}

func TestNotificationService_MarkAllReadAndUnread(t *testing.T) {
	svc, m, now := setupNotifications()
	for i := 0; i < 3; i++ {
		m.notifications.put(&model.Notification{RecipientID: "user-a", Title: "t", ExpiresAt: now.Add(time.Hour)})
	}
	m.notifications.put(&model.Notification{RecipientID: "user-b", Title: "t", ExpiresAt: now.Add(time.Hour)})
	caller := Caller{UserID: "user-a", Role: model.RoleStudent}

	if unread, _ := svc.UnreadCount(context.Background(), caller); unread != 3 {
		t.Errorf("期望 3 条未读，实际 %d", unread)
	}
	updated, err := svc.MarkAllRead(context.Background(), caller)
	if err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	if updated != 3 {
		t.Errorf("期望更新 3 条，实际 %d", updated)
	}
	if unread, _ := svc.UnreadCount(context.Background(), Caller{UserID: "user-b"}); unread != 1 {
		t.Errorf("他人的未读数不应受影响，实际 %d", unread)
	}
}

func TestNotificationService_Delete(t *testing.T) {
	svc, m, now := setupNotifications()
	m.notifications.put(&model.Notification{NotificationID: "ntf-1", RecipientID: "user-a", Title: "t", ExpiresAt: now.Add(time.Hour)})

	err := svc.Delete(context.Background(), "ntf-1", Caller{UserID: "user-b"})
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("删除他人通知期望 ErrNotificationNotFound，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), "ntf-1", Caller{UserID: "user-a"}); err != nil {
		t.Fatalf("删除本人通知应成功: %v", err)
	}
	if m.notifications.count() != 0 {
		t.Error("通知应已删除")
	}
}

func TestNotificationService_PurgeExpired(t *testing.T) {
	svc, m, now := setupNotifications()
	m.notifications.put(&model.Notification{RecipientID: "user-a", Title: "old", ExpiresAt: now.Add(-time.Minute)})
	m.notifications.put(&model.Notification{RecipientID: "user-a", Title: "new", ExpiresAt: now.Add(time.Hour)})

	n, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired 应成功: %v", err)
	}
	if n != 1 || m.notifications.count() != 1 {
		t.Errorf("期望清理 1 条、剩余 1 条，实际清理 %d 剩余 %d", n, m.notifications.count())
	}
}
