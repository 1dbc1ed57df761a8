package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/response"
)

// NotificationHandler 站内通知 HTTP 处理器
// 除管理员发送外，所有操作都只作用于当前用户自己的通知
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list(c, repository.NotificationList, "notifications", func(ctx context.Context, q *query.ListQuery) ([]model.Notification, int64, error) {
		return h.notificationSvc.List(ctx, q, caller)
	})
}

// Get GET /api/v1/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	getOne(c, func(ctx context.Context, id string) (*model.Notification, error) {
		return h.notificationSvc.GetByID(ctx, id, caller)
	})
}

// Send 管理员发送系统通知
// POST /api/v1/notifications
func (h *NotificationHandler) Send(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	sent, err := h.notificationSvc.Send(c.Request.Context(), &req, caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, gin.H{"sent": sent})
}

// UnreadCount GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.UnreadCount(c.Request.Context(), caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, gin.H{"unread": n})
}

// MarkRead PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	getOne(c, func(ctx context.Context, id string) (*model.Notification, error) {
		return h.notificationSvc.MarkRead(ctx, id, caller)
	})
}

// MarkAllRead PATCH /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, dto.MarkAllReadResponse{Updated: n})
}

// Delete DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	ownedDelete(c, h.notificationSvc.Delete)
}
