package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/query"
)

// FeedbackHandler 教学质量反馈 HTTP 处理器
type FeedbackHandler struct {
	feedbackSvc service.FeedbackService
}

// NewFeedbackHandler 创建 FeedbackHandler
func NewFeedbackHandler(feedbackSvc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// List 普通用户只看到自己提交的反馈
// GET /api/v1/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list(c, repository.FeedbackList, "feedback", func(ctx context.Context, q *query.ListQuery) ([]model.Feedback, int64, error) {
		return h.feedbackSvc.List(ctx, q, caller)
	})
}

// Get GET /api/v1/feedback/:id
func (h *FeedbackHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	getOne(c, func(ctx context.Context, id string) (*model.Feedback, error) {
		return h.feedbackSvc.GetByID(ctx, id, caller)
	})
}

// Create POST /api/v1/feedback
func (h *FeedbackHandler) Create(c *gin.Context) { create(c, h.feedbackSvc.Create) }

// Update 处理反馈（状态 / 回复）
// PUT /api/v1/feedback/:id
func (h *FeedbackHandler) Update(c *gin.Context) { update(c, h.feedbackSvc.Update) }

// Delete DELETE /api/v1/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) { deleteOne(c, h.feedbackSvc.Delete) }
