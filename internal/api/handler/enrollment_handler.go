package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/query"
)

// EnrollmentHandler 选课 HTTP 处理器
// 学生只能看到、操作自己的选课记录（Service 层按调用者收窄）
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// List GET /api/v1/enrollments
func (h *EnrollmentHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list(c, repository.EnrollmentList, "enrollments", func(ctx context.Context, q *query.ListQuery) ([]model.Enrollment, int64, error) {
		return h.enrollmentSvc.List(ctx, q, caller)
	})
}

// Get GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	getOne(c, func(ctx context.Context, id string) (*model.Enrollment, error) {
		return h.enrollmentSvc.GetByID(ctx, id, caller)
	})
}

// Create 选课；容量已满或重复选课返回 409
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Create(c *gin.Context) { create(c, h.enrollmentSvc.Create) }

// Update 退选或登记成绩
// PUT /api/v1/enrollments/:id
func (h *EnrollmentHandler) Update(c *gin.Context) { update(c, h.enrollmentSvc.Update) }

// Delete DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) Delete(c *gin.Context) { deleteOne(c, h.enrollmentSvc.Delete) }
