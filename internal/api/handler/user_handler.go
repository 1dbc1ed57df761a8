package handler

import (
	"github.com/gin-gonic/gin"

	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
)

// UserHandler 用户管理 HTTP 处理器（仅管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	list(c, repository.UserList, "users", h.userSvc.List)
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	getOne(c, h.userSvc.GetByID)
}

// CreateUser 创建用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	create(c, h.userSvc.Create)
}

// UpdateUser 更新用户（角色、所属系、启用状态）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	update(c, h.userSvc.Update)
}

// DeleteUser 删除用户（不能删除自己）
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ownedDelete(c, h.userSvc.Delete)
}
