package handler

import (
	"github.com/gin-gonic/gin"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 学生自助注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token（旧 refresh token 随即失效）
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		return
	}

	// 请求体可省略
	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		fail(c, err)
		return
	}

	response.OKWithMessage(c, "已退出登录", nil)
}

// GetCurrentUser 当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改密码，返回新的 Token 对（旧 Token 全部失效）
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.ChangePassword(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.OKWithMessage(c, "密码已修改", result)
}

// ForgotPassword 发送密码重置邮件
// 邮箱是否注册都返回同样的结果，不暴露账号是否存在
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), &req); err != nil {
		fail(c, err)
		return
	}

	response.OKWithMessage(c, "如果该邮箱已注册，重置链接已发送", nil)
}

// ResetPassword 使用邮件中的令牌重置密码
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), &req); err != nil {
		fail(c, err)
		return
	}

	response.OKWithMessage(c, "密码已重置，请重新登录", nil)
}
