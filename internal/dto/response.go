package dto

import "time"

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	Permissions  []string            `json:"permissions,omitempty"`
	Department   *DepartmentResponse `json:"department,omitempty"`
	StudentID    string              `json:"student_id,omitempty"`
	CommitteeID  string              `json:"committee_member_id,omitempty"`
	LastLoginAt  *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UnreadNotify int64               `json:"unread_notifications"`
}

// DepartmentResponse 系简要信息
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ── 批量导入 ──

// ImportResponse 批量导入结果
type ImportResponse struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError 导入错误详情
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ── 通知 ──

// MarkAllReadResponse 全部已读结果
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
