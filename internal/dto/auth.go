package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest 学生自助注册请求
type RegisterRequest struct {
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	Email         string `json:"email"          binding:"required,email"`
	Password      string `json:"password"       binding:"required,min=8,max=64"`
	StudentNumber string `json:"student_number" binding:"required,max=30"`
	DepartmentID  string `json:"department_id"  binding:"required,uuid"`
	YearOfStudy   int    `json:"year_of_study"  binding:"omitempty,min=1,max=10"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求；携带 refresh_token 时一并吊销
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64,nefield=OldPassword"`
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 使用邮件令牌重置密码
type ResetPasswordRequest struct {
	Token       string `json:"token"        binding:"required,len=64,hexadecimal"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// CreateUserRequest 管理员创建用户（教师、委员、管理员账号）
type CreateUserRequest struct {
	Name         string  `json:"name"          binding:"required,min=2,max=100"`
	Email        string  `json:"email"         binding:"required,email"`
	Password     string  `json:"password"      binding:"required,min=8,max=64"`
	Role         string  `json:"role"          binding:"required,oneof=admin faculty student committee"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// UpdateUserRequest 管理员更新用户
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Role         *string `json:"role"          binding:"omitempty,oneof=admin faculty student committee"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	IsActive     *bool   `json:"is_active"`
}
