package dto

import "time"

// ── Announcement ──

// CreateAnnouncementRequest 发布公告
type CreateAnnouncementRequest struct {
	Title       string     `json:"title"        binding:"required,max=200"`
	Content     string     `json:"content"      binding:"required"`
	Category    string     `json:"category"     binding:"omitempty,max=50"`
	Audience    string     `json:"audience"     binding:"omitempty,oneof=all students faculty committee"`
	Priority    string     `json:"priority"     binding:"omitempty,oneof=low medium high urgent"`
	PublishedAt *time.Time `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"   binding:"omitempty,gtfield=PublishedAt"`
	Notify      bool       `json:"notify"` // 为 true 时向目标受众推送通知
}

// UpdateAnnouncementRequest 更新公告
type UpdateAnnouncementRequest struct {
	Title     *string    `json:"title"      binding:"omitempty,max=200"`
	Content   *string    `json:"content"`
	Category  *string    `json:"category"   binding:"omitempty,max=50"`
	Audience  *string    `json:"audience"   binding:"omitempty,oneof=all students faculty committee"`
	Priority  *string    `json:"priority"   binding:"omitempty,oneof=low medium high urgent"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ── News ──

// CreateNewsRequest 发布新闻
type CreateNewsRequest struct {
	Title       string     `json:"title"        binding:"required,max=200"`
	Summary     string     `json:"summary"      binding:"omitempty,max=500"`
	Content     string     `json:"content"      binding:"required"`
	Category    string     `json:"category"     binding:"omitempty,max=50"`
	ImageURL    string     `json:"image_url"    binding:"omitempty,url,max=500"`
	PublishedAt *time.Time `json:"published_at"`
}

// UpdateNewsRequest 更新新闻
type UpdateNewsRequest struct {
	Title    *string `json:"title"     binding:"omitempty,max=200"`
	Summary  *string `json:"summary"   binding:"omitempty,max=500"`
	Content  *string `json:"content"`
	Category *string `json:"category"  binding:"omitempty,max=50"`
	ImageURL *string `json:"image_url" binding:"omitempty,url,max=500"`
}

// ── Event ──

// CreateEventRequest 创建活动
type CreateEventRequest struct {
	Title        string    `json:"title"         binding:"required,max=200"`
	Description  string    `json:"description"`
	Category     string    `json:"category"      binding:"omitempty,max=50"`
	Location     string    `json:"location"      binding:"omitempty,max=200"`
	StartAt      time.Time `json:"start_at"      binding:"required"`
	EndAt        time.Time `json:"end_at"        binding:"required,gtefield=StartAt"`
	DepartmentID *string   `json:"department_id" binding:"omitempty,uuid"`
}

// UpdateEventRequest 更新活动
type UpdateEventRequest struct {
	Title        *string    `json:"title"         binding:"omitempty,max=200"`
	Description  *string    `json:"description"`
	Category     *string    `json:"category"      binding:"omitempty,max=50"`
	Location     *string    `json:"location"      binding:"omitempty,max=200"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	DepartmentID *string    `json:"department_id" binding:"omitempty,uuid"`
}

// ── Resource ──

// CreateResourceRequest 上传教学资料（multipart 表单，file 字段必填）
type CreateResourceRequest struct {
	Title        string  `form:"title"         binding:"required,max=200"`
	Description  string  `form:"description"`
	Category     string  `form:"category"      binding:"omitempty,max=50"`
	DepartmentID *string `form:"department_id" binding:"omitempty,uuid"`
}

// UpdateResourceRequest 更新资料元信息
type UpdateResourceRequest struct {
	Title        *string `json:"title"         binding:"omitempty,max=200"`
	Description  *string `json:"description"`
	Category     *string `json:"category"      binding:"omitempty,max=50"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// ── Feedback ──

// CreateFeedbackRequest 提交质量反馈
type CreateFeedbackRequest struct {
	Category string  `json:"category"  binding:"required,oneof=course teaching facility service other"`
	Subject  string  `json:"subject"   binding:"required,max=200"`
	Message  string  `json:"message"   binding:"required,min=10"`
	Rating   *int    `json:"rating"    binding:"omitempty,min=1,max=5"`
	CourseID *string `json:"course_id" binding:"omitempty,uuid"`
}

// UpdateFeedbackRequest 管理员处理反馈
type UpdateFeedbackRequest struct {
	Status   *string `json:"status"   binding:"omitempty,oneof=open in_review resolved closed"`
	Response *string `json:"response" binding:"omitempty,max=5000"`
}

// ── Notification ──

// CreateNotificationRequest 管理员发送系统通知
type CreateNotificationRequest struct {
	RecipientIDs []string `json:"recipient_ids" binding:"required,min=1,max=500,dive,uuid"`
	Title        string   `json:"title"         binding:"required,max=200"`
	Message      string   `json:"message"       binding:"required"`
	Priority     string   `json:"priority"      binding:"omitempty,oneof=low medium high urgent"`
}
