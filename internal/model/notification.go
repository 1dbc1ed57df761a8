package model

import "time"

// 通知类型（封闭枚举）
const (
	NotifyResearchSubmitted = "research_submitted"
	NotifyResearchAssigned  = "research_assigned"
	NotifyResearchReviewed  = "research_reviewed"
	NotifyFeedbackSubmitted = "feedback_submitted"
	NotifyAnnouncement      = "announcement"
	NotifyEnrollment        = "enrollment"
	NotifySystem            = "system"
)

// 通知优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	RecipientID    string     `gorm:"type:uuid;not null"                             json:"recipient_id"`
	SenderID       *string    `gorm:"type:uuid"                                      json:"sender_id,omitempty"`
	Type           string     `gorm:"type:varchar(30);not null"                      json:"type"`
	Priority       string     `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string     `gorm:"type:text;not null"                             json:"message"`
	RelatedType    *string    `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // research | feedback | announcement | enrollment
	RelatedID      *string    `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	IsRead         bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt         *time.Time `                                                      json:"read_at,omitempty"`
	ExpiresAt      time.Time  `gorm:"not null"                                       json:"expires_at"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
