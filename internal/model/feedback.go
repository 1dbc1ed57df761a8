package model

import "time"

// 反馈状态
const (
	FeedbackOpen     = "open"
	FeedbackInReview = "in_review"
	FeedbackResolved = "resolved"
	FeedbackClosed   = "closed"
)

// Feedback 质量保障反馈表 — 对应 qa_feedback
type Feedback struct {
	FeedbackID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"feedback_id"`
	SubmitterID string     `gorm:"type:uuid;not null"                             json:"submitter_id"`
	Category    string     `gorm:"type:varchar(20);not null"                      json:"category"` // course | teaching | facility | service | other
	Subject     string     `gorm:"type:varchar(200);not null"                     json:"subject"`
	Message     string     `gorm:"type:text;not null"                             json:"message"`
	Rating      *int       `                                                      json:"rating,omitempty"`
	CourseID    *string    `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	Response    string     `gorm:"type:text"                                      json:"response,omitempty"`
	RespondedBy *string    `gorm:"type:uuid"                                      json:"responded_by,omitempty"`
	RespondedAt *time.Time `                                                      json:"responded_at,omitempty"`
	BaseModel

	Submitter *User   `gorm:"foreignKey:SubmitterID;references:UserID" json:"submitter,omitempty"`
	Course    *Course `gorm:"foreignKey:CourseID;references:CourseID"  json:"course,omitempty"`
}

// TableName 指定表名
func (Feedback) TableName() string { return "qa_feedback" }
