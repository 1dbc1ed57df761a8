package model

import "time"

// 研究状态：pending → accepted | rejected（终态）
const (
	ResearchPending  = "pending"
	ResearchAccepted = "accepted"
	ResearchRejected = "rejected"
)

// Research 研究提交表 — 对应 research
type Research struct {
	ResearchID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"research_id"`
	Title            string      `gorm:"type:varchar(300);not null"                     json:"title"`
	Abstract         string      `gorm:"type:text;not null"                             json:"abstract"`
	Category         string      `gorm:"type:varchar(50)"                               json:"category,omitempty"`
	FileURL          string      `gorm:"type:varchar(500)"                              json:"file_url,omitempty"`
	Status           string      `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Authors          StringArray `gorm:"type:text[]"                                    json:"authors"`
	StudentID        string      `gorm:"type:uuid;not null"                             json:"student_id"`
	SubmittedBy      string      `gorm:"type:uuid;not null"                             json:"submitted_by"`
	DepartmentID     string      `gorm:"type:uuid;not null"                             json:"department_id"`
	ReviewerID       *string     `gorm:"type:uuid"                                      json:"reviewer_id"`
	ReviewerComments string      `gorm:"type:text"                                      json:"reviewer_comments,omitempty"`
	ReviewDate       *time.Time  `                                                      json:"review_date,omitempty"`
	VersionedModel

	// 关联
	Student    *Student         `gorm:"foreignKey:StudentID;references:StudentID"              json:"student,omitempty"`
	Department *Department      `gorm:"foreignKey:DepartmentID;references:DepartmentID"        json:"department,omitempty"`
	Reviewer   *CommitteeMember `gorm:"foreignKey:ReviewerID;references:CommitteeMemberID"     json:"reviewer,omitempty"`
}

// TableName 指定表名
func (Research) TableName() string { return "research" }

// IsTerminal 已评审的研究不可再次评审
func (r *Research) IsTerminal() bool {
	return r.Status == ResearchAccepted || r.Status == ResearchRejected
}
