package model

import "time"

// Teacher 教师表 — 对应 teachers
type Teacher struct {
	TeacherID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	UserID         *string    `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Name           string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Title          string     `gorm:"type:varchar(50)"                               json:"title,omitempty"` // lecturer | associate_professor | professor ...
	Specialization string     `gorm:"type:varchar(200)"                              json:"specialization,omitempty"`
	Phone          string     `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	DepartmentID   string     `gorm:"type:uuid;not null"                             json:"department_id"`
	HiredAt        *time.Time `                                                      json:"hired_at,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// Student 学生表 — 对应 students，student_number 唯一
type Student struct {
	StudentID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID        *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	StudentNumber string  `gorm:"type:varchar(30);not null;uniqueIndex"          json:"student_number"`
	Name          string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email         string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	DepartmentID  string  `gorm:"type:uuid;not null"                             json:"department_id"`
	YearOfStudy   int     `gorm:"not null;default:1"                             json:"year_of_study"`
	GPA           float64 `gorm:"column:gpa;not null;default:0"                  json:"gpa"`
	Status        string  `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | graduated | suspended
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// CommitteeMember 评审委员表 — 对应 committee_members，每个用户最多一条
type CommitteeMember struct {
	CommitteeMemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"committee_member_id"`
	UserID            string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	DepartmentID      string `gorm:"type:uuid;not null"                             json:"department_id"`
	Position          string `gorm:"type:varchar(50)"                               json:"position,omitempty"` // chair | member | secretary
	BaseModel

	// 关联
	User       *User       `gorm:"foreignKey:UserID;references:UserID"             json:"user,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (CommitteeMember) TableName() string { return "committee_members" }
