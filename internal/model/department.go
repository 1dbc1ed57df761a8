package model

// Department 系表 — 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	FacultyID    string `gorm:"type:uuid;not null"                             json:"faculty_id"`
	Head         string `gorm:"type:varchar(100)"                              json:"head,omitempty"`
	Description  string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
