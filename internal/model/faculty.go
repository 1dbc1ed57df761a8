package model

// Faculty 学院表 — 对应 faculties
type Faculty struct {
	FacultyID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"faculty_id"`
	Name            string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code            string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Dean            string `gorm:"type:varchar(100)"                              json:"dean,omitempty"`
	Description     string `gorm:"type:text"                                      json:"description,omitempty"`
	EstablishedYear int    `                                                      json:"established_year,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Faculty) TableName() string { return "faculties" }
