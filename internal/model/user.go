package model

import "time"

// 角色
const (
	RoleAdmin     = "admin"
	RoleFaculty   = "faculty"
	RoleStudent   = "student"
	RoleCommittee = "committee"
)

// User 用户表 — 对应 users
type User struct {
	UserID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name                string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email               string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash        string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role                string     `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	DepartmentID        *string    `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	IsActive            bool       `gorm:"not null;default:true"                          json:"is_active"`
	PasswordChangedAt   *time.Time `                                                      json:"-"`
	PasswordResetToken  *string    `gorm:"type:varchar(64)"                               json:"-"`
	PasswordResetExpiry *time.Time `                                                      json:"-"`
	LastLoginAt         *time.Time `                                                      json:"last_login_at,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
