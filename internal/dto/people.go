package dto

import "time"

// ── Teacher ──

// CreateTeacherRequest 创建教师
type CreateTeacherRequest struct {
	UserID         *string    `json:"user_id"        binding:"omitempty,uuid"`
	Name           string     `json:"name"           binding:"required,min=2,max=100"`
	Email          string     `json:"email"          binding:"required,email"`
	Title          string     `json:"title"          binding:"omitempty,oneof=lecturer assistant_professor associate_professor professor"`
	Specialization string     `json:"specialization" binding:"omitempty,max=200"`
	Phone          string     `json:"phone"          binding:"omitempty,max=30"`
	DepartmentID   string     `json:"department_id"  binding:"required,uuid"`
	HiredAt        *time.Time `json:"hired_at"`
}

// UpdateTeacherRequest 更新教师
type UpdateTeacherRequest struct {
	Name           *string    `json:"name"           binding:"omitempty,min=2,max=100"`
	Email          *string    `json:"email"          binding:"omitempty,email"`
	Title          *string    `json:"title"          binding:"omitempty,oneof=lecturer assistant_professor associate_professor professor"`
	Specialization *string    `json:"specialization" binding:"omitempty,max=200"`
	Phone          *string    `json:"phone"          binding:"omitempty,max=30"`
	DepartmentID   *string    `json:"department_id"  binding:"omitempty,uuid"`
	HiredAt        *time.Time `json:"hired_at"`
}

// ── Student ──

// CreateStudentRequest 创建学生
type CreateStudentRequest struct {
	UserID        *string  `json:"user_id"        binding:"omitempty,uuid"`
	StudentNumber string   `json:"student_number" binding:"required,max=30"`
	Name          string   `json:"name"           binding:"required,min=2,max=100"`
	Email         string   `json:"email"          binding:"required,email"`
	DepartmentID  string   `json:"department_id"  binding:"required,uuid"`
	YearOfStudy   int      `json:"year_of_study"  binding:"omitempty,min=1,max=10"`
	GPA           *float64 `json:"gpa"            binding:"omitempty,min=0,max=4"`
	Status        string   `json:"status"         binding:"omitempty,oneof=active graduated suspended"`
}

// UpdateStudentRequest 更新学生
type UpdateStudentRequest struct {
	StudentNumber *string  `json:"student_number" binding:"omitempty,max=30"`
	Name          *string  `json:"name"           binding:"omitempty,min=2,max=100"`
	Email         *string  `json:"email"          binding:"omitempty,email"`
	DepartmentID  *string  `json:"department_id"  binding:"omitempty,uuid"`
	YearOfStudy   *int     `json:"year_of_study"  binding:"omitempty,min=1,max=10"`
	GPA           *float64 `json:"gpa"            binding:"omitempty,min=0,max=4"`
	Status        *string  `json:"status"         binding:"omitempty,oneof=active graduated suspended"`
}

// ── CommitteeMember ──

// CreateCommitteeMemberRequest 任命评审委员
type CreateCommitteeMemberRequest struct {
	UserID       string `json:"user_id"       binding:"required,uuid"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Position     string `json:"position"      binding:"omitempty,oneof=chair member secretary"`
}

// UpdateCommitteeMemberRequest 更新评审委员
type UpdateCommitteeMemberRequest struct {
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	Position     *string `json:"position"      binding:"omitempty,oneof=chair member secretary"`
}
