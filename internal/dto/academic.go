package dto

import "time"

// ── Faculty ──

// CreateFacultyRequest 创建学院
type CreateFacultyRequest struct {
	Name            string `json:"name"             binding:"required,min=2,max=100"`
	Code            string `json:"code"             binding:"required,alphanum,max=20"`
	Dean            string `json:"dean"             binding:"omitempty,max=100"`
	Description     string `json:"description"`
	EstablishedYear int    `json:"established_year" binding:"omitempty,min=1800,max=2100"`
}

// UpdateFacultyRequest 更新学院（部分更新）
type UpdateFacultyRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	Code            *string `json:"code"             binding:"omitempty,alphanum,max=20"`
	Dean            *string `json:"dean"             binding:"omitempty,max=100"`
	Description     *string `json:"description"`
	EstablishedYear *int    `json:"established_year" binding:"omitempty,min=1800,max=2100"`
}

// ── Department ──

// CreateDepartmentRequest 创建系
type CreateDepartmentRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Code        string `json:"code"        binding:"required,alphanum,max=20"`
	FacultyID   string `json:"faculty_id"  binding:"required,uuid"`
	Head        string `json:"head"        binding:"omitempty,max=100"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest 更新系
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Code        *string `json:"code"        binding:"omitempty,alphanum,max=20"`
	FacultyID   *string `json:"faculty_id"  binding:"omitempty,uuid"`
	Head        *string `json:"head"        binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ── Course ──

// CreateCourseRequest 创建课程
type CreateCourseRequest struct {
	Code         string `json:"code"          binding:"required,max=20"`
	Title        string `json:"title"         binding:"required,max=200"`
	Description  string `json:"description"`
	Credits      int    `json:"credits"       binding:"required,min=1,max=20"`
	Level        int    `json:"level"         binding:"omitempty,min=100,max=900"`
	Category     string `json:"category"      binding:"omitempty,oneof=core elective lab seminar"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
}

// UpdateCourseRequest 更新课程
type UpdateCourseRequest struct {
	Code         *string `json:"code"          binding:"omitempty,max=20"`
	Title        *string `json:"title"         binding:"omitempty,max=200"`
	Description  *string `json:"description"`
	Credits      *int    `json:"credits"       binding:"omitempty,min=1,max=20"`
	Level        *int    `json:"level"         binding:"omitempty,min=100,max=900"`
	Category     *string `json:"category"      binding:"omitempty,oneof=core elective lab seminar"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	IsActive     *bool   `json:"is_active"`
}

// ── CourseOffering ──

// CreateOfferingRequest 创建开课
type CreateOfferingRequest struct {
	CourseID  string `json:"course_id"  binding:"required,uuid"`
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
	Semester  string `json:"semester"   binding:"required,oneof=fall spring summer"`
	Year      int    `json:"year"       binding:"required,min=2000,max=2100"`
	Capacity  int    `json:"capacity"   binding:"omitempty,min=0,max=1000"`
	Schedule  string `json:"schedule"   binding:"omitempty,max=100"`
	Room      string `json:"room"       binding:"omitempty,max=50"`
}

// UpdateOfferingRequest 更新开课
type UpdateOfferingRequest struct {
	CourseID  *string `json:"course_id"  binding:"omitempty,uuid"`
	TeacherID *string `json:"teacher_id" binding:"omitempty,uuid"`
	Semester  *string `json:"semester"   binding:"omitempty,oneof=fall spring summer"`
	Year      *int    `json:"year"       binding:"omitempty,min=2000,max=2100"`
	Capacity  *int    `json:"capacity"   binding:"omitempty,min=0,max=1000"`
	Schedule  *string `json:"schedule"   binding:"omitempty,max=100"`
	Room      *string `json:"room"       binding:"omitempty,max=50"`
}

// ── Enrollment ──

// CreateEnrollmentRequest 选课；学生本人选课时 student_id 可省略
type CreateEnrollmentRequest struct {
	StudentID  string `json:"student_id"  binding:"omitempty,uuid"`
	OfferingID string `json:"offering_id" binding:"required,uuid"`
}

// UpdateEnrollmentRequest 更新选课状态或成绩
type UpdateEnrollmentRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=enrolled dropped completed"`
	Grade  *string `json:"grade"  binding:"omitempty,max=5"`
}

// ── Event 时间范围 ──

// CalendarRequest iCalendar 订阅的时间窗口
type CalendarRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to"   time_format:"2006-01-02"`
}
