package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Title        string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string `gorm:"type:text"                                      json:"description,omitempty"`
	Credits      int    `gorm:"not null"                                       json:"credits"`
	Level        int    `gorm:"not null;default:100"                           json:"level"`
	Category     string `gorm:"type:varchar(20);not null;default:'core'"       json:"category"` // core | elective | lab | seminar
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseOffering 开课表 — 对应 course_offerings
// (course_id, teacher_id, semester, year) 唯一
type CourseOffering struct {
	OfferingID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"offering_id"`
	CourseID   string `gorm:"type:uuid;not null"                             json:"course_id"`
	TeacherID  string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Semester   string `gorm:"type:varchar(10);not null"                      json:"semester"` // fall | spring | summer
	Year       int    `gorm:"not null"                                       json:"year"`
	Capacity   int    `gorm:"not null;default:0"                             json:"capacity"` // 0 表示不限
	Schedule   string `gorm:"type:varchar(100)"                              json:"schedule,omitempty"`
	Room       string `gorm:"type:varchar(50)"                               json:"room,omitempty"`
	BaseModel

	// 关联
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (CourseOffering) TableName() string { return "course_offerings" }

// Enrollment 选课表 — 对应 enrollments，(student_id, offering_id) 唯一
type Enrollment struct {
	EnrollmentID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string  `gorm:"type:uuid;not null"                             json:"student_id"`
	OfferingID   string  `gorm:"type:uuid;not null"                             json:"offering_id"`
	Status       string  `gorm:"type:varchar(20);not null;default:'enrolled'"   json:"status"` // enrolled | dropped | completed
	Grade        *string `gorm:"type:varchar(5)"                                json:"grade,omitempty"`
	BaseModel

	// 关联
	Student  *Student        `gorm:"foreignKey:StudentID;references:StudentID"   json:"student,omitempty"`
	Offering *CourseOffering `gorm:"foreignKey:OfferingID;references:OfferingID" json:"offering,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// 选课状态
const (
	EnrollmentEnrolled  = "enrolled"
	EnrollmentDropped   = "dropped"
	EnrollmentCompleted = "completed"
)
