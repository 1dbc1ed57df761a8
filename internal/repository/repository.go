package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Faculty      FacultyRepository
	Department   DepartmentRepository
	Course       CourseRepository
	Teacher      TeacherRepository
	Student      StudentRepository
	Offering     OfferingRepository
	Enrollment   EnrollmentRepository
	Committee    CommitteeRepository
	Research     ResearchRepository
	Announcement AnnouncementRepository
	News         NewsRepository
	Event        EventRepository
	Resource     ResourceRepository
	Notification NotificationRepository
	Feedback     FeedbackRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Faculty:      NewFacultyRepo(db),
		Department:   NewDepartmentRepo(db),
		Course:       NewCourseRepo(db),
		Teacher:      NewTeacherRepo(db),
		Student:      NewStudentRepo(db),
		Offering:     NewOfferingRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Committee:    NewCommitteeRepo(db),
		Research:     NewResearchRepo(db),
		Announcement: NewAnnouncementRepo(db),
		News:         NewNewsRepo(db),
		Event:        NewEventRepo(db),
		Resource:     NewResourceRepo(db),
		Notification: NewNotificationRepo(db),
		Feedback:     NewFeedbackRepo(db),
	}
}

// Transaction 在同一数据库事务内执行 fn；fn 返回错误时整体回滚
// 未绑定数据库（单元测试中手工组装的聚合）时直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Ping 数据库健康检查
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
