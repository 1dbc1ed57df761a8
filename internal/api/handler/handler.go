package handler

import "faculty-portal/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Faculty      *FacultyHandler
	Department   *DepartmentHandler
	Course       *CourseHandler
	Teacher      *TeacherHandler
	Student      *StudentHandler
	Offering     *OfferingHandler
	Enrollment   *EnrollmentHandler
	Committee    *CommitteeHandler
	Research     *ResearchHandler
	Announcement *AnnouncementHandler
	News         *NewsHandler
	Event        *EventHandler
	Resource     *ResourceHandler
	Notification *NotificationHandler
	Feedback     *FeedbackHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Faculty:      NewFacultyHandler(svc.Faculty),
		Department:   NewDepartmentHandler(svc.Department),
		Course:       NewCourseHandler(svc.Course),
		Teacher:      NewTeacherHandler(svc.Teacher),
		Student:      NewStudentHandler(svc.Student),
		Offering:     NewOfferingHandler(svc.Offering, svc.Enrollment),
		Enrollment:   NewEnrollmentHandler(svc.Enrollment),
		Committee:    NewCommitteeHandler(svc.Committee),
		Research:     NewResearchHandler(svc.Research),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		News:         NewNewsHandler(svc.News),
		Event:        NewEventHandler(svc.Event),
		Resource:     NewResourceHandler(svc.Resource),
		Notification: NewNotificationHandler(svc.Notification),
		Feedback:     NewFeedbackHandler(svc.Feedback),
	}
}
