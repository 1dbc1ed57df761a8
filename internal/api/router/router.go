package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"

	"faculty-portal/config"
	"faculty-portal/internal/api/handler"
	"faculty-portal/internal/api/middleware"
	"faculty-portal/internal/model"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/rbac"
	"faculty-portal/pkg/redis"
	"faculty-portal/pkg/response"
)

// Deps 路由层依赖
type Deps struct {
	Config     *config.Config
	Handler    *handler.Handler
	JWT        *jwt.Manager
	Redis      *redis.Client // 可为 nil：黑名单与限流降级
	Users      middleware.UserLookup
	Policy     *rbac.Policy
	Translator ut.Translator
	UploadDir  string
	Ping       func(ctx context.Context) error
	Logger     *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	cfg := d.Config
	h := d.Handler

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.SecurityHeaders(cfg.Upload.PublicPrefix))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB << 20))
	r.Use(middleware.ErrorHandler(d.Translator, d.Logger))

	// 接口直接依赖的是接口类型，nil 指针需显式转为 nil 接口
	var blacklist middleware.Blacklist
	var limiter middleware.RateLimiter
	if d.Redis != nil {
		blacklist = d.Redis
		limiter = d.Redis
	}

	auth := middleware.JWTAuth(d.JWT, blacklist, d.Users, d.Logger)
	limit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, d.Logger)
	can := func(perm string) gin.HandlerFunc { return middleware.RequirePermission(d.Policy, perm) }
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.Ping(ctx); err != nil {
			d.Logger.Warn("健康检查失败", zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, 50300, "数据库不可用")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	// ── 上传文件 ──
	if d.UploadDir != "" && cfg.Upload.PublicPrefix != "" {
		r.Static(cfg.Upload.PublicPrefix, d.UploadDir)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，按 IP 限流）
		public := v1.Group("/auth", limit)
		{
			public.POST("/register", h.Auth.Register)
			public.POST("/login", h.Auth.Login)
			public.POST("/refresh", h.Auth.RefreshToken)
			public.POST("/forgot-password", h.Auth.ForgotPassword)
			public.POST("/reset-password", h.Auth.ResetPassword)
		}

		// 日历订阅客户端无法携带 Bearer Token，活动本身是公开信息
		v1.GET("/events/calendar.ics", h.Event.Calendar)

		// 需要认证的路由
		authorized := v1.Group("", auth)
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 学院 / 系 / 课程 / 开课
			faculties := authorized.Group("/faculties")
			{
				faculties.GET("", h.Faculty.List)
				faculties.GET("/:id", h.Faculty.Get)
				faculties.POST("", can(rbac.PermAcademicWrite), h.Faculty.Create)
				faculties.PUT("/:id", can(rbac.PermAcademicWrite), h.Faculty.Update)
				faculties.DELETE("/:id", can(rbac.PermAcademicWrite), h.Faculty.Delete)
			}

			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.POST("", can(rbac.PermAcademicWrite), h.Department.Create)
				departments.PUT("/:id", can(rbac.PermAcademicWrite), h.Department.Update)
				departments.DELETE("/:id", can(rbac.PermAcademicWrite), h.Department.Delete)
			}

			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.GET("/:id", h.Course.Get)
				courses.POST("", can(rbac.PermAcademicWrite), h.Course.Create)
				courses.PUT("/:id", can(rbac.PermAcademicWrite), h.Course.Update)
				courses.DELETE("/:id", can(rbac.PermAcademicWrite), h.Course.Delete)
			}

			offerings := authorized.Group("/course-offerings")
			{
				offerings.GET("", h.Offering.List)
				offerings.GET("/:id", h.Offering.Get)
				offerings.GET("/:id/roster", can(rbac.PermRosterExport), h.Offering.ExportRoster)
				offerings.POST("", can(rbac.PermAcademicWrite), h.Offering.Create)
				offerings.PUT("/:id", can(rbac.PermAcademicWrite), h.Offering.Update)
				offerings.DELETE("/:id", can(rbac.PermAcademicWrite), h.Offering.Delete)
			}

			// 人员：教师 / 学生 / 评审委员
			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.List)
				teachers.GET("/:id", h.Teacher.Get)
				teachers.POST("", can(rbac.PermPeopleWrite), h.Teacher.Create)
				teachers.PUT("/:id", can(rbac.PermPeopleWrite), h.Teacher.Update)
				teachers.DELETE("/:id", can(rbac.PermPeopleWrite), h.Teacher.Delete)
			}

			students := authorized.Group("/students", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty, model.RoleCommittee))
			{
				students.GET("", h.Student.List)
				students.GET("/:id", h.Student.Get)
				students.POST("", can(rbac.PermPeopleWrite), h.Student.Create)
				students.POST("/import", can(rbac.PermStudentsImport), h.Student.Import)
				students.PUT("/:id", can(rbac.PermPeopleWrite), h.Student.Update)
				students.DELETE("/:id", can(rbac.PermPeopleWrite), h.Student.Delete)
			}

			committee := authorized.Group("/committee-members")
			{
				committee.GET("", h.Committee.List)
				committee.GET("/:id", h.Committee.Get)
				committee.POST("", can(rbac.PermCommitteeManage), h.Committee.Create)
				committee.PUT("/:id", can(rbac.PermCommitteeManage), h.Committee.Update)
				committee.DELETE("/:id", can(rbac.PermCommitteeManage), h.Committee.Delete)
			}

			// 选课（学生的可见范围由 Service 层收窄）
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("", h.Enrollment.List)
				enrollments.GET("/:id", h.Enrollment.Get)
				enrollments.POST("", can(rbac.PermEnrollmentWrite), h.Enrollment.Create)
				enrollments.PUT("/:id", can(rbac.PermEnrollmentWrite), h.Enrollment.Update)
				enrollments.DELETE("/:id", adminOnly, h.Enrollment.Delete)
			}

			// 研究提交与评审
			research := authorized.Group("/research")
			{
				research.GET("", h.Research.List)
				research.GET("/:id", h.Research.Get)
				research.POST("", can(rbac.PermResearchSubmit), h.Research.Create)
				research.PUT("/:id", h.Research.Update) // 提交人或管理员（Service 层鉴权）
				research.DELETE("/:id", h.Research.Delete)
				research.PATCH("/:id/review", can(rbac.PermResearchReview), h.Research.Review)
			}

			// 内容：公告 / 新闻 / 活动 / 资料（修改与删除限作者或管理员）
			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.List)
				announcements.GET("/:id", h.Announcement.Get)
				announcements.POST("", can(rbac.PermContentWrite), h.Announcement.Create)
				announcements.PUT("/:id", can(rbac.PermContentWrite), h.Announcement.Update)
				announcements.DELETE("/:id", can(rbac.PermContentWrite), h.Announcement.Delete)
			}

			news := authorized.Group("/news")
			{
				news.GET("", h.News.List)
				news.GET("/:id", h.News.Get)
				news.POST("", can(rbac.PermContentWrite), h.News.Create)
				news.PUT("/:id", can(rbac.PermContentWrite), h.News.Update)
				news.DELETE("/:id", can(rbac.PermContentWrite), h.News.Delete)
			}

			events := authorized.Group("/events")
			{
				events.GET("", h.Event.List)
				events.GET("/:id", h.Event.Get)
				events.POST("", can(rbac.PermContentWrite), h.Event.Create)
				events.PUT("/:id", can(rbac.PermContentWrite), h.Event.Update)
				events.DELETE("/:id", can(rbac.PermContentWrite), h.Event.Delete)
			}

			resources := authorized.Group("/resources")
			{
				resources.GET("", h.Resource.List)
				resources.GET("/:id", h.Resource.Get)
				resources.POST("", can(rbac.PermContentWrite), h.Resource.Create)
				resources.PUT("/:id", can(rbac.PermContentWrite), h.Resource.Update)
				resources.DELETE("/:id", can(rbac.PermContentWrite), h.Resource.Delete)
			}

			// 站内通知
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PATCH("/read-all", h.Notification.MarkAllRead)
				notifications.POST("", adminOnly, h.Notification.Send)
				notifications.GET("/:id", h.Notification.Get)
				notifications.PATCH("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}

			// 教学质量反馈
			feedback := authorized.Group("/feedback")
			{
				feedback.GET("", h.Feedback.List)
				feedback.GET("/:id", h.Feedback.Get)
				feedback.POST("", can(rbac.PermFeedbackSubmit), h.Feedback.Create)
				feedback.PUT("/:id", can(rbac.PermFeedbackManage), h.Feedback.Update)
				feedback.DELETE("/:id", can(rbac.PermFeedbackManage), h.Feedback.Delete)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, 10004, "接口不存在")
	})

	return r
}
