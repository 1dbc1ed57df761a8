package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/config"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/mailer"
	"faculty-portal/pkg/rbac"
	"faculty-portal/pkg/storage"
)

// Caller 当前请求的调用者（由认证中间件注入）
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin 是否管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// TokenRevoker Token 吊销存储（Redis 实现）
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// FileStore 上传文件存储（本地磁盘实现）
type FileStore interface {
	Save(fh *multipart.FileHeader, category string) (*storage.StoredFile, error)
	Remove(url string) error
}

// Deps 构建 Service 聚合所需的基础设施
type Deps struct {
	Config  *config.Config
	Repo    *repository.Repository
	JWT     *jwt.Manager
	Revoker TokenRevoker
	Mail    *mailer.Dispatcher
	Files   FileStore
	Policy  *rbac.Policy
	Logger  *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Faculty      FacultyService
	Department   DepartmentService
	Course       CourseService
	Teacher      TeacherService
	Student      StudentService
	Offering     OfferingService
	Enrollment   EnrollmentService
	Committee    CommitteeService
	Research     ResearchService
	Announcement AnnouncementService
	News         NewsService
	Event        EventService
	Resource     ResourceService
	Notification NotificationService
	Feedback     FeedbackService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	notify := newNotifier(d.Repo, d.Config.Notification.TTL, d.Logger)
	return &Service{
		Auth:         NewAuthService(d.Config, d.Repo, d.JWT, d.Revoker, d.Mail, d.Policy, d.Logger),
		User:         NewUserService(d.Repo, d.Logger),
		Faculty:      NewFacultyService(d.Repo, d.Logger),
		Department:   NewDepartmentService(d.Repo, d.Logger),
		Course:       NewCourseService(d.Repo, d.Logger),
		Teacher:      NewTeacherService(d.Repo, d.Logger),
		Student:      NewStudentService(d.Repo, d.Logger),
		Offering:     NewOfferingService(d.Repo, d.Logger),
		Enrollment:   NewEnrollmentService(d.Repo, notify, d.Logger),
		Committee:    NewCommitteeService(d.Repo, d.Logger),
		Research:     NewResearchService(d.Repo, d.Files, d.Mail, notify, d.Policy, d.Logger),
		Announcement: NewAnnouncementService(d.Repo, notify, d.Logger),
		News:         NewNewsService(d.Repo, d.Logger),
		Event:        NewEventService(d.Repo, d.Config.Server.BaseURL, d.Logger),
		Resource:     NewResourceService(d.Repo, d.Files, d.Logger),
		Notification: NewNotificationService(d.Repo, notify, d.Logger),
		Feedback:     NewFeedbackService(d.Repo, notify, d.Policy, d.Logger),
	}
}

// ── 通用辅助 ──

// fetch 按 ID 加载实体；记录不存在时返回资源专属的 NotFound 错误
func fetch[T any](ctx context.Context, repo repository.CRUD[T], id string, notFound *apperrors.AppError) (*T, error) {
	entity, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return entity, nil
}

// ensureRef 校验外键引用的实体存在；不存在时返回 BadRequest 类错误
func ensureRef[T any](ctx context.Context, repo repository.CRUD[T], id string, missing *apperrors.AppError) error {
	_, err := fetch(ctx, repo, id, missing)
	return err
}

// remove 删除实体；记录不存在时返回资源专属的 NotFound 错误
func remove[T any](ctx context.Context, repo repository.CRUD[T], id string, notFound *apperrors.AppError) error {
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return err
	}
	return nil
}

// authorizeOwner 有作者概念的资源：仅作者本人或管理员可修改、删除
func authorizeOwner(o model.Owned, caller Caller) error {
	if caller.IsAdmin() || o.OwnerID() == caller.UserID {
		return nil
	}
	return ErrNotOwner
}

// ErrNotOwner 非作者且非管理员
var ErrNotOwner = apperrors.New(apperrors.KindForbidden, 20801, "仅作者本人或管理员可执行此操作")

// uploadError 把存储层错误翻译为业务错误
func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return ErrUploadTooLarge
	case errors.Is(err, storage.ErrFileTypeRejected):
		return ErrUploadType
	case errors.Is(err, storage.ErrEmptyFile):
		return ErrUploadEmpty
	}
	return err
}

var (
	ErrUploadTooLarge = apperrors.New(apperrors.KindBadRequest, 21101, "文件超过大小限制")
	ErrUploadType     = apperrors.New(apperrors.KindBadRequest, 21102, "不支持的文件类型")
	ErrUploadEmpty    = apperrors.New(apperrors.KindBadRequest, 21103, "上传文件为空")
	ErrUploadMissing  = apperrors.New(apperrors.KindBadRequest, 21104, "缺少上传文件")
)

func strPtr(s string) *string { return &s }
