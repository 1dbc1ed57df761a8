package service

import (
	"context"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 内容模块业务错误 ──

var (
	ErrAnnouncementNotFound = apperrors.New(apperrors.KindNotFound, 20811, "公告不存在")
	ErrNewsNotFound         = apperrors.New(apperrors.KindNotFound, 20821, "新闻不存在")
	ErrResourceNotFound     = apperrors.New(apperrors.KindNotFound, 20841, "资料不存在")
)

// audienceRoles 公告受众 → 通知收件角色
var audienceRoles = map[string][]string{
	"all":       {model.RoleAdmin, model.RoleFaculty, model.RoleStudent, model.RoleCommittee},
	"students":  {model.RoleStudent},
	"faculty":   {model.RoleFaculty},
	"committee": {model.RoleCommittee},
}

// ════════════════════════ Announcement ════════════════════════

// AnnouncementService 公告业务接口
type AnnouncementService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Announcement, int64, error)
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	Create(ctx context.Context, req *dto.CreateAnnouncementRequest, caller Caller) (*model.Announcement, error)
	Update(ctx context.Context, id string, req *dto.UpdateAnnouncementRequest, caller Caller) (*model.Announcement, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type announcementService struct {
	repo   *repository.Repository
	notify *notifier
	logger *zap.Logger
}

// NewAnnouncementService 创建 AnnouncementService 实例
func NewAnnouncementService(repo *repository.Repository, notify *notifier, logger *zap.Logger) AnnouncementService {
	return &announcementService{repo: repo, notify: notify, logger: logger}
}

func (s *announcementService) List(ctx context.Context, q *query.ListQuery) ([]model.Announcement, int64, error) {
	return s.repo.Announcement.List(ctx, q)
}

func (s *announcementService) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	return fetch(ctx, s.repo.Announcement, id, ErrAnnouncementNotFound)
}

func (s *announcementService) Create(ctx context.Context, req *dto.CreateAnnouncementRequest, caller Caller) (*model.Announcement, error) {
	a := &model.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		Category:  orDefault(req.Category, "general"),
		Audience:  orDefault(req.Audience, "all"),
		Priority:  orDefault(req.Priority, model.PriorityMedium),
		AuthorID:  caller.UserID,
		ExpiresAt: req.ExpiresAt,
	}
	a.PublishedAt = time.Now()
	if req.PublishedAt != nil {
		a.PublishedAt = *req.PublishedAt
	}
	a.Stamp(caller.UserID)

	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("发布公告失败", zap.Error(err))
		return nil, err
	}

	if req.Notify {
		n := s.notify.toRoles(ctx, audienceRoles[a.Audience], notice{
			Type:        model.NotifyAnnouncement,
			Priority:    a.Priority,
			Title:       a.Title,
			Message:     truncate(a.Content, 200),
			SenderID:    caller.UserID,
			RelatedType: "announcement",
			RelatedID:   a.AnnouncementID,
		})
		s.logger.Info("公告通知已投递", zap.String("id", a.AnnouncementID), zap.Int("recipients", n))
	}
	return s.GetByID(ctx, a.AnnouncementID)
}

func (s *announcementService) Update(ctx context.Context, id string, req *dto.UpdateAnnouncementRequest, caller Caller) (*model.Announcement, error) {
	a, err := fetch(ctx, s.repo.Announcement, id, ErrAnnouncementNotFound)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(a, caller); err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.Audience != nil {
		a.Audience = *req.Audience
	}
	if req.Priority != nil {
		a.Priority = *req.Priority
	}
	if req.ExpiresAt != nil {
		a.ExpiresAt = req.ExpiresAt
	}
	a.Stamp(caller.UserID)

	if err := s.repo.Announcement.Update(ctx, a); err != nil {
		s.logger.Error("更新公告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *announcementService) Delete(ctx context.Context, id string, caller Caller) error {
	a, err := fetch(ctx, s.repo.Announcement, id, ErrAnnouncementNotFound)
	if err != nil {
		return err
	}
	if err := authorizeOwner(a, caller); err != nil {
		return err
	}
	return remove(ctx, s.repo.Announcement, id, ErrAnnouncementNotFound)
}

// ════════════════════════ News ════════════════════════

// NewsService 新闻业务接口
type NewsService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.News, int64, error)
	GetByID(ctx context.Context, id string) (*model.News, error)
	Create(ctx context.Context, req *dto.CreateNewsRequest, caller Caller) (*model.News, error)
	Update(ctx context.Context, id string, req *dto.UpdateNewsRequest, caller Caller) (*model.News, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type newsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNewsService 创建 NewsService 实例
func NewNewsService(repo *repository.Repository, logger *zap.Logger) NewsService {
	return &newsService{repo: repo, logger: logger}
}

func (s *newsService) List(ctx context.Context, q *query.ListQuery) ([]model.News, int64, error) {
	return s.repo.News.List(ctx, q)
}

func (s *newsService) GetByID(ctx context.Context, id string) (*model.News, error) {
	return fetch(ctx, s.repo.News, id, ErrNewsNotFound)
}

func (s *newsService) Create(ctx context.Context, req *dto.CreateNewsRequest, caller Caller) (*model.News, error) {
	n := &model.News{
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		Category: orDefault(req.Category, "general"),
		ImageURL: req.ImageURL,
		AuthorID: caller.UserID,
	}
	n.PublishedAt = time.Now()
	if req.PublishedAt != nil {
		n.PublishedAt = *req.PublishedAt
	}
	n.Stamp(caller.UserID)

	if err := s.repo.News.Create(ctx, n); err != nil {
		s.logger.Error("发布新闻失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, n.NewsID)
}

func (s *newsService) Update(ctx context.Context, id string, req *dto.UpdateNewsRequest, caller Caller) (*model.News, error) {
	n, err := fetch(ctx, s.repo.News, id, ErrNewsNotFound)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(n, caller); err != nil {
		return nil, err
	}

	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Summary != nil {
		n.Summary = *req.Summary
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.Category != nil {
		n.Category = *req.Category
	}
	if req.ImageURL != nil {
		n.ImageURL = *req.ImageURL
	}
	n.Stamp(caller.UserID)

	if err := s.repo.News.Update(ctx, n); err != nil {
		s.logger.Error("更新新闻失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *newsService) Delete(ctx context.Context, id string, caller Caller) error {
	n, err := fetch(ctx, s.repo.News, id, ErrNewsNotFound)
	if err != nil {
		return err
	}
	if err := authorizeOwner(n, caller); err != nil {
		return err
	}
	return remove(ctx, s.repo.News, id, ErrNewsNotFound)
}

// ════════════════════════ Resource ════════════════════════

// ResourceService 教学资料业务接口
type ResourceService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Resource, int64, error)
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	Create(ctx context.Context, req *dto.CreateResourceRequest, file *multipart.FileHeader, caller Caller) (*model.Resource, error)
	Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, caller Caller) (*model.Resource, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type resourceService struct {
	repo   *repository.Repository
	files  FileStore
	logger *zap.Logger
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(repo *repository.Repository, files FileStore, logger *zap.Logger) ResourceService {
	return &resourceService{repo: repo, files: files, logger: logger}
}

func (s *resourceService) List(ctx context.Context, q *query.ListQuery) ([]model.Resource, int64, error) {
	return s.repo.Resource.List(ctx, q)
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	return fetch(ctx, s.repo.Resource, id, ErrResourceNotFound)
}

// Create 先落盘再写库；写库失败时删除已保存的文件
func (s *resourceService) Create(ctx context.Context, req *dto.CreateResourceRequest, file *multipart.FileHeader, caller Caller) (*model.Resource, error) {
	if file == nil {
		return nil, ErrUploadMissing
	}
	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
	}

	stored, err := s.files.Save(file, "resources")
	if err != nil {
		return nil, uploadError(err)
	}

	res := &model.Resource{
		Title:        req.Title,
		Description:  req.Description,
		Category:     orDefault(req.Category, "general"),
		FileURL:      stored.URL,
		FileName:     stored.Name,
		FileSize:     stored.Size,
		MimeType:     stored.MimeType,
		UploaderID:   caller.UserID,
		DepartmentID: req.DepartmentID,
	}
	res.Stamp(caller.UserID)

	if err := s.repo.Resource.Create(ctx, res); err != nil {
		if rmErr := s.files.Remove(stored.URL); rmErr != nil {
			s.logger.Warn("清理上传文件失败", zap.String("url", stored.URL), zap.Error(rmErr))
		}
		s.logger.Error("保存资料失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, res.ResourceID)
}

func (s *resourceService) Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, caller Caller) (*model.Resource, error) {
	res, err := fetch(ctx, s.repo.Resource, id, ErrResourceNotFound)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(res, caller); err != nil {
		return nil, err
	}

	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		res.DepartmentID = req.DepartmentID
	}
	if req.Title != nil {
		res.Title = *req.Title
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.Category != nil {
		res.Category = *req.Category
	}
	res.Stamp(caller.UserID)

	if err := s.repo.Resource.Update(ctx, res); err != nil {
		s.logger.Error("更新资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *resourceService) Delete(ctx context.Context, id string, caller Caller) error {
	res, err := fetch(ctx, s.repo.Resource, id, ErrResourceNotFound)
	if err != nil {
		return err
	}
	if err := authorizeOwner(res, caller); err != nil {
		return err
	}
	if err := remove(ctx, s.repo.Resource, id, ErrResourceNotFound); err != nil {
		return err
	}
	if err := s.files.Remove(res.FileURL); err != nil {
		s.logger.Warn("删除资料文件失败", zap.String("url", res.FileURL), zap.Error(err))
	}
	return nil
}

// ── 内部辅助方法 ──

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
