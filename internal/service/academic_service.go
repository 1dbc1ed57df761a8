package service

import (
	"context"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 学院 / 系 / 课程业务错误 ──

var (
	ErrFacultyNotFound    = apperrors.New(apperrors.KindNotFound, 20301, "学院不存在")
	ErrFacultyRef         = apperrors.New(apperrors.KindBadRequest, 20302, "faculty_id 对应的学院不存在")
	ErrFacultyInUse       = apperrors.New(apperrors.KindConflict, 20303, "学院下仍有系，无法删除")
	ErrDepartmentNotFound = apperrors.New(apperrors.KindNotFound, 20311, "系不存在")
	ErrDepartmentRef      = apperrors.New(apperrors.KindBadRequest, 20312, "department_id 对应的系不存在")
	ErrDepartmentInUse    = apperrors.New(apperrors.KindConflict, 20313, "系下仍有课程，无法删除")
	ErrCourseNotFound     = apperrors.New(apperrors.KindNotFound, 20321, "课程不存在")
	ErrCourseRef          = apperrors.New(apperrors.KindBadRequest, 20322, "course_id 对应的课程不存在")
)

// ════════════════════════ Faculty ════════════════════════

// FacultyService 学院业务接口
type FacultyService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Faculty, int64, error)
	GetByID(ctx context.Context, id string) (*model.Faculty, error)
	Create(ctx context.Context, req *dto.CreateFacultyRequest, caller Caller) (*model.Faculty, error)
	Update(ctx context.Context, id string, req *dto.UpdateFacultyRequest, caller Caller) (*model.Faculty, error)
	Delete(ctx context.Context, id string) error
}

type facultyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewFacultyService 创建 FacultyService 实例
func NewFacultyService(repo *repository.Repository, logger *zap.Logger) FacultyService {
	return &facultyService{repo: repo, logger: logger}
}

func (s *facultyService) List(ctx context.Context, q *query.ListQuery) ([]model.Faculty, int64, error) {
	return s.repo.Faculty.List(ctx, q)
}

func (s *facultyService) GetByID(ctx context.Context, id string) (*model.Faculty, error) {
	return fetch(ctx, s.repo.Faculty, id, ErrFacultyNotFound)
}

func (s *facultyService) Create(ctx context.Context, req *dto.CreateFacultyRequest, caller Caller) (*model.Faculty, error) {
	f := &model.Faculty{
		Name:            req.Name,
		Code:            req.Code,
		Dean:            req.Dean,
		Description:     req.Description,
		EstablishedYear: req.EstablishedYear,
	}
	f.Stamp(caller.UserID)

	if err := s.repo.Faculty.Create(ctx, f); err != nil {
		s.logger.Error("创建学院失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func (s *facultyService) Update(ctx context.Context, id string, req *dto.UpdateFacultyRequest, caller Caller) (*model.Faculty, error) {
	f, err := fetch(ctx, s.repo.Faculty, id, ErrFacultyNotFound)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.Code != nil {
		f.Code = *req.Code
	}
	if req.Dean != nil {
		f.Dean = *req.Dean
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.EstablishedYear != nil {
		f.EstablishedYear = *req.EstablishedYear
	}
	f.Stamp(caller.UserID)

	if err := s.repo.Faculty.Update(ctx, f); err != nil {
		s.logger.Error("更新学院失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *facultyService) Delete(ctx context.Context, id string) error {
	if _, err := fetch(ctx, s.repo.Faculty, id, ErrFacultyNotFound); err != nil {
		return err
	}
	n, err := s.repo.Faculty.CountDepartments(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrFacultyInUse
	}
	return remove(ctx, s.repo.Faculty, id, ErrFacultyNotFound)
}

// ════════════════════════ Department ════════════════════════

// DepartmentService 系业务接口
type DepartmentService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Department, int64, error)
	GetByID(ctx context.Context, id string) (*model.Department, error)
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, caller Caller) (*model.Department, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, caller Caller) (*model.Department, error)
	Delete(ctx context.Context, id string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) List(ctx context.Context, q *query.ListQuery) ([]model.Department, int64, error) {
	return s.repo.Department.List(ctx, q)
}

func (s *departmentService) GetByID(ctx context.Context, id string) (*model.Department, error) {
	return fetch(ctx, s.repo.Department, id, ErrDepartmentNotFound)
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, caller Caller) (*model.Department, error) {
	if err := ensureRef(ctx, s.repo.Faculty, req.FacultyID, ErrFacultyRef); err != nil {
		return nil, err
	}

	d := &model.Department{
		Name:        req.Name,
		Code:        req.Code,
		FacultyID:   req.FacultyID,
		Head:        req.Head,
		Description: req.Description,
		IsActive:    true,
	}
	d.Stamp(caller.UserID)

	if err := s.repo.Department.Create(ctx, d); err != nil {
		s.logger.Error("创建系失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, d.DepartmentID)
}

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, caller Caller) (*model.Department, error) {
	d, err := fetch(ctx, s.repo.Department, id, ErrDepartmentNotFound)
	if err != nil {
		return nil, err
	}

	if req.FacultyID != nil && *req.FacultyID != d.FacultyID {
		if err := ensureRef(ctx, s.repo.Faculty, *req.FacultyID, ErrFacultyRef); err != nil {
			return nil, err
		}
		d.FacultyID = *req.FacultyID
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Code != nil {
		d.Code = *req.Code
	}
	if req.Head != nil {
		d.Head = *req.Head
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	d.Stamp(caller.UserID)

	if err := s.repo.Department.Update(ctx, d); err != nil {
		s.logger.Error("更新系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *departmentService) Delete(ctx context.Context, id string) error {
	if _, err := fetch(ctx, s.repo.Department, id, ErrDepartmentNotFound); err != nil {
		return err
	}
	n, err := s.repo.Department.CountCourses(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDepartmentInUse
	}
	return remove(ctx, s.repo.Department, id, ErrDepartmentNotFound)
}

// ════════════════════════ Course ════════════════════════

// CourseService 课程业务接口
type CourseService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Course, int64, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest, caller Caller) (*model.Course, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, caller Caller) (*model.Course, error)
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) List(ctx context.Context, q *query.ListQuery) ([]model.Course, int64, error) {
	return s.repo.Course.List(ctx, q)
}

func (s *courseService) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return fetch(ctx, s.repo.Course, id, ErrCourseNotFound)
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, caller Caller) (*model.Course, error) {
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}

	c := &model.Course{
		Code:         req.Code,
		Title:        req.Title,
		Description:  req.Description,
		Credits:      req.Credits,
		Level:        req.Level,
		Category:     req.Category,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if c.Level == 0 {
		c.Level = 100
	}
	if c.Category == "" {
		c.Category = "core"
	}
	c.Stamp(caller.UserID)

	if err := s.repo.Course.Create(ctx, c); err != nil {
		s.logger.Error("创建课程失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, c.CourseID)
}

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, caller Caller) (*model.Course, error) {
	c, err := fetch(ctx, s.repo.Course, id, ErrCourseNotFound)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil && *req.DepartmentID != c.DepartmentID {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		c.DepartmentID = *req.DepartmentID
	}
	if req.Code != nil {
		c.Code = *req.Code
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Credits != nil {
		c.Credits = *req.Credits
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Category != nil {
		c.Category = *req.Category
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	c.Stamp(caller.UserID)

	if err := s.repo.Course.Update(ctx, c); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Course, id, ErrCourseNotFound)
}
