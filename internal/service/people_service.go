package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 教师 / 学生 / 评审委员业务错误 ──

var (
	ErrTeacherNotFound       = apperrors.New(apperrors.KindNotFound, 20401, "教师不存在")
	ErrTeacherRef            = apperrors.New(apperrors.KindBadRequest, 20402, "teacher_id 对应的教师不存在")
	ErrStudentNotFound       = apperrors.New(apperrors.KindNotFound, 20411, "学生不存在")
	ErrStudentRef            = apperrors.New(apperrors.KindBadRequest, 20412, "student_id 对应的学生不存在")
	ErrStudentNumberTaken    = apperrors.New(apperrors.KindConflict, 20413, "学号已存在")
	ErrStudentProfileMissing = apperrors.New(apperrors.KindBadRequest, 20414, "当前账号未关联学生档案")
	ErrUserRef               = apperrors.New(apperrors.KindBadRequest, 20421, "user_id 对应的用户不存在")
	ErrCommitteeNotFound     = apperrors.New(apperrors.KindNotFound, 20601, "评审委员不存在")
	ErrCommitteeDuplicate    = apperrors.New(apperrors.KindConflict, 20602, "该用户已是评审委员")
	ErrCommitteeRole         = apperrors.New(apperrors.KindBadRequest, 20603, "只有 committee 角色的用户可以任命为评审委员")
)

// ════════════════════════ Teacher ════════════════════════

// TeacherService 教师业务接口
type TeacherService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Teacher, int64, error)
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	Create(ctx context.Context, req *dto.CreateTeacherRequest, caller Caller) (*model.Teacher, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, caller Caller) (*model.Teacher, error)
	Delete(ctx context.Context, id string) error
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

func (s *teacherService) List(ctx context.Context, q *query.ListQuery) ([]model.Teacher, int64, error) {
	return s.repo.Teacher.List(ctx, q)
}

func (s *teacherService) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	return fetch(ctx, s.repo.Teacher, id, ErrTeacherNotFound)
}

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest, caller Caller) (*model.Teacher, error) {
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		if err := ensureRef(ctx, s.repo.User, *req.UserID, ErrUserRef); err != nil {
			return nil, err
		}
	}

	t := &model.Teacher{
		UserID:         req.UserID,
		Name:           req.Name,
		Email:          req.Email,
		Title:          req.Title,
		Specialization: req.Specialization,
		Phone:          req.Phone,
		DepartmentID:   req.DepartmentID,
		HiredAt:        req.HiredAt,
	}
	t.Stamp(caller.UserID)

	if err := s.repo.Teacher.Create(ctx, t); err != nil {
		s.logger.Error("创建教师失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, t.TeacherID)
}

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, caller Caller) (*model.Teacher, error) {
	t, err := fetch(ctx, s.repo.Teacher, id, ErrTeacherNotFound)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil && *req.DepartmentID != t.DepartmentID {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		t.DepartmentID = *req.DepartmentID
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Email != nil {
		t.Email = *req.Email
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Specialization != nil {
		t.Specialization = *req.Specialization
	}
	if req.Phone != nil {
		t.Phone = *req.Phone
	}
	if req.HiredAt != nil {
		t.HiredAt = req.HiredAt
	}
	t.Stamp(caller.UserID)

	if err := s.repo.Teacher.Update(ctx, t); err != nil {
		s.logger.Error("更新教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *teacherService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Teacher, id, ErrTeacherNotFound)
}

// ════════════════════════ CommitteeMember ════════════════════════

// CommitteeService 评审委员业务接口
type CommitteeService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.CommitteeMember, int64, error)
	GetByID(ctx context.Context, id string) (*model.CommitteeMember, error)
	Create(ctx context.Context, req *dto.CreateCommitteeMemberRequest, caller Caller) (*model.CommitteeMember, error)
	Update(ctx context.Context, id string, req *dto.UpdateCommitteeMemberRequest, caller Caller) (*model.CommitteeMember, error)
	Delete(ctx context.Context, id string) error
}

type committeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommitteeService 创建 CommitteeService 实例
func NewCommitteeService(repo *repository.Repository, logger *zap.Logger) CommitteeService {
	return &committeeService{repo: repo, logger: logger}
}

func (s *committeeService) List(ctx context.Context, q *query.ListQuery) ([]model.CommitteeMember, int64, error) {
	return s.repo.Committee.List(ctx, q)
}

func (s *committeeService) GetByID(ctx context.Context, id string) (*model.CommitteeMember, error) {
	return fetch(ctx, s.repo.Committee, id, ErrCommitteeNotFound)
}

// Create 每个用户最多一条委员记录
func (s *committeeService) Create(ctx context.Context, req *dto.CreateCommitteeMemberRequest, caller Caller) (*model.CommitteeMember, error) {
	user, err := fetch(ctx, s.repo.User, req.UserID, ErrUserRef)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleCommittee && user.Role != model.RoleAdmin {
		return nil, ErrCommitteeRole
	}
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}
	if _, err := s.repo.Committee.GetByUserID(ctx, req.UserID); err == nil {
		return nil, ErrCommitteeDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	m := &model.CommitteeMember{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
	}
	if m.Position == "" {
		m.Position = "member"
	}
	m.Stamp(caller.UserID)

	if err := s.repo.Committee.Create(ctx, m); err != nil {
		s.logger.Error("任命评审委员失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, m.CommitteeMemberID)
}

func (s *committeeService) Update(ctx context.Context, id string, req *dto.UpdateCommitteeMemberRequest, caller Caller) (*model.CommitteeMember, error) {
	m, err := fetch(ctx, s.repo.Committee, id, ErrCommitteeNotFound)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil && *req.DepartmentID != m.DepartmentID {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		m.DepartmentID = *req.DepartmentID
	}
	if req.Position != nil {
		m.Position = *req.Position
	}
	m.Stamp(caller.UserID)

	if err := s.repo.Committee.Update(ctx, m); err != nil {
		s.logger.Error("更新评审委员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *committeeService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Committee, id, ErrCommitteeNotFound)
}
