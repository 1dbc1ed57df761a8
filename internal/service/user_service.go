package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 用户管理业务错误 ──

var (
	ErrCannotDeleteSelf = apperrors.New(apperrors.KindBadRequest, 20201, "不能删除当前登录账号")
	ErrCannotDemoteSelf = apperrors.New(apperrors.KindBadRequest, 20202, "不能修改自己的角色或停用自己")
)

// UserService 用户管理业务接口（管理员）
type UserService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.User, int64, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, caller Caller) (*model.User, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, caller Caller) (*model.User, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, q *query.ListQuery) ([]model.User, int64, error) {
	return s.repo.User.List(ctx, q)
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return fetch(ctx, s.repo.User, id, ErrUserNotFound)
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, caller Caller) (*model.User, error) {
	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
	}
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	user.Stamp(caller.UserID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, user.UserID)
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, caller Caller) (*model.User, error) {
	user, err := fetch(ctx, s.repo.User, id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	if id == caller.UserID {
		if (req.Role != nil && *req.Role != user.Role) || (req.IsActive != nil && !*req.IsActive) {
			return nil, ErrCannotDemoteSelf
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		user.DepartmentID = req.DepartmentID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.Stamp(caller.UserID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, caller Caller) error {
	if id == caller.UserID {
		return ErrCannotDeleteSelf
	}
	if err := remove(ctx, s.repo.User, id, ErrUserNotFound); err != nil {
		return err
	}
	s.logger.Info("用户已删除", zap.String("id", id), zap.String("by", caller.UserID))
	return nil
}
