package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	CRUD[model.User]
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	crudRepo[model.User]
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{crudRepo: newCRUD[model.User](db, UserList)}
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByResetToken 按重置令牌哈希查找未过期的用户
func (r *userRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expiry > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("user_id ASC").
		Find(&users).Error
	return users, err
}
