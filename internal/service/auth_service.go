package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"faculty-portal/config"
	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/mailer"
	"faculty-portal/pkg/rbac"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthorized, 20101, "邮箱或密码错误")
	ErrAccountDisabled    = apperrors.New(apperrors.KindForbidden, 20102, "账号已停用")
	ErrEmailTaken         = apperrors.New(apperrors.KindConflict, 20103, "邮箱已被注册")
	ErrWrongPassword      = apperrors.New(apperrors.KindBadRequest, 20104, "原密码错误")
	ErrResetTokenInvalid  = apperrors.New(apperrors.KindBadRequest, 20105, "重置链接无效或已过期")
	ErrRefreshInvalid     = apperrors.New(apperrors.KindUnauthorized, 20106, "refresh token 无效或已失效")
	ErrUserNotFound       = apperrors.New(apperrors.KindNotFound, 20107, "用户不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*dto.TokenResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authService struct {
	cfg     *config.Config
	repo    *repository.Repository
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	mail    *mailer.Dispatcher
	policy  *rbac.Policy
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	mail *mailer.Dispatcher,
	policy *rbac.Policy,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:     cfg,
		repo:    repo,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		mail:    mail,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Register ──────────────────────

// Register 学生自助注册：同一事务内创建账号与学生档案
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	taken, err := s.repo.Student.ExistingNumbers(ctx, []string{req.StudentNumber})
	if err != nil {
		s.logger.Error("校验学号失败", zap.Error(err))
		return nil, err
	}
	if taken[req.StudentNumber] {
		return nil, ErrStudentNumberTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	deptID := req.DepartmentID
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
		DepartmentID: &deptID,
		IsActive:     true,
	}
	yearOfStudy := req.YearOfStudy
	if yearOfStudy == 0 {
		yearOfStudy = 1
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		return tx.Student.Create(ctx, &model.Student{
			UserID:        &user.UserID,
			StudentNumber: req.StudentNumber,
			Name:          req.Name,
			Email:         req.Email,
			DepartmentID:  req.DepartmentID,
			YearOfStudy:   yearOfStudy,
			Status:        "active",
		})
	})
	if err != nil {
		s.logger.Error("注册失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生注册成功", zap.String("user_id", user.UserID))
	return s.issueTokens(ctx, user, false)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// 3. 记录登录时间（失败不影响登录）
	now := s.now()
	user.LastLoginAt = &now
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Warn("更新登录时间失败", zap.String("user_id", user.UserID), zap.Error(err))
	}

	// 4. 生成 Token 对
	return s.issueTokens(ctx, user, req.RememberMe)
}

// ────────────────────── Refresh ──────────────────────

// Refresh 用 refresh token 换取新的 Token 对；旧 refresh token 立即吊销
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrRefreshInvalid
	}

	revoked, err := s.revoker.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("查询 token 黑名单失败", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if user.PasswordChangedAt != nil && claims.IssuedBefore(*user.PasswordChangedAt) {
		return nil, ErrRefreshInvalid
	}

	if err := s.revoker.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Error("吊销旧 refresh token 失败", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(ctx, user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

// Logout 吊销当前 access token；携带 refresh token 时一并吊销
func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if err := s.revoker.BlacklistToken(ctx, access.ID, access.Remaining()); err != nil {
		s.logger.Error("吊销 access token 失败", zap.String("user_id", access.UserID), zap.Error(err))
		return err
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.UserID != access.UserID {
		// 无效或他人的 refresh token 直接忽略
		return nil
	}
	if err := s.revoker.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
		s.logger.Warn("吊销 refresh token 失败", zap.String("user_id", access.UserID), zap.Error(err))
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := fetch(ctx, s.repo.User, userID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	resp := s.toUserResponse(user)
	resp.Permissions = s.policy.Permissions(user.Role)

	switch user.Role {
	case model.RoleStudent:
		if st, err := s.repo.Student.GetByUserID(ctx, user.UserID); err == nil {
			resp.StudentID = st.StudentID
		}
	case model.RoleCommittee:
		if m, err := s.repo.Committee.GetByUserID(ctx, user.UserID); err == nil {
			resp.CommitteeID = m.CommitteeMemberID
		}
	}

	unread, err := s.repo.Notification.CountUnread(ctx, user.UserID, s.now())
	if err != nil {
		s.logger.Warn("统计未读通知失败", zap.String("user_id", user.UserID), zap.Error(err))
	}
	resp.UnreadNotify = unread

	return resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

// ChangePassword 修改密码；此前签发的全部 token 随之失效，返回新的 Token 对
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*dto.TokenResponse, error) {
	user, err := fetch(ctx, s.repo.User, userID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return nil, ErrWrongPassword
	}

	if err := s.setPassword(user, req.NewPassword); err != nil {
		return nil, err
	}
	user.Stamp(userID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("修改密码失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.issueTokens(ctx, user, false)
}

// ────────────────────── ForgotPassword ──────────────────────

// ForgotPassword 生成一次性重置令牌并发送邮件
// 邮箱不存在时同样返回成功，避免暴露账号是否存在
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}
	if !user.IsActive {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	hashed := hashResetToken(token)
	expiry := s.now().Add(s.resetTTL())

	user.PasswordResetToken = &hashed
	user.PasswordResetExpiry = &expiry
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("保存重置令牌失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}

	link := s.cfg.Mail.ResetURL + "?token=" + url.QueryEscape(token)
	msg, err := mailer.PasswordReset(mail.Address{Name: user.Name, Address: user.Email}, link, int(s.resetTTL().Minutes()))
	if err != nil {
		s.logger.Error("渲染重置邮件失败", zap.Error(err))
		return nil
	}
	s.mail.Dispatch(msg)
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.repo.User.GetByResetToken(ctx, hashResetToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		s.logger.Error("查询重置令牌失败", zap.Error(err))
		return err
	}

	if err := s.setPassword(user, req.NewPassword); err != nil {
		return err
	}
	user.PasswordResetToken = nil
	user.PasswordResetExpiry = nil

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("密码已重置", zap.String("user_id", user.UserID))
	return nil
}

// ── 内部辅助方法 ──

func (s *authService) setPassword(user *model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	now := s.now()
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = &now
	return nil
}

func (s *authService) resetTTL() time.Duration {
	if s.cfg.Auth.PasswordResetTTL > 0 {
		return s.cfg.Auth.PasswordResetTTL
	}
	return 10 * time.Minute
}

func (s *authService) issueTokens(ctx context.Context, user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Email, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	resp := s.toUserResponse(user)
	resp.Permissions = s.policy.Permissions(user.Role)

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *resp,
	}, nil
}

func (s *authService) toUserResponse(user *model.User) *dto.UserResponse {
	var dept *dto.DepartmentResponse
	if user.Department != nil {
		dept = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
			Code: user.Department.Code,
		}
	}
	return &dto.UserResponse{
		ID:          user.UserID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Department:  dept,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// hashResetToken 数据库只保存重置令牌的 SHA-256 摘要
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
