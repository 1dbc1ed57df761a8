package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/internal/model"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/rbac"
	"faculty-portal/pkg/response"
)

// 上下文键
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// 认证失败的各类原因，客户端可据此决定是刷新 Token 还是重新登录
var (
	ErrTokenMissing  = apperrors.New(apperrors.KindUnauthorized, 20111, "缺少认证头")
	ErrTokenMalform  = apperrors.New(apperrors.KindUnauthorized, 20112, "认证头格式无效")
	ErrTokenInvalid  = apperrors.New(apperrors.KindUnauthorized, 20113, "Token 无效")
	ErrTokenExpired  = apperrors.New(apperrors.KindUnauthorized, 20114, "Token 已过期")
	ErrTokenRevoked  = apperrors.New(apperrors.KindUnauthorized, 20115, "Token 已注销")
	ErrUserGone      = apperrors.New(apperrors.KindUnauthorized, 20116, "用户不存在或已停用")
	ErrPasswordReset = apperrors.New(apperrors.KindUnauthorized, 20117, "密码已修改，请重新登录")
)

// UserLookup 认证时回查用户
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Blacklist Token 黑名单查询（Redis 实现）
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 再确认 Token 未被注销、用户仍然存在且签发后未修改过密码
// blacklist 为 nil 时跳过黑名单检查（Redis 未启用）
func JWTAuth(jwtMgr *jwt.Manager, blacklist Blacklist, users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, ErrTokenMissing)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortWith(c, ErrTokenMalform)
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired)
				return
			}
			abortWith(c, ErrTokenInvalid)
			return
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			abortWith(c, ErrTokenInvalid)
			return
		}

		ctx := c.Request.Context()

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
			if err != nil {
				// Redis 故障时降级放行，只记录日志
				logger.Warn("查询 Token 黑名单失败", zap.Error(err))
			} else if revoked {
				abortWith(c, ErrTokenRevoked)
				return
			}
		}

		user, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortWith(c, ErrUserGone)
				return
			}
			logger.Error("认证时查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
			response.InternalError(c)
			c.Abort()
			return
		}
		if !user.IsActive {
			abortWith(c, ErrUserGone)
			return
		}
		if user.PasswordChangedAt != nil && claims.IssuedBefore(*user.PasswordChangedAt) {
			abortWith(c, ErrPasswordReset)
			return
		}

		// 角色以数据库为准，Token 签发后被调整的角色立即生效
		c.Set(CtxUserID, user.UserID)
		c.Set(CtxRole, user.Role)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			abortWith(c, apperrors.ErrUnauthorized)
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		abortWith(c, apperrors.ErrForbidden)
	}
}

// RequirePermission 按权限表鉴权
func RequirePermission(policy *rbac.Policy, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			abortWith(c, apperrors.ErrUnauthorized)
			return
		}
		if !policy.Can(role, perm) {
			abortWith(c, apperrors.ErrForbidden.WithMessage("缺少权限: "+perm))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, e *apperrors.AppError) {
	response.Error(c, e.Kind.HTTPStatus(), e.Code, e.Message)
	c.Abort()
}
