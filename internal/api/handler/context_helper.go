package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"faculty-portal/internal/api/middleware"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/jwt"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/response"
)

// fail 上报错误，由 middleware.ErrorHandler 统一渲染
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// callerFrom 从 Gin 上下文中提取调用者。
// 如果 JWT 中间件未正确注入 user_id，上报 401 并返回 false，调用方应直接 return。
func callerFrom(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if userID == "" || role == "" {
		fail(c, apperrors.ErrUnauthorized)
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: role}, true
}

// claimsFrom 当前 access token 的声明（登出时使用）
func claimsFrom(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		fail(c, apperrors.ErrUnauthorized)
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		fail(c, apperrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// parseID 路径参数 :id 必须是 UUID，在访问存储前拦截
func parseID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, apperrors.ErrInvalidID)
		return "", false
	}
	return id, true
}

// bindJSON 绑定并校验 JSON 请求体
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, bindError(err))
		return false
	}
	return true
}

// bindForm 绑定并校验 multipart / form 表单
func bindForm(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		fail(c, bindError(err))
		return false
	}
	return true
}

// bindError 校验错误与超限错误原样交给 ErrorHandler，其余（JSON 语法错误等）归为 400
func bindError(err error) error {
	var verrs validator.ValidationErrors
	var tooLarge *http.MaxBytesError
	if errors.As(err, &verrs) || errors.As(err, &tooLarge) {
		return err
	}
	return apperrors.ErrBadRequest.WithMessage("请求体格式无效").Wrap(err)
}

// ── 通用列表 / 详情 / 删除 ──

// list 列表接口模板：解析查询串 → 查询 → 分页信封
func list[T any](c *gin.Context, spec *repository.ListSpec, key string, fetch func(ctx context.Context, q *query.ListQuery) ([]T, int64, error)) {
	q, err := query.Parse(c.Request.URL.Query(), spec.Schema)
	if err != nil {
		fail(c, apperrors.ErrBadRequest.WithMessage("查询参数格式无效").Wrap(err))
		return
	}

	items, total, err := fetch(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	window := query.NewWindow(q.Page, q.Limit, total)
	response.OKList(c, key, items, len(items), window, q.Select, spec.Schema.IDField)
}

// getOne 详情接口模板
func getOne[T any](c *gin.Context, fetch func(ctx context.Context, id string) (*T, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := fetch(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, item)
}

// deleteOne 删除接口模板，成功返回 data: null
func deleteOne(c *gin.Context, del func(ctx context.Context, id string) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}

// ownedDelete 带调用者的删除（Service 层校验归属）
func ownedDelete(c *gin.Context, del func(ctx context.Context, id string, caller service.Caller) error) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	deleteOne(c, func(ctx context.Context, id string) error {
		return del(ctx, id, caller)
	})
}

// create 创建接口模板：绑定 → 调用 → 201
func create[Req any, T any](c *gin.Context, fn func(ctx context.Context, req *Req, caller service.Caller) (*T, error)) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req Req
	if !bindJSON(c, &req) {
		return
	}
	item, err := fn(c.Request.Context(), &req, caller)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, item)
}

// update 部分更新接口模板，返回重新加载后的实体
func update[Req any, T any](c *gin.Context, fn func(ctx context.Context, id string, req *Req, caller service.Caller) (*T, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req Req
	if !bindJSON(c, &req) {
		return
	}
	item, err := fn(c.Request.Context(), id, &req, caller)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, item)
}
