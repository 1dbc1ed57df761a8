// Package apperrors 定义业务错误分类，并把存储层、校验层错误统一翻译为业务错误。
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind 错误分类
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// HTTPStatus 分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError 带分类与业务码的错误
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// Is 同一个哨兵错误派生出的副本（WithMessage/Wrap）仍视为相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New 创建业务错误（通常作为包级哨兵错误使用）
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// WithMessage 复制错误并替换提示信息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: message, cause: e.cause}
}

// Wrap 复制错误并附加底层原因（原因只用于日志，不暴露给客户端）
func (e *AppError) Wrap(cause error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, cause: cause}
}

// ── 通用错误 ──

var (
	ErrBadRequest   = New(KindBadRequest, 10001, "参数校验失败")
	ErrUnauthorized = New(KindUnauthorized, 10002, "未认证")
	ErrForbidden    = New(KindForbidden, 10003, "无权限访问")
	ErrNotFound     = New(KindNotFound, 10004, "资源不存在")
	ErrConflict     = New(KindConflict, 10006, "资源已存在")
	ErrInternal     = New(KindInternal, 50000, "服务器内部错误")
	ErrInvalidID    = New(KindBadRequest, 10007, "ID 格式无效")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(KindConflict, 10008, "数据已被其他操作修改，请刷新后重试")

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgCheckViolation        = "23514"
	pgNotNullViolation      = "23502"
	pgInvalidTextRepr       = "22P02"
	pgInvalidDatetimeFormat = "22007"
	pgDatetimeOverflow      = "22008"
	pgNumericOutOfRange     = "22003"
)

// Translate 将任意错误翻译为 AppError
// 未识别的错误统一归为 Internal，原始错误保留在 cause 中供日志使用
func Translate(err error, trans ut.Translator) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ErrBadRequest.WithMessage(joinValidationErrors(verrs, trans))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict.Wrap(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrBadRequest.WithMessage("关联的资源不存在").Wrap(err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrBadRequest.WithMessage("字段取值不合法").Wrap(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict.WithMessage(duplicateMessage(pgErr)).Wrap(err)
		case pgForeignKeyViolation:
			return ErrBadRequest.WithMessage("关联的资源不存在").Wrap(err)
		case pgCheckViolation, pgNotNullViolation:
			return ErrBadRequest.WithMessage("字段取值不合法").Wrap(err)
		case pgInvalidTextRepr, pgInvalidDatetimeFormat, pgDatetimeOverflow, pgNumericOutOfRange:
			return ErrBadRequest.WithMessage("查询参数格式无效").Wrap(err)
		}
	}

	return ErrInternal.Wrap(err)
}

func duplicateMessage(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return "资源已存在（" + pgErr.ConstraintName + "）"
	}
	return ErrConflict.Message
}

// joinValidationErrors 汇总全部字段错误为一条提示
func joinValidationErrors(verrs validator.ValidationErrors, trans ut.Translator) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if trans != nil {
			msgs = append(msgs, fe.Translate(trans))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s 校验失败(%s)", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
