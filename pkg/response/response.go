package response

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"faculty-portal/pkg/query"
)

// Response 统一响应结构：{status, message, data}
// 错误响应额外携带业务码 code
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Code    int         `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: "success",
		Data:    data,
	})
}

// OKWithMessage 200 成功响应（自定义提示）
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:  statusSuccess,
		Message: "created",
		Data:    data,
	})
}

// OKList 200 分页列表
// data = {count, totalPages, pagination:{next?,prev?}, <key>: items}
// selected 非空时按 json 字段投影，并始终保留 idKey
func OKList(c *gin.Context, key string, items interface{}, count int, window query.Window, selected []string, idKey string) {
	var list interface{} = items
	if len(selected) > 0 {
		projected, err := project(items, selected, idKey)
		if err != nil {
			InternalError(c)
			return
		}
		list = projected
	}

	c.JSON(http.StatusOK, Response{
		Status:  statusSuccess,
		Message: "success",
		Data: gin.H{
			"count":      count,
			"total":      window.Total,
			"totalPages": window.TotalPages(),
			"pagination": window.Pagination(),
			key:          list,
		},
	})
}

// project 经 JSON 往返把实体列表裁剪为选定字段
func project(items interface{}, fields []string, idKey string) ([]map[string]json.RawMessage, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep[idKey] = struct{}{}
	for _, f := range fields {
		keep[f] = struct{}{}
	}

	out := make([]map[string]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]json.RawMessage, len(keep))
		for k := range keep {
			if v, ok := row[k]; ok {
				p[k] = v
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Status:  statusError,
		Code:    code,
		Message: message,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
