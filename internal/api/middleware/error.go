package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"

	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/response"
)

// ErrorHandler 统一错误出口
// Handler 通过 c.Error(err) 上报错误后直接返回，由这里翻译为响应信封
func ErrorHandler(trans ut.Translator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			return
		}

		appErr := apperrors.Translate(err, trans)
		if appErr.Kind == apperrors.KindInternal {
			logger.Error("请求处理失败",
				zap.String("path", c.FullPath()),
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.Error(err),
			)
			response.InternalError(c)
			return
		}
		response.Error(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message)
	}
}

// Recovery panic 兜底：记录堆栈并返回 500 信封
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("请求处理 panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stack("stack"),
		)
		response.InternalError(c)
		c.Abort()
	})
}
