package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
)

// sendFile 以附件形式返回生成的文件
// 文件名按 RFC 5987 编码，兼容中文课程名
func sendFile(c *gin.Context, filename, contentType string, body []byte) {
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, body)
}
