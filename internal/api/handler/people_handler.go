package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/response"
)

// ── Teacher ──

// TeacherHandler 教师 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// List GET /api/v1/teachers
func (h *TeacherHandler) List(c *gin.Context) {
	list(c, repository.TeacherList, "teachers", h.teacherSvc.List)
}

// Get GET /api/v1/teachers/:id
func (h *TeacherHandler) Get(c *gin.Context) { getOne(c, h.teacherSvc.GetByID) }

// Create POST /api/v1/teachers
func (h *TeacherHandler) Create(c *gin.Context) { create(c, h.teacherSvc.Create) }

// Update PUT /api/v1/teachers/:id
func (h *TeacherHandler) Update(c *gin.Context) { update(c, h.teacherSvc.Update) }

// Delete DELETE /api/v1/teachers/:id
func (h *TeacherHandler) Delete(c *gin.Context) { deleteOne(c, h.teacherSvc.Delete) }

// ── Student ──

// StudentHandler 学生 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// List GET /api/v1/students
func (h *StudentHandler) List(c *gin.Context) {
	list(c, repository.StudentList, "students", h.studentSvc.List)
}

// Get GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) { getOne(c, h.studentSvc.GetByID) }

// Create POST /api/v1/students
func (h *StudentHandler) Create(c *gin.Context) { create(c, h.studentSvc.Create) }

// Update PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) { update(c, h.studentSvc.Update) }

// Delete DELETE /api/v1/students/:id
func (h *StudentHandler) Delete(c *gin.Context) { deleteOne(c, h.studentSvc.Delete) }

// Import 从 Excel 批量导入学生（逐行校验，返回成功 / 失败明细）
// POST /api/v1/students/import  (multipart: file)
func (h *StudentHandler) Import(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			fail(c, service.ErrUploadMissing)
			return
		}
		fail(c, bindError(err))
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		fail(c, apperrors.ErrBadRequest.WithMessage("仅支持 .xlsx 文件"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	rows, err := h.studentSvc.ParseImportFile(f)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.studentSvc.Import(c.Request.Context(), rows, caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.OK(c, result)
}

// ── CommitteeMember ──

// CommitteeHandler 评审委员 HTTP 处理器
type CommitteeHandler struct {
	committeeSvc service.CommitteeService
}

// NewCommitteeHandler 创建 CommitteeHandler
func NewCommitteeHandler(committeeSvc service.CommitteeService) *CommitteeHandler {
	return &CommitteeHandler{committeeSvc: committeeSvc}
}

// List GET /api/v1/committee-members
func (h *CommitteeHandler) List(c *gin.Context) {
	list(c, repository.CommitteeList, "members", h.committeeSvc.List)
}

// Get GET /api/v1/committee-members/:id
func (h *CommitteeHandler) Get(c *gin.Context) { getOne(c, h.committeeSvc.GetByID) }

// Create POST /api/v1/committee-members
func (h *CommitteeHandler) Create(c *gin.Context) { create(c, h.committeeSvc.Create) }

// Update PUT /api/v1/committee-members/:id
func (h *CommitteeHandler) Update(c *gin.Context) { update(c, h.committeeSvc.Update) }

// Delete DELETE /api/v1/committee-members/:id
func (h *CommitteeHandler) Delete(c *gin.Context) { deleteOne(c, h.committeeSvc.Delete) }
