package handler

import (
	"github.com/gin-gonic/gin"

	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
)

// ── Faculty ──

// FacultyHandler 学院 HTTP 处理器
type FacultyHandler struct {
	facultySvc service.FacultyService
}

// NewFacultyHandler 创建 FacultyHandler
func NewFacultyHandler(facultySvc service.FacultyService) *FacultyHandler {
	return &FacultyHandler{facultySvc: facultySvc}
}

// List GET /api/v1/faculties
func (h *FacultyHandler) List(c *gin.Context) {
	list(c, repository.FacultyList, "faculties", h.facultySvc.List)
}

// Get GET /api/v1/faculties/:id
func (h *FacultyHandler) Get(c *gin.Context) { getOne(c, h.facultySvc.GetByID) }

// Create POST /api/v1/faculties
func (h *FacultyHandler) Create(c *gin.Context) { create(c, h.facultySvc.Create) }

// Update PUT /api/v1/faculties/:id
func (h *FacultyHandler) Update(c *gin.Context) { update(c, h.facultySvc.Update) }

// Delete DELETE /api/v1/faculties/:id（学院下仍有系时拒绝）
func (h *FacultyHandler) Delete(c *gin.Context) { deleteOne(c, h.facultySvc.Delete) }

// ── Department ──

// DepartmentHandler 系 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// List GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	list(c, repository.DepartmentList, "departments", h.deptSvc.List)
}

// Get GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) { getOne(c, h.deptSvc.GetByID) }

// Create POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) { create(c, h.deptSvc.Create) }

// Update PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) { update(c, h.deptSvc.Update) }

// Delete DELETE /api/v1/departments/:id（系下仍有课程时拒绝）
func (h *DepartmentHandler) Delete(c *gin.Context) { deleteOne(c, h.deptSvc.Delete) }

// ── Course ──

// CourseHandler 课程 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// List GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	list(c, repository.CourseList, "courses", h.courseSvc.List)
}

// Get GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) { getOne(c, h.courseSvc.GetByID) }

// Create POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) { create(c, h.courseSvc.Create) }

// Update PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) { update(c, h.courseSvc.Update) }

// Delete DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) { deleteOne(c, h.courseSvc.Delete) }

// ── CourseOffering ──

// OfferingHandler 开课 HTTP 处理器
type OfferingHandler struct {
	offeringSvc   service.OfferingService
	enrollmentSvc service.EnrollmentService
}

// NewOfferingHandler 创建 OfferingHandler
func NewOfferingHandler(offeringSvc service.OfferingService, enrollmentSvc service.EnrollmentService) *OfferingHandler {
	return &OfferingHandler{offeringSvc: offeringSvc, enrollmentSvc: enrollmentSvc}
}

// List 开课列表始终带出课程、课程所属系与授课教师
// GET /api/v1/course-offerings
func (h *OfferingHandler) List(c *gin.Context) {
	list(c, repository.OfferingList, "offerings", h.offeringSvc.List)
}

// Get GET /api/v1/course-offerings/:id
func (h *OfferingHandler) Get(c *gin.Context) { getOne(c, h.offeringSvc.GetByID) }

// Create POST /api/v1/course-offerings
func (h *OfferingHandler) Create(c *gin.Context) { create(c, h.offeringSvc.Create) }

// Update PUT /api/v1/course-offerings/:id
func (h *OfferingHandler) Update(c *gin.Context) { update(c, h.offeringSvc.Update) }

// Delete DELETE /api/v1/course-offerings/:id
func (h *OfferingHandler) Delete(c *gin.Context) { deleteOne(c, h.offeringSvc.Delete) }

// ExportRoster 导出选课名单（xlsx）
// GET /api/v1/course-offerings/:id/roster
func (h *OfferingHandler) ExportRoster(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	buf, filename, err := h.enrollmentSvc.ExportRoster(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	sendFile(c, filename, xlsxContentType, buf.Bytes())
}
