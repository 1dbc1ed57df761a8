package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/response"
)

// ── Announcement ──

// AnnouncementHandler 公告 HTTP 处理器
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// List GET /api/v1/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	list(c, repository.AnnouncementList, "announcements", h.announcementSvc.List)
}

// Get GET /api/v1/announcements/:id
func (h *AnnouncementHandler) Get(c *gin.Context) { getOne(c, h.announcementSvc.GetByID) }

// Create POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) { create(c, h.announcementSvc.Create) }

// Update PUT /api/v1/announcements/:id（作者或管理员）
func (h *AnnouncementHandler) Update(c *gin.Context) { update(c, h.announcementSvc.Update) }

// Delete DELETE /api/v1/announcements/:id（作者或管理员）
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	ownedDelete(c, h.announcementSvc.Delete)
}

// ── News ──

// NewsHandler 新闻 HTTP 处理器
type NewsHandler struct {
	newsSvc service.NewsService
}

// NewNewsHandler 创建 NewsHandler
func NewNewsHandler(newsSvc service.NewsService) *NewsHandler {
	return &NewsHandler{newsSvc: newsSvc}
}

// List GET /api/v1/news
func (h *NewsHandler) List(c *gin.Context) {
	list(c, repository.NewsList, "news", h.newsSvc.List)
}

// Get GET /api/v1/news/:id
func (h *NewsHandler) Get(c *gin.Context) { getOne(c, h.newsSvc.GetByID) }

// Create POST /api/v1/news
func (h *NewsHandler) Create(c *gin.Context) { create(c, h.newsSvc.Create) }

// Update PUT /api/v1/news/:id
func (h *NewsHandler) Update(c *gin.Context) { update(c, h.newsSvc.Update) }

// Delete DELETE /api/v1/news/:id
func (h *NewsHandler) Delete(c *gin.Context) { ownedDelete(c, h.newsSvc.Delete) }

// ── Event ──

// EventHandler 活动 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// List GET /api/v1/events
func (h *EventHandler) List(c *gin.Context) {
	list(c, repository.EventList, "events", h.eventSvc.List)
}

// Get GET /api/v1/events/:id
func (h *EventHandler) Get(c *gin.Context) { getOne(c, h.eventSvc.GetByID) }

// Create POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) { create(c, h.eventSvc.Create) }

// Update PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) { update(c, h.eventSvc.Update) }

// Delete DELETE /api/v1/events/:id
func (h *EventHandler) Delete(c *gin.Context) { ownedDelete(c, h.eventSvc.Delete) }

// Calendar iCalendar 订阅源
// GET /api/v1/events/calendar.ics?from=2026-09-01&to=2027-01-31
func (h *EventHandler) Calendar(c *gin.Context) {
	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	body, err := h.eventSvc.Calendar(c.Request.Context(), req.From, req.To)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="events.ics"`)
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, calendarContentType, []byte(body))
}

// ── Resource ──

// ResourceHandler 教学资料 HTTP 处理器
type ResourceHandler struct {
	resourceSvc service.ResourceService
}

// NewResourceHandler 创建 ResourceHandler
func NewResourceHandler(resourceSvc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceSvc: resourceSvc}
}

// List GET /api/v1/resources
func (h *ResourceHandler) List(c *gin.Context) {
	list(c, repository.ResourceList, "resources", h.resourceSvc.List)
}

// Get GET /api/v1/resources/:id
func (h *ResourceHandler) Get(c *gin.Context) { getOne(c, h.resourceSvc.GetByID) }

// Create 上传资料（multipart，file 必填）
// POST /api/v1/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req dto.CreateResourceRequest
	if !bindForm(c, &req) {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			fail(c, service.ErrUploadMissing)
			return
		}
		fail(c, bindError(err))
		return
	}

	res, err := h.resourceSvc.Create(c.Request.Context(), &req, file, caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, res)
}

// Update 仅更新元信息，文件本身不可替换
// PUT /api/v1/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) { update(c, h.resourceSvc.Update) }

// Delete 删除资料及其文件
// DELETE /api/v1/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) { ownedDelete(c, h.resourceSvc.Delete) }
