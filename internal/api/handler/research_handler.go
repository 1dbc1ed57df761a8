package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/response"
)

// ResearchHandler 研究提交与评审 HTTP 处理器
type ResearchHandler struct {
	researchSvc service.ResearchService
}

// NewResearchHandler 创建 ResearchHandler
func NewResearchHandler(researchSvc service.ResearchService) *ResearchHandler {
	return &ResearchHandler{researchSvc: researchSvc}
}

// List GET /api/v1/research
func (h *ResearchHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	list(c, repository.ResearchList, "research", func(ctx context.Context, q *query.ListQuery) ([]model.Research, int64, error) {
		return h.researchSvc.List(ctx, q, caller)
	})
}

// Get GET /api/v1/research/:id
func (h *ResearchHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	getOne(c, func(ctx context.Context, id string) (*model.Research, error) {
		return h.researchSvc.GetByID(ctx, id, caller)
	})
}

// Create 提交研究并自动分配评审人（multipart，file 可选）
// POST /api/v1/research
func (h *ResearchHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req dto.CreateResearchRequest
	if !bindForm(c, &req) {
		return
	}
	file, ok := optionalFile(c, "file")
	if !ok {
		return
	}

	r, err := h.researchSvc.Create(c.Request.Context(), &req, file, caller)
	if err != nil {
		fail(c, err)
		return
	}

	response.Created(c, r)
}

// Update 修改研究（仅 pending）
// PUT /api/v1/research/:id
func (h *ResearchHandler) Update(c *gin.Context) { update(c, h.researchSvc.Update) }

// Delete DELETE /api/v1/research/:id
func (h *ResearchHandler) Delete(c *gin.Context) { ownedDelete(c, h.researchSvc.Delete) }

// Review 评审决定：pending → accepted | rejected
// PATCH /api/v1/research/:id/review
func (h *ResearchHandler) Review(c *gin.Context) { update(c, h.researchSvc.Review) }

// optionalFile 读取可选的上传文件；未上传时返回 nil
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, true
		}
		fail(c, bindError(err))
		return nil, false
	}
	return fh, true
}
