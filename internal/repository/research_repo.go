package repository

import (
	"context"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
	"faculty-portal/pkg/apperrors"
)

// ResearchRepository 研究提交数据访问接口
type ResearchRepository interface {
	CRUD[model.Research]
	// AssignReviewer 设置评审人（仅 pending 状态）
	AssignReviewer(ctx context.Context, researchID, reviewerID string) error
	// Review 写入评审结论；仅当记录仍为 pending 且 version 未变时生效，否则返回 ErrOptimisticLock
	Review(ctx context.Context, research *model.Research) error
	// UpdateContent 只写可编辑的内容字段；记录已离开 pending 或 version 已变时返回 ErrOptimisticLock
	UpdateContent(ctx context.Context, research *model.Research) error
}

type researchRepo struct {
	crudRepo[model.Research]
}

// NewResearchRepo 创建 ResearchRepository 实例
func NewResearchRepo(db *gorm.DB) ResearchRepository {
	return &researchRepo{crudRepo: newCRUD[model.Research](db, ResearchList)}
}

func (r *researchRepo) AssignReviewer(ctx context.Context, researchID, reviewerID string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Research{}).
		Where("research_id = ? AND status = ?", researchID, model.ResearchPending).
		Updates(map[string]interface{}{
			"reviewer_id": reviewerID,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *researchRepo) Review(ctx context.Context, research *model.Research) error {
	res := r.db.WithContext(ctx).
		Model(&model.Research{}).
		Where("research_id = ? AND status = ? AND version = ?",
			research.ResearchID, model.ResearchPending, research.Version).
		Updates(map[string]interface{}{
			"status":            research.Status,
			"reviewer_comments": research.ReviewerComments,
			"review_date":       research.ReviewDate,
			"updated_by":        research.UpdatedBy,
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	research.Version++
	return nil
}

func (r *researchRepo) UpdateContent(ctx context.Context, research *model.Research) error {
	res := r.db.WithContext(ctx).
		Model(&model.Research{}).
		Where("research_id = ? AND status = ? AND version = ?",
			research.ResearchID, model.ResearchPending, research.Version).
		Updates(map[string]interface{}{
			"title":      research.Title,
			"abstract":   research.Abstract,
			"category":   research.Category,
			"authors":    research.Authors,
			"updated_by": research.UpdatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	research.Version++
	return nil
}
