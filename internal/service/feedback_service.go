package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/rbac"
)

var (
	ErrFeedbackNotFound  = apperrors.New(apperrors.KindNotFound, 21001, "反馈不存在")
	ErrFeedbackForbidden = apperrors.New(apperrors.KindForbidden, 21002, "只能查看本人提交的反馈")
)

// FeedbackService 质量保障反馈业务接口
type FeedbackService interface {
	List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Feedback, int64, error)
	GetByID(ctx context.Context, id string, caller Caller) (*model.Feedback, error)
	Create(ctx context.Context, req *dto.CreateFeedbackRequest, caller Caller) (*model.Feedback, error)
	// Update 管理员变更状态或回复
	Update(ctx context.Context, id string, req *dto.UpdateFeedbackRequest, caller Caller) (*model.Feedback, error)
	Delete(ctx context.Context, id string) error
}

type feedbackService struct {
	repo   *repository.Repository
	notify *notifier
	policy *rbac.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewFeedbackService 创建 FeedbackService 实例
func NewFeedbackService(repo *repository.Repository, notify *notifier, policy *rbac.Policy, logger *zap.Logger) FeedbackService {
	return &feedbackService{repo: repo, notify: notify, policy: policy, logger: logger, now: time.Now}
}

// canManage 具备反馈管理权限者可见全部反馈
func (s *feedbackService) canManage(caller Caller) bool {
	return caller.IsAdmin() || (s.policy != nil && s.policy.Can(caller.Role, rbac.PermFeedbackManage))
}

// List 管理者看到全部反馈，其他人只看到本人提交的
func (s *feedbackService) List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Feedback, int64, error) {
	if !s.canManage(caller) {
		q.Filters = append(q.Filters, query.Condition{Field: "submitter_id", Op: query.OpEq, Value: caller.UserID})
	}
	return s.repo.Feedback.List(ctx, q)
}

func (s *feedbackService) GetByID(ctx context.Context, id string, caller Caller) (*model.Feedback, error) {
	f, err := fetch(ctx, s.repo.Feedback, id, ErrFeedbackNotFound)
	if err != nil {
		return nil, err
	}
	if !s.canManage(caller) && f.SubmitterID != caller.UserID {
		return nil, ErrFeedbackForbidden
	}
	return f, nil
}

func (s *feedbackService) Create(ctx context.Context, req *dto.CreateFeedbackRequest, caller Caller) (*model.Feedback, error) {
	if req.CourseID != nil {
		if err := ensureRef(ctx, s.repo.Course, *req.CourseID, ErrCourseRef); err != nil {
			return nil, err
		}
	}

	f := &model.Feedback{
		SubmitterID: caller.UserID,
		Category:    req.Category,
		Subject:     req.Subject,
		Message:     req.Message,
		Rating:      req.Rating,
		CourseID:    req.CourseID,
		Status:      model.FeedbackOpen,
	}
	f.Stamp(caller.UserID)

	if err := s.repo.Feedback.Create(ctx, f); err != nil {
		s.logger.Error("提交反馈失败", zap.Error(err))
		return nil, err
	}

	s.notify.toAdmins(ctx, notice{
		Type:        model.NotifyFeedbackSubmitted,
		Title:       "新的质量反馈",
		Message:     "[" + f.Category + "] " + f.Subject,
		SenderID:    caller.UserID,
		RelatedType: "feedback",
		RelatedID:   f.FeedbackID,
	})

	return s.repo.Feedback.GetByID(ctx, f.FeedbackID)
}

func (s *feedbackService) Update(ctx context.Context, id string, req *dto.UpdateFeedbackRequest, caller Caller) (*model.Feedback, error) {
	f, err := fetch(ctx, s.repo.Feedback, id, ErrFeedbackNotFound)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		f.Status = *req.Status
	}
	if req.Response != nil {
		now := s.now()
		f.Response = *req.Response
		f.RespondedBy = strPtr(caller.UserID)
		f.RespondedAt = &now
	}
	f.Stamp(caller.UserID)

	if err := s.repo.Feedback.Update(ctx, f); err != nil {
		s.logger.Error("更新反馈失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Response != nil || req.Status != nil {
		s.notify.toUsers(ctx, []string{f.SubmitterID}, notice{
			Type:        model.NotifySystem,
			Title:       "反馈状态已更新",
			Message:     "您的反馈「" + f.Subject + "」当前状态：" + f.Status,
			SenderID:    caller.UserID,
			RelatedType: "feedback",
			RelatedID:   f.FeedbackID,
		})
	}
	return s.repo.Feedback.GetByID(ctx, id)
}

func (s *feedbackService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Feedback, id, ErrFeedbackNotFound)
}

