package service

import (
	"context"
	"errors"
	"mime/multipart"
	"net/mail"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/mailer"
	"faculty-portal/pkg/query"
	"faculty-portal/pkg/rbac"
)

// ── 研究模块业务错误 ──

var (
	ErrResearchNotFound   = apperrors.New(apperrors.KindNotFound, 20701, "研究提交不存在")
	ErrResearchNotPending = apperrors.New(apperrors.KindBadRequest, 20702, "研究已评审，状态不可再变更")
	ErrReviewForbidden    = apperrors.New(apperrors.KindForbidden, 20703, "只有被分配的评审人或同系评审委员可以评审")
	ErrResearchForbidden  = apperrors.New(apperrors.KindForbidden, 20704, "无权访问该研究提交")
)

// ResearchService 研究提交与评审业务接口
type ResearchService interface {
	List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Research, int64, error)
	GetByID(ctx context.Context, id string, caller Caller) (*model.Research, error)
	Create(ctx context.Context, req *dto.CreateResearchRequest, file *multipart.FileHeader, caller Caller) (*model.Research, error)
	Update(ctx context.Context, id string, req *dto.UpdateResearchRequest, caller Caller) (*model.Research, error)
	Delete(ctx context.Context, id string, caller Caller) error
	Review(ctx context.Context, id string, req *dto.ReviewResearchRequest, caller Caller) (*model.Research, error)
}

type researchService struct {
	repo   *repository.Repository
	files  FileStore
	mail   *mailer.Dispatcher
	notify *notifier
	policy *rbac.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewResearchService 创建 ResearchService 实例
func NewResearchService(
	repo *repository.Repository,
	files FileStore,
	mail *mailer.Dispatcher,
	notify *notifier,
	policy *rbac.Policy,
	logger *zap.Logger,
) ResearchService {
	return &researchService{
		repo:   repo,
		files:  files,
		mail:   mail,
		notify: notify,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── List / Get ──────────────────────

// List 没有 research:read_all 权限的用户只能看到本人提交的研究
func (s *researchService) List(ctx context.Context, q *query.ListQuery, caller Caller) ([]model.Research, int64, error) {
	if !s.policy.Can(caller.Role, rbac.PermResearchReadAll) {
		q.Filters = append(q.Filters, query.Condition{Field: "submitted_by", Op: query.OpEq, Value: caller.UserID})
	}
	return s.repo.Research.List(ctx, q)
}

func (s *researchService) GetByID(ctx context.Context, id string, caller Caller) (*model.Research, error) {
	r, err := fetch(ctx, s.repo.Research, id, ErrResearchNotFound)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(caller.Role, rbac.PermResearchReadAll) && r.SubmittedBy != caller.UserID {
		return nil, ErrResearchForbidden
	}
	return r, nil
}

// ────────────────────── Create ──────────────────────

// Create 提交研究并自动分配评审人
//
// 1. 写入研究记录与分配评审人在同一事务内完成
// 2. 邮件与站内通知在事务提交后派发，失败只记录日志
// 3. 系内没有评审委员时保持未分配，不视为错误
func (s *researchService) Create(ctx context.Context, req *dto.CreateResearchRequest, file *multipart.FileHeader, caller Caller) (*model.Research, error) {
	studentID, err := s.resolveStudent(ctx, req.StudentID, caller)
	if err != nil {
		return nil, err
	}
	if err := ensureRef(ctx, s.repo.Department, req.DepartmentID, ErrDepartmentRef); err != nil {
		return nil, err
	}

	r := &model.Research{
		Title:        req.Title,
		Abstract:     req.Abstract,
		Category:     req.Category,
		Status:       model.ResearchPending,
		Authors:      model.StringArray(req.Authors),
		StudentID:    studentID,
		SubmittedBy:  caller.UserID,
		DepartmentID: req.DepartmentID,
	}
	if r.Authors == nil {
		r.Authors = model.StringArray{}
	}
	r.Stamp(caller.UserID)

	if file != nil {
		stored, err := s.files.Save(file, "research")
		if err != nil {
			return nil, uploadError(err)
		}
		r.FileURL = stored.URL
	}

	var reviewer *model.CommitteeMember
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Research.Create(ctx, r); err != nil {
			return err
		}
		picked, err := s.pickReviewer(ctx, tx, r.DepartmentID)
		if err != nil {
			return err
		}
		if picked == nil {
			return nil
		}
		if err := tx.Research.AssignReviewer(ctx, r.ResearchID, picked.CommitteeMemberID); err != nil {
			return err
		}
		reviewer = picked
		return nil
	})
	if err != nil {
		if r.FileURL != "" {
			if rmErr := s.files.Remove(r.FileURL); rmErr != nil {
				s.logger.Warn("清理上传文件失败", zap.String("url", r.FileURL), zap.Error(rmErr))
			}
		}
		s.logger.Error("提交研究失败", zap.Error(err))
		return nil, err
	}

	if reviewer != nil {
		s.logger.Info("已分配评审人",
			zap.String("research_id", r.ResearchID),
			zap.String("reviewer_id", reviewer.CommitteeMemberID),
		)
	} else {
		s.logger.Info("系内无评审委员，研究保持未分配",
			zap.String("research_id", r.ResearchID),
			zap.String("department_id", r.DepartmentID),
		)
	}

	s.afterSubmit(ctx, r, reviewer, caller)

	result, err := s.repo.Research.GetByID(ctx, r.ResearchID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pickReviewer 读取系内委员与各自的待审数量，选出负载最低者
// 并发提交可能读到同一份负载快照而选中同一人：负载均衡是尽力而为，不加锁
func (s *researchService) pickReviewer(ctx context.Context, repo *repository.Repository, departmentID string) (*model.CommitteeMember, error) {
	members, err := repo.Committee.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.CommitteeMemberID
	}
	pending, err := repo.Committee.CountPending(ctx, ids)
	if err != nil {
		return nil, err
	}
	return selectReviewer(members, pending), nil
}

// selectReviewer 待审数最少者胜出；数量相同时取 committee_member_id 最小者，与输入顺序无关
func selectReviewer(members []model.CommitteeMember, pending map[string]int64) *model.CommitteeMember {
	if len(members) == 0 {
		return nil
	}
	best := &members[0]
	for i := 1; i < len(members); i++ {
		m := &members[i]
		pm, pb := pending[m.CommitteeMemberID], pending[best.CommitteeMemberID]
		if pm < pb || (pm == pb && m.CommitteeMemberID < best.CommitteeMemberID) {
			best = m
		}
	}
	return best
}

func (s *researchService) afterSubmit(ctx context.Context, r *model.Research, reviewer *model.CommitteeMember, caller Caller) {
	s.notify.toAdmins(ctx, notice{
		Type:        model.NotifyResearchSubmitted,
		Title:       "新的研究提交",
		Message:     "《" + r.Title + "》已提交，等待评审",
		SenderID:    caller.UserID,
		RelatedType: "research",
		RelatedID:   r.ResearchID,
	})

	if reviewer == nil {
		return
	}
	s.notify.toUsers(ctx, []string{reviewer.UserID}, notice{
		Type:        model.NotifyResearchAssigned,
		Priority:    model.PriorityHigh,
		Title:       "研究评审分配",
		Message:     "《" + r.Title + "》已分配给您评审",
		SenderID:    caller.UserID,
		RelatedType: "research",
		RelatedID:   r.ResearchID,
	})

	if reviewer.User == nil {
		return
	}
	msg, err := mailer.ReviewerAssigned(
		mail.Address{Name: reviewer.User.Name, Address: reviewer.User.Email},
		r.ResearchID, r.Title,
	)
	if err != nil {
		s.logger.Warn("渲染评审分配邮件失败", zap.Error(err))
		return
	}
	s.mail.Dispatch(msg)
}

// ────────────────────── Update ──────────────────────

// Update 仅 pending 状态下提交人或管理员可修改内容
func (s *researchService) Update(ctx context.Context, id string, req *dto.UpdateResearchRequest, caller Caller) (*model.Research, error) {
	r, err := fetch(ctx, s.repo.Research, id, ErrResearchNotFound)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && r.SubmittedBy != caller.UserID {
		return nil, ErrResearchForbidden
	}
	if r.IsTerminal() {
		return nil, ErrResearchNotPending
	}

	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Abstract != nil {
		r.Abstract = *req.Abstract
	}
	if req.Category != nil {
		r.Category = *req.Category
	}
	if req.Authors != nil {
		r.Authors = model.StringArray(*req.Authors)
	}
	r.Stamp(caller.UserID)

	// 读取后被评审的记录不会被覆盖回 pending
	if err := s.repo.Research.UpdateContent(ctx, r); err != nil {
		s.logger.Error("更新研究失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.repo.Research.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *researchService) Delete(ctx context.Context, id string, caller Caller) error {
	r, err := fetch(ctx, s.repo.Research, id, ErrResearchNotFound)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && r.SubmittedBy != caller.UserID {
		return ErrResearchForbidden
	}
	if err := remove(ctx, s.repo.Research, id, ErrResearchNotFound); err != nil {
		return err
	}
	if r.FileURL != "" {
		if err := s.files.Remove(r.FileURL); err != nil {
			s.logger.Warn("删除研究附件失败", zap.String("url", r.FileURL), zap.Error(err))
		}
	}
	return nil
}

// ────────────────────── Review ──────────────────────

// Review pending → accepted | rejected
// 仅被分配的评审人或与研究同系的评审委员可以评审；越权时状态保持不变
func (s *researchService) Review(ctx context.Context, id string, req *dto.ReviewResearchRequest, caller Caller) (*model.Research, error) {
	r, err := fetch(ctx, s.repo.Research, id, ErrResearchNotFound)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.Committee.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewForbidden
		}
		return nil, err
	}
	assigned := r.ReviewerID != nil && *r.ReviewerID == member.CommitteeMemberID
	if !assigned && member.DepartmentID != r.DepartmentID {
		s.logger.Warn("越权评审被拒绝",
			zap.String("research_id", id),
			zap.String("committee_member_id", member.CommitteeMemberID),
		)
		return nil, ErrReviewForbidden
	}

	if r.IsTerminal() {
		return nil, ErrResearchNotPending
	}

	now := s.now()
	r.Status = req.Status
	r.ReviewerComments = req.Comments
	r.ReviewDate = &now
	r.Stamp(caller.UserID)

	// 条件更新：期间被他人评审过则返回乐观锁冲突
	if err := s.repo.Research.Review(ctx, r); err != nil {
		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			s.logger.Error("写入评审结论失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.afterReview(ctx, r, caller)
	return s.repo.Research.GetByID(ctx, id)
}

func (s *researchService) afterReview(ctx context.Context, r *model.Research, caller Caller) {
	s.notify.toUsers(ctx, []string{r.SubmittedBy}, notice{
		Type:        model.NotifyResearchReviewed,
		Title:       "研究评审结果",
		Message:     "《" + r.Title + "》评审结果：" + r.Status,
		SenderID:    caller.UserID,
		RelatedType: "research",
		RelatedID:   r.ResearchID,
	})

	if r.Student == nil || r.Student.Email == "" {
		return
	}
	msg, err := mailer.ResearchReviewed(
		mail.Address{Name: r.Student.Name, Address: r.Student.Email},
		r.Title, r.Status, r.ReviewerComments,
	)
	if err != nil {
		s.logger.Warn("渲染评审结果邮件失败", zap.Error(err))
		return
	}
	s.mail.Dispatch(msg)
}

// ── 内部辅助方法 ──

// resolveStudent 学生提交时取本人档案；代提交时必须指定 student_id
func (s *researchService) resolveStudent(ctx context.Context, studentID string, caller Caller) (string, error) {
	if caller.Role == model.RoleStudent {
		st, err := s.repo.Student.GetByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrStudentProfileMissing
			}
			return "", err
		}
		return st.StudentID, nil
	}
	if studentID == "" {
		return "", ErrStudentRequired
	}
	if err := ensureRef(ctx, s.repo.Student, studentID, ErrStudentRef); err != nil {
		return "", err
	}
	return studentID, nil
}
