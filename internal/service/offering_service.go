package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

// ── 开课模块业务错误 ──

var (
	ErrOfferingNotFound  = apperrors.New(apperrors.KindNotFound, 20501, "开课记录不存在")
	ErrOfferingRef       = apperrors.New(apperrors.KindBadRequest, 20502, "offering_id 对应的开课记录不存在")
	ErrOfferingDuplicate = apperrors.New(apperrors.KindConflict, 20503, "该教师本学期已开设此课程")
)

// OfferingService 开课业务接口
type OfferingService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.CourseOffering, int64, error)
	GetByID(ctx context.Context, id string) (*model.CourseOffering, error)
	Create(ctx context.Context, req *dto.CreateOfferingRequest, caller Caller) (*model.CourseOffering, error)
	Update(ctx context.Context, id string, req *dto.UpdateOfferingRequest, caller Caller) (*model.CourseOffering, error)
	Delete(ctx context.Context, id string) error
}

type offeringService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewOfferingService 创建 OfferingService 实例
func NewOfferingService(repo *repository.Repository, logger *zap.Logger) OfferingService {
	return &offeringService{repo: repo, logger: logger}
}

func (s *offeringService) List(ctx context.Context, q *query.ListQuery) ([]model.CourseOffering, int64, error) {
	return s.repo.Offering.List(ctx, q)
}

func (s *offeringService) GetByID(ctx context.Context, id string) (*model.CourseOffering, error) {
	return fetch(ctx, s.repo.Offering, id, ErrOfferingNotFound)
}

// ────────────────────── Create ──────────────────────

func (s *offeringService) Create(ctx context.Context, req *dto.CreateOfferingRequest, caller Caller) (*model.CourseOffering, error) {
	if err := ensureRef(ctx, s.repo.Course, req.CourseID, ErrCourseRef); err != nil {
		return nil, err
	}
	if err := ensureRef(ctx, s.repo.Teacher, req.TeacherID, ErrTeacherRef); err != nil {
		return nil, err
	}
	if err := s.checkSlot(ctx, "", req.CourseID, req.TeacherID, req.Semester, req.Year); err != nil {
		return nil, err
	}

	o := &model.CourseOffering{
		CourseID:  req.CourseID,
		TeacherID: req.TeacherID,
		Semester:  req.Semester,
		Year:      req.Year,
		Capacity:  req.Capacity,
		Schedule:  req.Schedule,
		Room:      req.Room,
	}
	o.Stamp(caller.UserID)

	// 并发请求越过 checkSlot 时由唯一约束兜底，翻译为 Conflict
	if err := s.repo.Offering.Create(ctx, o); err != nil {
		s.logger.Error("创建开课失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, o.OfferingID)
}

// ────────────────────── Update ──────────────────────

func (s *offeringService) Update(ctx context.Context, id string, req *dto.UpdateOfferingRequest, caller Caller) (*model.CourseOffering, error) {
	o, err := fetch(ctx, s.repo.Offering, id, ErrOfferingNotFound)
	if err != nil {
		return nil, err
	}

	slotChanged := false
	if req.CourseID != nil && *req.CourseID != o.CourseID {
		if err := ensureRef(ctx, s.repo.Course, *req.CourseID, ErrCourseRef); err != nil {
			return nil, err
		}
		o.CourseID = *req.CourseID
		slotChanged = true
	}
	if req.TeacherID != nil && *req.TeacherID != o.TeacherID {
		if err := ensureRef(ctx, s.repo.Teacher, *req.TeacherID, ErrTeacherRef); err != nil {
			return nil, err
		}
		o.TeacherID = *req.TeacherID
		slotChanged = true
	}
	if req.Semester != nil && *req.Semester != o.Semester {
		o.Semester = *req.Semester
		slotChanged = true
	}
	if req.Year != nil && *req.Year != o.Year {
		o.Year = *req.Year
		slotChanged = true
	}
	if slotChanged {
		if err := s.checkSlot(ctx, id, o.CourseID, o.TeacherID, o.Semester, o.Year); err != nil {
			return nil, err
		}
	}
	if req.Capacity != nil {
		o.Capacity = *req.Capacity
	}
	if req.Schedule != nil {
		o.Schedule = *req.Schedule
	}
	if req.Room != nil {
		o.Room = *req.Room
	}
	o.Stamp(caller.UserID)

	if err := s.repo.Offering.Update(ctx, o); err != nil {
		s.logger.Error("更新开课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *offeringService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.repo.Offering, id, ErrOfferingNotFound)
}

// checkSlot (course, teacher, semester, year) 组合必须唯一；selfID 为更新时的自身 ID
func (s *offeringService) checkSlot(ctx context.Context, selfID, courseID, teacherID, semester string, year int) error {
	existing, err := s.repo.Offering.FindSlot(ctx, courseID, teacherID, semester, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.OfferingID != selfID {
		return ErrOfferingDuplicate
	}
	return nil
}
