package service

import (
	"context"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"faculty-portal/internal/dto"
	"faculty-portal/internal/model"
	"faculty-portal/internal/repository"
	"faculty-portal/pkg/apperrors"
	"faculty-portal/pkg/query"
)

var (
	ErrEventNotFound  = apperrors.New(apperrors.KindNotFound, 20831, "活动不存在")
	ErrEventTimeRange = apperrors.New(apperrors.KindBadRequest, 20832, "活动结束时间不能早于开始时间")
	ErrCalendarRange  = apperrors.New(apperrors.KindBadRequest, 20833, "日历时间窗口无效（最长 366 天）")
)

const (
	calendarProductID  = "-//Faculty Portal//Events//ZH"
	calendarName       = "学院活动"
	calendarMaxSpan    = 366 * 24 * time.Hour
	calendarDefaultAgo = 30 * 24 * time.Hour
	calendarDefaultFwd = 180 * 24 * time.Hour
)

// EventService 活动业务接口
type EventService interface {
	List(ctx context.Context, q *query.ListQuery) ([]model.Event, int64, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Create(ctx context.Context, req *dto.CreateEventRequest, caller Caller) (*model.Event, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest, caller Caller) (*model.Event, error)
	Delete(ctx context.Context, id string, caller Caller) error
	// Calendar 生成 iCalendar (RFC 5545) 订阅内容；from/to 为空时取默认窗口
	Calendar(ctx context.Context, from, to *time.Time) (string, error)
}

type eventService struct {
	repo    *repository.Repository
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, baseURL string, logger *zap.Logger) EventService {
	return &eventService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *eventService) List(ctx context.Context, q *query.ListQuery) ([]model.Event, int64, error) {
	return s.repo.Event.List(ctx, q)
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return fetch(ctx, s.repo.Event, id, ErrEventNotFound)
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest, caller Caller) (*model.Event, error) {
	if req.EndAt.Before(req.StartAt) {
		return nil, ErrEventTimeRange
	}
	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
	}

	e := &model.Event{
		Title:        req.Title,
		Description:  req.Description,
		Category:     orDefault(req.Category, "general"),
		Location:     req.Location,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		OrganizerID:  caller.UserID,
		DepartmentID: req.DepartmentID,
	}
	e.Stamp(caller.UserID)

	if err := s.repo.Event.Create(ctx, e); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, e.EventID)
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest, caller Caller) (*model.Event, error) {
	e, err := fetch(ctx, s.repo.Event, id, ErrEventNotFound)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(e, caller); err != nil {
		return nil, err
	}

	if req.DepartmentID != nil {
		if err := ensureRef(ctx, s.repo.Department, *req.DepartmentID, ErrDepartmentRef); err != nil {
			return nil, err
		}
		e.DepartmentID = req.DepartmentID
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartAt != nil {
		e.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		e.EndAt = *req.EndAt
	}
	if e.EndAt.Before(e.StartAt) {
		return nil, ErrEventTimeRange
	}
	e.Stamp(caller.UserID)

	if err := s.repo.Event.Update(ctx, e); err != nil {
		s.logger.Error("更新活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *eventService) Delete(ctx context.Context, id string, caller Caller) error {
	e, err := fetch(ctx, s.repo.Event, id, ErrEventNotFound)
	if err != nil {
		return err
	}
	if err := authorizeOwner(e, caller); err != nil {
		return err
	}
	return remove(ctx, s.repo.Event, id, ErrEventNotFound)
}

// ────────────────────── Calendar ──────────────────────

func (s *eventService) Calendar(ctx context.Context, from, to *time.Time) (string, error) {
	now := s.now()
	start := now.Add(-calendarDefaultAgo)
	end := now.Add(calendarDefaultFwd)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	if !end.After(start) || end.Sub(start) > calendarMaxSpan {
		return "", ErrCalendarRange
	}

	events, err := s.repo.Event.ListBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("查询活动失败", zap.Error(err))
		return "", err
	}
	return buildCalendar(events, s.baseURL, now), nil
}

// buildCalendar 每个活动一个 VEVENT，UID 使用活动 ID 保证订阅端可去重更新
func buildCalendar(events []model.Event, baseURL string, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(calendarName)

	for _, e := range events {
		ev := cal.AddEvent(e.EventID + "@faculty-portal")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(e.CreatedAt.UTC())
		ev.SetModifiedAt(e.UpdatedAt.UTC())
		ev.SetStartAt(e.StartAt.UTC())
		ev.SetEndAt(e.EndAt.UTC())
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		if e.Category != "" {
			ev.AddProperty(ics.ComponentPropertyCategories, e.Category)
		}
		if e.Organizer != nil && e.Organizer.Email != "" {
			ev.SetOrganizer("mailto:"+e.Organizer.Email, ics.WithCN(e.Organizer.Name))
		}
		if baseURL != "" {
			ev.SetURL(baseURL + "/api/v1/events/" + e.EventID)
		}
	}
	return cal.Serialize()
}
