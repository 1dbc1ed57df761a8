package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"faculty-portal/internal/model"
)

// AnnouncementRepository 公告数据访问接口
type AnnouncementRepository interface {
	CRUD[model.Announcement]
}

// NewAnnouncementRepo 创建 AnnouncementRepository 实例
func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepository {
	r := newCRUD[model.Announcement](db, AnnouncementList)
	return &r
}

// NewsRepository 新闻数据访问接口
type NewsRepository interface {
	CRUD[model.News]
}

// NewNewsRepo 创建 NewsRepository 实例
func NewNewsRepo(db *gorm.DB) NewsRepository {
	r := newCRUD[model.News](db, NewsList)
	return &r
}

// EventRepository 活动数据访问接口
type EventRepository interface {
	CRUD[model.Event]
	// ListBetween 与 [from, to) 有交集的活动（iCalendar 订阅）
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

type eventRepo struct {
	crudRepo[model.Event]
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{crudRepo: newCRUD[model.Event](db, EventList)}
}

func (r *eventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Preload("Organizer").
		Where("start_at < ? AND end_at >= ?", to, from).
		Order("start_at ASC").
		Find(&events).Error
	return events, err
}

// ResourceRepository 教学资料数据访问接口
type ResourceRepository interface {
	CRUD[model.Resource]
}

// NewResourceRepo 创建 ResourceRepository 实例
func NewResourceRepo(db *gorm.DB) ResourceRepository {
	r := newCRUD[model.Resource](db, ResourceList)
	return &r
}

// FeedbackRepository 质量反馈数据访问接口
type FeedbackRepository interface {
	CRUD[model.Feedback]
}

// NewFeedbackRepo 创建 FeedbackRepository 实例
func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	r := newCRUD[model.Feedback](db, FeedbackList)
	return &r
}
