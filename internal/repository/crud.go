package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"faculty-portal/pkg/query"
)

// CRUD 单表增删改查 + 模板化列表
type CRUD[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q *query.ListQuery) ([]T, int64, error)
}

// crudRepo CRUD 的 GORM 实现，由各实体 Repository 嵌入
type crudRepo[T any] struct {
	db   *gorm.DB
	spec *ListSpec
}

func newCRUD[T any](db *gorm.DB, spec *ListSpec) crudRepo[T] {
	return crudRepo[T]{db: db, spec: spec}
}

func (r *crudRepo[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error
}

// GetByID 单条查询总是加载声明的关联
func (r *crudRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.spec.preload(r.db.WithContext(ctx)).
		Where(byID(r.spec.Schema.IDField, id)).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update 按主键全字段写回，不级联保存已加载的关联
// 记录已被删除时返回 ErrRecordNotFound，不会重新插入
func (r *crudRepo[T]) Update(ctx context.Context, entity *T) error {
	res := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit(clause.Associations).
		Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepo[T]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where(byID(r.spec.Schema.IDField, id)).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepo[T]) List(ctx context.Context, q *query.ListQuery) ([]T, int64, error) {
	return list[T](ctx, r.db, q, r.spec)
}
