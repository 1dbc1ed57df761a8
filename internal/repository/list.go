package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"faculty-portal/pkg/query"
)

// Preload 关联加载声明：Path 为 GORM 关联路径，Columns 为空时加载全部列
// Columns 非空时必须包含被关联表的主键
type Preload struct {
	Path    string
	Columns []string
}

// ListSpec 列表接口模板参数：字段白名单、默认排序与关联加载，每个资源声明一次
type ListSpec struct {
	Schema         *query.Schema
	Preloads       []Preload
	AlwaysPopulate bool // 为 true 时忽略 populate 参数，总是加载关联
}

func (s *ListSpec) preload(db *gorm.DB) *gorm.DB {
	for _, p := range s.Preloads {
		if len(p.Columns) == 0 {
			db = db.Preload(p.Path)
			continue
		}
		cols := p.Columns
		db = db.Preload(p.Path, func(tx *gorm.DB) *gorm.DB {
			return tx.Select(cols)
		})
	}
	return db
}

// list 通用列表查询
// 执行顺序：带过滤条件计数 → 过滤 → 排序 → offset/limit → 查询 → 在当前页结果上加载关联
func list[T any](ctx context.Context, db *gorm.DB, q *query.ListQuery, spec *ListSpec) ([]T, int64, error) {
	base := db.WithContext(ctx).
		Model(new(T)).
		Scopes(q.FilterScope()).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, q.Limit)
	if total == 0 || int64(q.Offset()) >= total {
		return items, total, nil
	}

	tx := base.Scopes(q.SortScope(spec.Schema.IDField), q.PageScope())
	if q.Populate || spec.AlwaysPopulate {
		tx = spec.preload(tx)
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func byID(field, id string) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field}, Value: id}
}
