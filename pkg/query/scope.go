package query

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilterScope 应用过滤条件（列名来自 Schema 白名单，取值均为绑定参数）
func (q *ListQuery) FilterScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range q.Filters {
			db = db.Where(cond.Expression())
		}
		return db
	}
}

// SortScope 应用排序；idField 非空时追加主键升序，保证分页稳定
func (q *ListQuery) SortScope(idField string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		hasID := false
		for _, key := range q.Sort {
			if key.Field == idField {
				hasID = true
			}
			db = db.Order(clause.OrderByColumn{Column: column(key.Field), Desc: key.Desc})
		}
		if idField != "" && !hasID {
			db = db.Order(clause.OrderByColumn{Column: column(idField)})
		}
		return db
	}
}

// PageScope 应用 offset/limit（必须在过滤、排序之后）
func (q *ListQuery) PageScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

// Expression 把条件转换为 GORM 子句
func (c Condition) Expression() clause.Expression {
	col := column(c.Field)
	switch c.Op {
	case OpEq:
		return clause.Eq{Column: col, Value: c.Value}
	case OpGt:
		return clause.Gt{Column: col, Value: c.Value}
	case OpGte:
		return clause.Gte{Column: col, Value: c.Value}
	case OpLt:
		return clause.Lt{Column: col, Value: c.Value}
	case OpLte:
		return clause.Lte{Column: col, Value: c.Value}
	case OpIn:
		vals, _ := c.Value.([]interface{})
		return clause.IN{Column: col, Values: vals}
	case OpILike:
		return clause.Expr{SQL: "? ILIKE ?", Vars: []interface{}{col, c.Value}}
	case OpBetween:
		rng, _ := c.Value.([2]time.Time)
		return clause.Expr{SQL: "? BETWEEN ? AND ?", Vars: []interface{}{col, rng[0], rng[1]}}
	default:
		return clause.Expr{SQL: "1 = 0"}
	}
}

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}
