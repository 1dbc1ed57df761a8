// Package query 把 HTTP 查询串翻译为列表查询：过滤条件、排序、字段投影与分页窗口。
//
// 支持的参数：
//   - field=value                     等值匹配
//   - field[gt|gte|lt|lte|in]=value   比较 / 集合匹配（in 以逗号分隔）
//   - select=a,b                      字段投影（始终保留主键）
//   - sort=a,-b                       排序，"-" 前缀表示降序；缺省使用资源默认排序
//   - searchTerm=x&fieldName=f        f=date 时按自然日匹配，否则不区分大小写子串匹配
//   - category=a,b                    分类集合匹配
//   - page / limit                    分页
//
// 字段名只允许来自资源 Schema 白名单；未知字段转为恒假条件（匹配 0 条），不会报错。
package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 保留参数，不参与过滤
const (
	ParamSelect     = "select"
	ParamSort       = "sort"
	ParamPage       = "page"
	ParamLimit      = "limit"
	ParamPopulate   = "populate"
	ParamSearchTerm = "searchTerm"
	ParamFieldName  = "fieldName"
	ParamCategory   = "category"

	// searchTerm 中按日期匹配的字段名
	dateFieldName = "date"
)

var reserved = map[string]struct{}{
	ParamSelect: {}, ParamSort: {}, ParamPage: {}, ParamLimit: {}, ParamPopulate: {},
	ParamSearchTerm: {}, ParamFieldName: {}, ParamCategory: {},
}

// ErrInvalidValue 参数值无法转换为字段类型
var ErrInvalidValue = errors.New("查询参数值无效")

// FieldType 字段类型，决定参数值的转换方式
type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
	Time
	UUID
)

// Op 过滤操作符
type Op string

const (
	OpEq      Op = "eq"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpILike   Op = "ilike"
	OpBetween Op = "between"
	OpNone    Op = "none" // 恒假：未知字段 / 未知操作符
)

var bracketKey = regexp.MustCompile(`^([A-Za-z0-9_]+)\[([A-Za-z]+)\]$`)

var comparisonOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// Condition 单个过滤条件
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// SortKey 排序键
type SortKey struct {
	Field string
	Desc  bool
}

// Schema 资源可查询字段声明
type Schema struct {
	IDField       string               // 主键（投影时始终保留、排序兜底）
	Fields        map[string]FieldType // 可过滤 / 排序 / 投影的列
	Relations     []string             // 可出现在 select 中的关联字段（json key）
	DateField     string               // searchTerm + fieldName=date 作用的列，空表示不支持
	CategoryField string               // category 参数作用的列，空表示不支持
	DefaultSort   string               // 例如 "-created_at"
	DefaultLimit  int
}

func (s *Schema) fieldType(name string) (FieldType, bool) {
	t, ok := s.Fields[name]
	return t, ok
}

// ListQuery 一次列表请求的查询描述（请求级，用完即弃）
type ListQuery struct {
	Filters  []Condition
	Sort     []SortKey
	Select   []string
	Page     int
	Limit    int
	Populate bool
}

// Offset 跳过的行数
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Parse 按 Schema 解析查询参数
// 仅当已知字段的取值无法转换时返回错误（包装 ErrInvalidValue）
func Parse(values url.Values, schema *Schema) (*ListQuery, error) {
	q := &ListQuery{
		Page:     ParsePage(values.Get(ParamPage)),
		Limit:    ParseLimit(values.Get(ParamLimit), schema.DefaultLimit),
		Populate: parseFlag(values.Get(ParamPopulate)),
	}

	// 按 key 排序，保证生成的 SQL 稳定
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}
		raw := values.Get(key)

		field, op := key, OpEq
		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field = m[1]
			mapped, ok := comparisonOps[strings.ToLower(m[2])]
			if !ok {
				q.Filters = append(q.Filters, Condition{Field: field, Op: OpNone})
				continue
			}
			op = mapped
		}

		ft, known := schema.fieldType(field)
		if !known {
			q.Filters = append(q.Filters, Condition{Field: field, Op: OpNone})
			continue
		}

		cond, err := buildCondition(field, op, raw, ft)
		if err != nil {
			return nil, err
		}
		q.Filters = append(q.Filters, cond)
	}

	if cond, ok := parseSearch(values, schema); ok {
		q.Filters = append(q.Filters, cond)
	}

	if raw := values.Get(ParamCategory); raw != "" {
		if schema.CategoryField == "" {
			q.Filters = append(q.Filters, Condition{Field: ParamCategory, Op: OpNone})
		} else if items := splitList(raw); len(items) > 0 {
			vals := make([]interface{}, 0, len(items))
			for _, it := range items {
				vals = append(vals, it)
			}
			q.Filters = append(q.Filters, Condition{Field: schema.CategoryField, Op: OpIn, Value: vals})
		}
	}

	q.Sort = parseSort(values.Get(ParamSort), schema)
	q.Select = parseSelect(values.Get(ParamSelect), schema)

	return q, nil
}

func buildCondition(field string, op Op, raw string, ft FieldType) (Condition, error) {
	if op == OpIn {
		items := splitList(raw)
		vals := make([]interface{}, 0, len(items))
		for _, it := range items {
			v, err := convert(it, ft)
			if err != nil {
				return Condition{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, it)
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return Condition{Field: field, Op: OpNone}, nil
		}
		return Condition{Field: field, Op: OpIn, Value: vals}, nil
	}

	v, err := convert(raw, ft)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, raw)
	}
	return Condition{Field: field, Op: op, Value: v}, nil
}

// parseSearch 处理 searchTerm + fieldName
func parseSearch(values url.Values, schema *Schema) (Condition, bool) {
	term := strings.TrimSpace(values.Get(ParamSearchTerm))
	fieldName := strings.TrimSpace(values.Get(ParamFieldName))
	if term == "" || fieldName == "" {
		return Condition{}, false
	}

	if fieldName == dateFieldName {
		if schema.DateField == "" {
			return Condition{Field: fieldName, Op: OpNone}, true
		}
		day, ok := ParseDate(term)
		if !ok {
			// 日期无法解析时不加条件
			return Condition{}, false
		}
		start, end := DayRange(day)
		return Condition{Field: schema.DateField, Op: OpBetween, Value: [2]time.Time{start, end}}, true
	}

	ft, known := schema.fieldType(fieldName)
	if !known || ft != String {
		return Condition{Field: fieldName, Op: OpNone}, true
	}
	return Condition{Field: fieldName, Op: OpILike, Value: "%" + escapeLike(term) + "%"}, true
}

func parseSort(raw string, schema *Schema) []SortKey {
	keys := sortKeys(raw, schema)
	if len(keys) == 0 {
		keys = sortKeys(schema.DefaultSort, schema)
	}
	return keys
}

func sortKeys(raw string, schema *Schema) []SortKey {
	var keys []SortKey
	for _, item := range splitList(raw) {
		desc := strings.HasPrefix(item, "-")
		name := strings.TrimPrefix(strings.TrimPrefix(item, "-"), "+")
		if _, ok := schema.fieldType(name); !ok {
			continue
		}
		keys = append(keys, SortKey{Field: name, Desc: desc})
	}
	return keys
}

func parseSelect(raw string, schema *Schema) []string {
	var fields []string
	seen := make(map[string]struct{})
	for _, item := range splitList(raw) {
		if _, dup := seen[item]; dup {
			continue
		}
		_, isField := schema.fieldType(item)
		if !isField && !contains(schema.Relations, item) {
			continue
		}
		seen[item] = struct{}{}
		fields = append(fields, item)
	}
	return fields
}

func convert(raw string, ft FieldType) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch ft {
	case Int:
		return strconv.ParseInt(raw, 10, 64)
	case Float:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		if t, ok := ParseDate(raw); ok {
			return t, nil
		}
		return nil, ErrInvalidValue
	case UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	default:
		return raw, nil
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// ParseDate 解析日历日期，返回当天 UTC 零点
func ParseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DayRange 返回 [00:00:00.000, 23:59:59.999]
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFlag(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
