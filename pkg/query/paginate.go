package query

import (
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParsePage 解析页码，缺失 / 非数字 / 非正数时返回 1
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultPage
	}
	return n
}

// ParseLimit 解析每页条数，缺失 / 非法时使用 def（def<=0 时用 DefaultLimit），上限 MaxLimit
func ParseLimit(raw string, def int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// PageRef 相邻页描述
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination 分页元数据，不适用的一侧直接省略（不输出 null）
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Window 分页窗口：startIndex=(page-1)*limit，endIndex=page*limit
type Window struct {
	Page  int
	Limit int
	Total int64
}

// NewWindow 创建分页窗口，page/limit 小于 1 时回退到默认值
func NewWindow(page, limit int, total int64) Window {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if total < 0 {
		total = 0
	}
	return Window{Page: page, Limit: limit, Total: total}
}

// StartIndex 即 skip
func (w Window) StartIndex() int {
	return (w.Page - 1) * w.Limit
}

// EndIndex 当前页之后的第一个下标
func (w Window) EndIndex() int {
	return w.Page * w.Limit
}

// HasNext endIndex < total
func (w Window) HasNext() bool {
	return int64(w.EndIndex()) < w.Total
}

// HasPrev startIndex > 0
func (w Window) HasPrev() bool {
	return w.StartIndex() > 0
}

// TotalPages 总页数
func (w Window) TotalPages() int {
	if w.Total == 0 {
		return 0
	}
	pages := int(w.Total) / w.Limit
	if int(w.Total)%w.Limit > 0 {
		pages++
	}
	return pages
}

// Pagination 生成 next/prev 描述
func (w Window) Pagination() Pagination {
	var p Pagination
	if w.HasNext() {
		p.Next = &PageRef{Page: w.Page + 1, Limit: w.Limit}
	}
	if w.HasPrev() {
		p.Prev = &PageRef{Page: w.Page - 1, Limit: w.Limit}
	}
	return p
}
