// Package pagination implements the shared filter/sort/page pipeline used by
// the customer and invoice list endpoints.
package pagination

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	directionAsc  = "asc"
	directionDesc = "desc"
)

// Params are the client-supplied paging knobs, bound from query strings.
type Params struct {
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"pageSize,default=10"`
	Sort          string `form:"sort"`
	SortDirection string `form:"sortDirection"`
	Search        string `form:"search"`
}

// Normalize clamps out-of-range values instead of rejecting them: page below 1
// becomes 1, page size is clamped to [1,MaxPageSize], an unknown sort
// direction falls back to ascending. Search is lowercased for
// case-insensitive matching.
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}

	p.SortDirection = strings.ToLower(strings.TrimSpace(p.SortDirection))
	if p.SortDirection != directionAsc && p.SortDirection != directionDesc {
		p.SortDirection = directionAsc
	}

	p.Search = strings.ToLower(strings.TrimSpace(p.Search))
}

// OrderClause resolves the requested sort field against an allow-list of
// lowercased field name to column. Unrecognized or absent fields fall back to
// created_at descending. The row id is always appended as a tie-break so that
// equal sort keys cannot reshuffle between pages.
func (p Params) OrderClause(allowed map[string]string) string {
	column, ok := allowed[strings.ToLower(strings.TrimSpace(p.Sort))]
	if p.Sort == "" || !ok {
		return "created_at DESC, id DESC"
	}

	direction := "ASC"
	if p.SortDirection == directionDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

// Page is one page of results plus the counts callers need to render pagers.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPage wraps items with paging metadata. TotalPages is
// ceil(total/pageSize).
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// Find runs the count and the offset/limit fetch for an already-filtered
// statement. The caller normalizes params and builds the order clause; the
// count is taken before pagination so TotalCount covers every matching row.
func Find[T any](stmt *gorm.DB, p Params, order string) (Page[T], error) {
	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	var items []T
	err := stmt.Session(&gorm.Session{}).
		Order(order).
		Offset((p.Page - 1) * p.PageSize).
		Limit(p.PageSize).
		Find(&items).Error
	if err != nil {
		return Page[T]{}, err
	}

	return NewPage(items, p.Page, p.PageSize, total), nil
}
