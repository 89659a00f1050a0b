package dto

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// Pagination is the shared page/limit query.
type Pagination struct {
	Page  int `form:"page,default=1"   json:"page"  validate:"min=1"`
	Limit int `form:"limit,default=10" json:"limit" validate:"min=1,max=100"`
}

// Normalize fills zero values with defaults for callers that bypass binding.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages is the number of pages needed to hold total rows.
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ListFilter is the query accepted by soft-deletable list endpoints.
type ListFilter struct {
	IncludeDeleted bool `form:"include_deleted"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// Page wraps one page of results with its pagination metadata.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page from rows and the query that produced them.
func NewPage[T any](rows []T, total int64, p Pagination) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	return Page[T]{
		Data:       rows,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}
}
