// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "math"

// PageInfo describes one page of an offset-paginated listing.
type PageInfo struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"20"`
	Total      int64 `json:"total" example:"42"`
	TotalPages int   `json:"totalPages" example:"3"`
	HasNext    bool  `json:"hasNext" example:"true"`
}

// NewPageInfo computes page metadata for a listing of total items.
// page and limit are expected to be validated (>= 1) by the caller.
//
// Example:
//
//	utils.NewPageInfo(2, 20, 42) // {Page:2 Limit:20 Total:42 TotalPages:3 HasNext:true}
func NewPageInfo(page, limit int, total int64) PageInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Offset returns the zero-based row offset of page. Pages below 1 are
// treated as the first page; offsets that would overflow saturate at
// math.MaxInt, which lies past any real listing.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// Window returns the [lo, hi) bounds of a page over n in-memory items,
// clamped so slicing never panics.
func Window(n, page, limit int) (lo, hi int) {
	lo = Offset(page, limit)
	if lo > n {
		lo = n
	}
	hi = lo + limit
	if limit < 1 || limit > n-lo {
		hi = n
	}
	return lo, hi
}
