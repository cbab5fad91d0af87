package catalog

import (
	"math"
	"strings"
	"time"
)

type DateRange string

const (
	DateRangeLastWeek  DateRange = "last_week"
	DateRangeLastMonth DateRange = "last_month"
	DateRangeLastYear  DateRange = "last_year"
)

func (d DateRange) Valid() bool {
	switch d {
	case "", DateRangeLastWeek, DateRangeLastMonth, DateRangeLastYear:
		return true
	default:
		return false
	}
}

// LowerBound resolves the relative range against now. ok is false for the empty range.
func (d DateRange) LowerBound(now time.Time) (bound time.Time, ok bool) {
	switch d {
	case DateRangeLastWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeLastMonth:
		return now.AddDate(0, -1, 0), true
	case DateRangeLastYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Filter is the single predicate shared by the list and count queries.
type Filter struct {
	CategoryID *uint
	Search     string
	Level      MaterialLevel
	DateRange  DateRange
	MinRating  *float64
}

func (f Filter) Normalized() Filter {
	f.Search = strings.TrimSpace(f.Search)
	f.Level = MaterialLevel(strings.ToLower(strings.TrimSpace(string(f.Level))))
	f.DateRange = DateRange(strings.ToLower(strings.TrimSpace(string(f.DateRange))))
	if f.CategoryID != nil && *f.CategoryID == 0 {
		f.CategoryID = nil
	}
	return f
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Page struct {
	Page     int
	PageSize int
}

// Clamp applies defaults and bounds.
func (p Page) Clamp(defaultSize int) Page {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	// Page*PageSize stays within int32 so the offset never wraps.
	if maxPage := math.MaxInt32 / p.PageSize; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(p Page, total int64) Pagination {
	pages := 0
	if p.PageSize > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Pagination{Page: p.Page, PageSize: p.PageSize, TotalItems: total, TotalPages: pages}
}

type MaterialPage struct {
	Items      []*Material `json:"items"`
	Pagination Pagination  `json:"pagination"`
}
