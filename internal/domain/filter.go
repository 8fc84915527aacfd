package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CommentFilter is the full query parameter tuple for GetCommentTree. Rating
// and PackageType are inclusion filters over top-level reviews only; replies
// are never filtered individually.
type CommentFilter struct {
	Rating      []int    `json:"rating,omitempty" query:"rating"`
	PackageType []string `json:"package_type,omitempty" query:"package"`
	Sort        string   `json:"sort" query:"sort"`
	Page        int      `json:"page" query:"page"`
	PageSize    int      `json:"page_size" query:"page_size"`
}

// Normalize clamps pagination and falls back to the default sort for any
// value outside the four supported ones.
func (f *CommentFilter) Normalize() {
	switch f.Sort {
	case SortCreatedDesc, SortCreatedAsc, SortRatingDesc, SortRatingAsc:
	default:
		f.Sort = DefaultReviewSort
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultReviewPageSize
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

func (f CommentFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// CacheKey identifies a cache entry by the whole parameter tuple, so a stale
// in-flight result can never overwrite an entry for different parameters.
func (f CommentFilter) CacheKey() string {
	ratings := append([]int(nil), f.Rating...)
	sort.Ints(ratings)
	packages := append([]string(nil), f.PackageType...)
	sort.Strings(packages)

	parts := make([]string, 0, len(ratings)+len(packages))
	for _, r := range ratings {
		parts = append(parts, fmt.Sprintf("r%d", r))
	}
	parts = append(parts, packages...)

	return fmt.Sprintf("reviews:tree:%s:%s:page:%d:size:%d",
		f.Sort, strings.Join(parts, ","), f.Page, f.PageSize)
}

func TotalPages(totalItems int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return int((totalItems + int64(pageSize) - 1) / int64(pageSize))
}
