// Package listquery turns a fetched collection plus the current search, filter,
// sort and page state into the slice a list screen renders. It is the single
// pagination authority for every list endpoint: search matches first, then each
// categorical filter (AND), then the sort, then the page slice.
package listquery

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize applies when a screen does not fix its own size.
const DefaultPageSize = 10

// Sort selects the comparator applied after filtering.
type Sort string

const (
	SortAlphaAsc  Sort = "alpha"
	SortAlphaDesc Sort = "alpha_desc"
	// SortNewest and SortOldest key on the item timestamp, falling back to
	// the numeric id as a proxy for recency when no timestamp is present.
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
	SortByID   Sort = "id"
)

type Params struct {
	Search   string
	Filters  map[string]string
	Sort     Sort
	Page     int
	PageSize int
}

// Fields describes how to read the queryable fields of T.
// Search funcs feed the free-text match; Filter funcs feed categorical
// equality checks; Text, Time and ID feed the comparators.
type Fields[T any] struct {
	Search []func(T) string
	Filter map[string]func(T) string
	Text   func(T) string
	Time   func(T) time.Time
	ID     func(T) int
}

type Result[T any] struct {
	PageItems  []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

// Apply runs the pipeline. It never fails: nil or empty input yields an empty
// page and TotalPages == 1.
func Apply[T any](items []T, p Params, f Fields[T]) Result[T] {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}

	filtered := filter(items, p, f)
	sortItems(filtered, p.Sort, f)

	totalPages := int(math.Ceil(float64(len(filtered)) / float64(p.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result[T]{
		PageItems:  filtered[start:end],
		TotalPages: totalPages,
	}
}

func filter[T any](items []T, p Params, f Fields[T]) []T {
	search := strings.ToLower(strings.TrimSpace(p.Search))
	out := make([]T, 0, len(items))

	for _, item := range items {
		if search != "" && !matchesSearch(item, search, f.Search) {
			continue
		}
		if !matchesFilters(item, p.Filters, f.Filter) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch[T any](item T, search string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), search) {
			return true
		}
	}
	return false
}

// matchesFilters applies AND semantics; an empty filter value means
// "no restriction" for that field.
func matchesFilters[T any](item T, filters map[string]string, fields map[string]func(T) string) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		field, ok := fields[key]
		if !ok {
			return false
		}
		if field(item) != want {
			return false
		}
	}
	return true
}

func sortItems[T any](items []T, key Sort, f Fields[T]) {
	switch key {
	case SortAlphaAsc, SortAlphaDesc:
		if f.Text == nil {
			return
		}
		coll := collate.New(language.Swedish, collate.Loose)
		desc := key == SortAlphaDesc
		sort.SliceStable(items, func(i, j int) bool {
			cmp := coll.CompareString(f.Text(items[i]), f.Text(items[j]))
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	case SortNewest, SortOldest:
		newest := key == SortNewest
		sort.SliceStable(items, func(i, j int) bool {
			ri, okI := recency(items[i], f)
			rj, okJ := recency(items[j], f)
			if !okI || !okJ {
				return false
			}
			if newest {
				return ri > rj
			}
			return ri < rj
		})
	case SortByID:
		if f.ID == nil {
			return
		}
		sort.SliceStable(items, func(i, j int) bool { return f.ID(items[i]) < f.ID(items[j]) })
	}
}

// recency returns a comparable recency measure: the timestamp when present,
// the id otherwise.
func recency[T any](item T, f Fields[T]) (int64, bool) {
	if f.Time != nil {
		if ts := f.Time(item); !ts.IsZero() {
			return ts.UnixNano(), true
		}
	}
	if f.ID != nil {
		return int64(f.ID(item)), true
	}
	return 0, false
}
