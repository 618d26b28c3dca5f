// Package listing filters, sorts and paginates whole collections in memory.
// The data API returns every record of a collection in one response, so list screens do this work client-side.
package listing

import (
	"sort"
	"strings"
)

// PageSize is the fixed number of items on a page.
const PageSize = 5

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Toggle alternates between ascending and descending order.
func (o Order) Toggle() Order {
	if o == Desc {
		return Asc
	}
	return Desc
}

// Query holds the list parameters a screen sends along with its request.
type Query struct {
	Search   string `query:"search"`
	Ordering string `query:"ordering"` // "title" or "-title"
	Page     int    `query:"page"`
}

func (q *Query) Clean() {
	q.Ordering = strings.TrimSpace(q.Ordering)
	if q.Page < 1 {
		q.Page = 1
	}
}

// SortKey returns the ordering field and direction. A leading "-" means descending.
func (q Query) SortKey() (string, Order) {
	if strings.HasPrefix(q.Ordering, "-") {
		return q.Ordering[1:], Desc
	}
	return q.Ordering, Asc
}

// Options describes how a collection of T is listed.
type Options[T any] struct {
	// SearchFields are matched case-insensitively against Query.Search; any match keeps the item.
	SearchFields []func(T) string
	// SortFields maps an ordering name to the text it sorts on.
	SortFields map[string]func(T) string
	// DefaultSort is used when the query names no known ordering.
	DefaultSort string
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Filter returns the items for which one of fields contains search, ignoring case.
// Only an empty search keeps every item; whitespace is matched as typed.
func Filter[T any](items []T, search string, fields ...func(T) string) []T {
	search = strings.ToLower(search)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if search == "" {
			out = append(out, item)
			continue
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), search) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Sort returns a copy of items ordered lexicographically on key.
// Comparison ignores case first and falls back to the raw text so the order is total.
func Sort[T any](items []T, key func(T) string, order Order) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		if order == Desc {
			a, b = b, a
		}
		la, lb := strings.ToLower(a), strings.ToLower(b)
		if la != lb {
			return la < lb
		}
		return a < b
	})
	return out
}

// Paginate cuts items into pages of size and returns the requested one (1-based).
// A page out of range has no items but still reports the totals.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = PageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Items = items[start:end]
	return p
}

// Apply filters, sorts then paginates items according to q.
func Apply[T any](items []T, q Query, opts Options[T]) Page[T] {
	q.Clean()
	filtered := Filter(items, q.Search, opts.SearchFields...)

	field, order := q.SortKey()
	key, ok := opts.SortFields[field]
	if !ok {
		key, ok = opts.SortFields[opts.DefaultSort]
	}
	if ok {
		filtered = Sort(filtered, key, order)
	}
	return Paginate(filtered, q.Page, PageSize)
}
