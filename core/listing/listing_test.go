package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Title       string
	Description string
}

func titles(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func byTitle(it item) string       { return it.Title }
func byDescription(it item) string { return it.Description }

var fixtures = []item{
	{Title: "Go basics", Description: "types and funcs"},
	{Title: "algebra", Description: "numbers"},
	{Title: "Biology", Description: "cells and GOats"},
	{Title: "chemistry", Description: "atoms"},
}

func TestOrder_Toggle(t *testing.T) {
	o := Asc
	seen := make([]Order, 0, 4)
	for i := 0; i < 4; i++ {
		o = o.Toggle()
		seen = append(seen, o)
	}
	assert.Equal(t, []Order{Desc, Asc, Desc, Asc}, seen)
	assert.Equal(t, Desc, Order("").Toggle())
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		search string
		fields []func(item) string
		want   []string
	}{
		{name: "empty search keeps all", search: "", fields: []func(item) string{byTitle}, want: []string{"Go basics", "algebra", "Biology", "chemistry"}},
		{name: "whitespace search is not trimmed", search: " ", fields: []func(item) string{byTitle}, want: []string{"Go basics"}},
		{name: "padded search", search: " basics", fields: []func(item) string{byTitle}, want: []string{"Go basics"}},
		{name: "case insensitive", search: "BIO", fields: []func(item) string{byTitle}, want: []string{"Biology"}},
		{name: "title only", search: "go", fields: []func(item) string{byTitle}, want: []string{"Go basics"}},
		{name: "title or description", search: "go", fields: []func(item) string{byTitle, byDescription}, want: []string{"Go basics", "Biology"}},
		{name: "no match", search: "physics", fields: []func(item) string{byTitle, byDescription}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(fixtures, tt.search, tt.fields...)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilter_subsetExactness(t *testing.T) {
	got := Filter(fixtures, "o", byTitle)
	for _, it := range fixtures {
		matched := false
		for _, g := range got {
			if g == it {
				matched = true
			}
		}
		assert.Equal(t, containsFold(it.Title, "o"), matched, it.Title)
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func TestSort(t *testing.T) {
	asc := Sort(fixtures, byTitle, Asc)
	assert.Equal(t, []string{"algebra", "Biology", "chemistry", "Go basics"}, titles(asc))

	desc := Sort(fixtures, byTitle, Desc)
	assert.Equal(t, []string{"Go basics", "chemistry", "Biology", "algebra"}, titles(desc))

	// input untouched
	assert.Equal(t, "Go basics", fixtures[0].Title)
}

func TestSort_tieBreak(t *testing.T) {
	items := []item{{Title: "b"}, {Title: "B"}, {Title: "a"}}
	assert.Equal(t, []string{"a", "B", "b"}, titles(Sort(items, byTitle, Asc)))
	assert.Equal(t, []string{"b", "B", "a"}, titles(Sort(items, byTitle, Desc)))
}

func TestPaginate(t *testing.T) {
	makeItems := func(n int) []item {
		items := make([]item, n)
		for i := range items {
			items[i] = item{Title: fmt.Sprintf("t%02d", i+1)}
		}
		return items
	}

	tests := []struct {
		name      string
		n         int
		page      int
		wantLen   int
		wantPages int
		wantFirst string
	}{
		{name: "empty", n: 0, page: 1, wantLen: 0, wantPages: 0},
		{name: "one partial page", n: 3, page: 1, wantLen: 3, wantPages: 1, wantFirst: "t01"},
		{name: "exact pages", n: 10, page: 2, wantLen: 5, wantPages: 2, wantFirst: "t06"},
		{name: "remainder on last page", n: 12, page: 3, wantLen: 2, wantPages: 3, wantFirst: "t11"},
		{name: "page out of range", n: 12, page: 4, wantLen: 0, wantPages: 3},
		{name: "page below 1", n: 12, page: 0, wantLen: 5, wantPages: 3, wantFirst: "t01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(makeItems(tt.n), tt.page, PageSize)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.n, p.TotalItems)
			assert.Equal(t, PageSize, p.PageSize)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, p.Items[0].Title)
			}
		})
	}
}

func TestApply(t *testing.T) {
	opts := Options[item]{
		SearchFields: []func(item) string{byTitle, byDescription},
		SortFields:   map[string]func(item) string{"title": byTitle},
		DefaultSort:  "title",
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "default sort", query: Query{}, want: []string{"algebra", "Biology", "chemistry", "Go basics"}},
		{name: "descending", query: Query{Ordering: "-title"}, want: []string{"Go basics", "chemistry", "Biology", "algebra"}},
		{name: "unknown ordering falls back", query: Query{Ordering: "lol"}, want: []string{"algebra", "Biology", "chemistry", "Go basics"}},
		{name: "search then sort", query: Query{Search: "go", Ordering: "-title"}, want: []string{"Go basics", "Biology"}},
		{name: "whitespace search survives Clean", query: Query{Search: " "}, want: []string{"Go basics"}},
		{name: "past last page", query: Query{Page: 2}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixtures, tt.query, opts)
			assert.Equal(t, tt.want, titles(got.Items))
		})
	}
}
