// Package listview derives the visible page of a tabular list: a
// case-insensitive search filter, a single-column sort and fixed-size
// pagination. Everything here is pure; inputs are never mutated.
package listview

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultPageSize is used when a table is built with a non-positive size.
const DefaultPageSize = 5

const dateLayout = "2006-01-02"

var (
	ErrUnknownColumn = errors.New("unknown sort column")
	ErrInvalidOrder  = errors.New("sort order must be asc or desc")
)

// Kind selects how a column's values compare.
type Kind int

const (
	Text Kind = iota // case-folded string comparison
	Date             // YYYY-MM-DD calendar dates
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Column describes one sortable field of T. Searchable columns take part in
// the free-text filter. Compare, when set, replaces the Kind ordering.
type Column[T any] struct {
	Name       string
	Kind       Kind
	Searchable bool
	Value      func(T) string
	Compare    func(a, b string) int
}

func (c Column[T]) compare(a, b T) int {
	if c.Compare != nil {
		return c.Compare(c.Value(a), c.Value(b))
	}
	return compare(c.Kind, c.Value(a), c.Value(b))
}

// View is the user-controlled state of a list: search term, sort column,
// direction and current page.
type View struct {
	Search string `form:"search" json:"search"`
	Sort   string `form:"sort" json:"sort"`
	Order  Order  `form:"order" json:"order"`
	Page   int    `form:"page" json:"page"`
}

// WithSearch sets the search term and resets to the first page.
func (v View) WithSearch(term string) View {
	v.Search = term
	v.Page = 1
	return v
}

// ToggleSort flips the direction when column is already the sort column,
// otherwise selects column ascending.
func (v View) ToggleSort(column string) View {
	if v.Sort == column {
		if v.Order == Desc {
			v.Order = Asc
		} else {
			v.Order = Desc
		}
		return v
	}
	v.Sort = column
	v.Order = Asc
	return v
}

// WithPage moves to page n. Out of range values are clamped by Derive.
func (v View) WithPage(n int) View {
	v.Page = n
	return v
}

// Result is one derived page.
type Result[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
	Total      int    `json:"total"`
	HasPrev    bool   `json:"hasPrev"`
	HasNext    bool   `json:"hasNext"`
	Search     string `json:"search,omitempty"`
	Sort       string `json:"sort"`
	Order      Order  `json:"order"`
}

// Table is a reusable list definition: its columns, default sort and page size.
type Table[T any] struct {
	columns     []Column[T]
	defaultSort string
	pageSize    int
}

// NewTable builds a table. defaultSort must name one of the columns.
func NewTable[T any](pageSize int, defaultSort string, columns ...Column[T]) *Table[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Table[T]{columns: columns, defaultSort: defaultSort, pageSize: pageSize}
}

// Column looks a column up by name.
func (t *Table[T]) Column(name string) (Column[T], bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Columns lists the column names in declaration order.
func (t *Table[T]) Columns() []string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.Name)
	}
	return names
}

// PageSize returns the fixed page size.
func (t *Table[T]) PageSize() int { return t.pageSize }

// Derive filters, sorts and paginates items according to v.
func (t *Table[T]) Derive(items []T, v View) (Result[T], error) {
	sortName := v.Sort
	if sortName == "" {
		sortName = t.defaultSort
	}
	col, ok := t.Column(sortName)
	if !ok {
		return Result[T]{}, fmt.Errorf("%w: %q", ErrUnknownColumn, sortName)
	}
	order := v.Order
	if order == "" {
		order = Asc
	}
	if order != Asc && order != Desc {
		return Result[T]{}, fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}

	visible := t.filter(items, v.Search)
	slices.SortStableFunc(visible, func(a, b T) int {
		c := col.compare(a, b)
		if order == Desc {
			return -c
		}
		return c
	})

	res := Paginate(visible, v.Page, t.pageSize)
	res.Search = v.Search
	res.Sort = sortName
	res.Order = order
	return res, nil
}

func (t *Table[T]) filter(items []T, search string) []T {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if term == "" || t.matches(item, term) {
			out = append(out, item)
		}
	}
	return out
}

func (t *Table[T]) matches(item T, term string) bool {
	for _, c := range t.columns {
		if c.Searchable && strings.Contains(strings.ToLower(c.Value(item)), term) {
			return true
		}
	}
	return false
}

// compare orders two column values. Unparseable dates sort before valid ones.
func compare(kind Kind, a, b string) int {
	if kind == Date {
		ta, errA := time.Parse(dateLayout, a)
		tb, errB := time.Parse(dateLayout, b)
		switch {
		case errA != nil && errB != nil:
			return strings.Compare(a, b)
		case errA != nil:
			return -1
		case errB != nil:
			return 1
		default:
			return ta.Compare(tb)
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// Paginate returns page of items, clamping page to [1, max(1, ceil(len/size))].
func Paginate[T any](items []T, page, size int) Result[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := max(1, (total+size-1)/size)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * size
	end := min(start+size, total)
	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)

	return Result[T]{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
