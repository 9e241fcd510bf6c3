package listview

import (
	"cmp"
	"strconv"
)

// Column describes one table column over rows of type T.
type Column[T any] struct {
	Key   string
	Title string

	// Value renders the cell text. It is also what the filter matches.
	Value func(T) string

	// Compare orders two rows for sorting. When nil and Sortable is set,
	// rows are ordered by Value.
	Compare func(a, b T) int

	Sortable bool
}

func (c Column[T]) compare(a, b T) int {
	if c.Compare != nil {
		return c.Compare(a, b)
	}
	return cmp.Compare(c.Value(a), c.Value(b))
}

// Text is a convenience for a sortable string column.
func Text[T any](key, title string, value func(T) string) Column[T] {
	return Column[T]{Key: key, Title: title, Value: value, Sortable: true}
}

// Int is a convenience for a sortable integer column.
func Int[T any](key, title string, value func(T) int64) Column[T] {
	return Column[T]{
		Key:      key,
		Title:    title,
		Value:    func(t T) string { return strconv.FormatInt(value(t), 10) },
		Compare:  func(a, b T) int { return cmp.Compare(value(a), value(b)) },
		Sortable: true,
	}
}

// Float is a convenience for a sortable decimal column.
func Float[T any](key, title string, value func(T) float64) Column[T] {
	return Column[T]{
		Key:      key,
		Title:    title,
		Value:    func(t T) string { return strconv.FormatFloat(value(t), 'f', -1, 64) },
		Compare:  func(a, b T) int { return cmp.Compare(value(a), value(b)) },
		Sortable: true,
	}
}
