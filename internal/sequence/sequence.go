// Package sequence provides an ordered list of generated syntax items that
// generators append to and later splice back into a single unit.
package sequence

import (
	"fmt"
	"io"
)

// List is an ordered, append-only sequence of items
type List[T any] struct {
	items []T
}

// Of creates a list holding items in order
func Of[T any](items ...T) *List[T] {
	l := &List[T]{}
	l.Extend(items...)
	return l
}

// Push appends a single item and returns the list for chaining
func (l *List[T]) Push(item T) *List[T] {
	l.items = append(l.items, item)
	return l
}

// Extend appends items in order
func (l *List[T]) Extend(items ...T) *List[T] {
	l.items = append(l.items, items...)
	return l
}

// Concat appends every item of other
func (l *List[T]) Concat(other *List[T]) *List[T] {
	if other == nil {
		return l
	}
	return l.Extend(other.items...)
}

// Len returns the number of items
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the items
func (l *List[T]) Items() []T {
	if l == nil {
		return nil
	}
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Each calls fn for every item in order, stopping at the first error
func (l *List[T]) Each(fn func(int, T) error) error {
	if l == nil {
		return nil
	}
	for i, item := range l.items {
		if err := fn(i, item); err != nil {
			return err
		}
	}
	return nil
}

// Map builds a new list from fn applied to every item of l
func Map[T, U any](l *List[T], fn func(T) (U, error)) (*List[U], error) {
	out := &List[U]{items: make([]U, 0, l.Len())}
	err := l.Each(func(i int, item T) error {
		mapped, err := fn(item)
		if err != nil {
			return err
		}
		out.items = append(out.items, mapped)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Render writes every item with render, separating consecutive items with sep
func (l *List[T]) Render(w io.Writer, sep string, render func(io.Writer, T) error) error {
	return l.Each(func(i int, item T) error {
		if i > 0 && sep != "" {
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
		}
		if err := render(w, item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		return nil
	})
}
