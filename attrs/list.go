package attrs

import (
	"fmt"
	"iter"
	"slices"
)

type List struct {
	items []any
	owner Owner
}

func NewList(owner Owner) *List {
	return &List{owner: owner}
}

func (l *List) Owner() Owner {
	if l == nil {
		return nil
	}
	return l.owner
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

func (l *List) At(index int) (any, bool) {
	if l == nil || index < 0 || index >= len(l.items) {
		return nil, false
	}
	return l.items[index], true
}

func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if l == nil {
			return
		}
		for idx, item := range l.items {
			if !yield(idx, item) {
				return
			}
		}
	}
}

func (l *List) Plain() []any {
	if l == nil {
		return nil
	}
	out := make([]any, len(l.items))
	for idx, item := range l.items {
		out[idx] = plain(item)
	}
	return out
}

func (l *List) Clone(owner Owner) *List {
	out := NewList(owner)
	if l == nil {
		return out
	}
	out.items = make([]any, len(l.items))
	for idx, item := range l.items {
		out.items[idx] = cloneValue(item, owner)
	}
	return out
}

func (l *List) Append(values ...any) error {
	wrapped, err := wrapAll(values, l.owner)
	if err != nil {
		return err
	}
	if err := notify(l.owner); err != nil {
		return err
	}
	l.items = append(l.items, wrapped...)
	return nil
}

func (l *List) SetAt(index int, value any) error {
	if index < 0 || index >= l.Len() {
		return validationError(fmt.Sprintf("list index %d out of range", index), nil)
	}
	wrapped, err := wrap(value, l.owner)
	if err != nil {
		return err
	}
	if err := notify(l.owner); err != nil {
		return err
	}
	l.items[index] = wrapped
	return nil
}

func (l *List) DeleteAt(index int) error {
	if index < 0 || index >= l.Len() {
		return validationError(fmt.Sprintf("list index %d out of range", index), nil)
	}
	if err := notify(l.owner); err != nil {
		return err
	}
	l.items = slices.Delete(l.items, index, index+1)
	return nil
}

func (l *List) Clear() error {
	if err := notify(l.owner); err != nil {
		return err
	}
	l.items = nil
	return nil
}

// Replace swaps the content for values, which may be a *List or any slice.
func (l *List) Replace(values any) error {
	wrapped, err := wrap(values, l.owner)
	if err != nil {
		return err
	}

	var items []any
	switch typed := wrapped.(type) {
	case *List:
		items = typed.items
	case nil:
	default:
		return validationError(fmt.Sprintf("expected an array, got %T", values), nil)
	}

	if err := notify(l.owner); err != nil {
		return err
	}
	l.items = items
	return nil
}

func wrapAll(values []any, owner Owner) ([]any, error) {
	out := make([]any, len(values))
	for idx, value := range values {
		wrapped, err := wrap(value, owner)
		if err != nil {
			return nil, err
		}
		out[idx] = wrapped
	}
	return out, nil
}
