// Package attrs holds the ordered attribute containers that back a resource.
//
// A Map or List may carry an Owner. Every mutation asks the owner first: a
// frozen owner rejects the write, otherwise the owner is marked dirty and the
// write is applied. Nested maps and lists always share their parent's owner.
package attrs

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"
)

// Owner is notified before any write to a container it owns.
type Owner interface {
	Frozen() bool
	MarkDirty() error
}

type Map struct {
	keys   []string
	values map[string]any
	owner  Owner
}

func NewMap(owner Owner) *Map {
	return &Map{values: map[string]any{}, owner: owner}
}

// FromMap wraps a plain map. Keys are inserted in sorted order since Go maps
// carry none. Building the container never marks the owner dirty.
func FromMap(values map[string]any, owner Owner) (*Map, error) {
	m := NewMap(owner)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		wrapped, err := wrap(values[key], owner)
		if err != nil {
			return nil, err
		}
		m.put(key, wrapped)
	}
	return m, nil
}

func (m *Map) Owner() Owner {
	if m == nil {
		return nil
	}
	return m.owner
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

func (m *Map) Values() []any {
	if m == nil {
		return nil
	}
	values := make([]any, len(m.keys))
	for idx, key := range m.keys {
		values[idx] = m.values[key]
	}
	return values
}

func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

func (m *Map) Value(key string) any {
	value, _ := m.Get(key)
	return value
}

// Map returns the nested map stored at key.
func (m *Map) Map(key string) (*Map, bool) {
	value, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := value.(*Map)
	return nested, ok
}

// List returns the nested list stored at key.
func (m *Map) List(key string) (*List, bool) {
	value, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := value.(*List)
	return nested, ok
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// Plain returns a deep copy made of map[string]any and []any values.
func (m *Map) Plain() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, key := range m.keys {
		out[key] = plain(m.values[key])
	}
	return out
}

// Clone deep copies the map and hands the copy to owner.
func (m *Map) Clone(owner Owner) *Map {
	out := NewMap(owner)
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		out.put(key, cloneValue(m.values[key], owner))
	}
	return out
}

func (m *Map) Set(key string, value any) error {
	wrapped, err := wrap(value, m.owner)
	if err != nil {
		return err
	}
	if err := m.touch(); err != nil {
		return err
	}
	m.put(key, wrapped)
	return nil
}

// SetPath assigns value at a nested location, creating intermediate maps.
// Missing maps are attached in a single Set, so a rejected value leaves the
// map untouched.
func (m *Map) SetPath(path []string, value any) error {
	if len(path) == 0 {
		return validationError("attribute path must not be empty", nil)
	}

	current := m
	for idx, segment := range path[:len(path)-1] {
		existing, ok := current.Get(segment)
		if !ok || existing == nil {
			return current.Set(segment, nestValue(path[idx+1:], value))
		}

		child, isMap := existing.(*Map)
		if !isMap {
			return validationError(
				fmt.Sprintf("attribute %q is not an object", strings.Join(path[:idx+1], ".")),
				nil,
			)
		}
		current = child
	}

	return current.Set(path[len(path)-1], value)
}

func nestValue(path []string, value any) any {
	for idx := len(path) - 1; idx >= 0; idx-- {
		value = map[string]any{path[idx]: value}
	}
	return value
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) (bool, error) {
	if err := m.touch(); err != nil {
		return false, err
	}
	if _, ok := m.values[key]; !ok {
		return false, nil
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(candidate string) bool { return candidate == key })
	return true, nil
}

// Merge assigns every entry of values, which may be a *Map or any string
// keyed map. Nothing is written when a value cannot be normalized.
func (m *Map) Merge(values any) error {
	incoming, err := asMap(values, m.owner)
	if err != nil {
		return err
	}
	if err := m.touch(); err != nil {
		return err
	}
	for key, value := range incoming.All() {
		m.put(key, value)
	}
	return nil
}

func (m *Map) Clear() error {
	if err := m.touch(); err != nil {
		return err
	}
	m.keys = nil
	m.values = map[string]any{}
	return nil
}

// Replace swaps the whole content for values.
func (m *Map) Replace(values any) error {
	incoming, err := asMap(values, m.owner)
	if err != nil {
		return err
	}
	if err := m.touch(); err != nil {
		return err
	}
	m.keys = incoming.keys
	m.values = incoming.values
	return nil
}

func (m *Map) String() string {
	encoded, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", m.Plain())
	}
	return string(encoded)
}

func (m *Map) touch() error {
	return notify(m.owner)
}

// put writes without notifying the owner; value must already be wrapped.
func (m *Map) put(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func asMap(values any, owner Owner) (*Map, error) {
	wrapped, err := wrap(values, owner)
	if err != nil {
		return nil, err
	}
	switch typed := wrapped.(type) {
	case *Map:
		return typed, nil
	case nil:
		return NewMap(owner), nil
	default:
		return nil, validationError(fmt.Sprintf("expected an object, got %T", values), nil)
	}
}

func notify(owner Owner) error {
	if owner == nil {
		return nil
	}
	if owner.Frozen() {
		return frozenError()
	}
	return owner.MarkDirty()
}
