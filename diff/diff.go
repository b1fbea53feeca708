// Package diff computes the structural changes between two attribute
// snapshots.
//
// Changes come out in a fixed order at every level: added keys in current
// order, then removed keys in original order, then replaced keys in current
// order. Nested maps present on both sides are compared recursively and their
// changes are spliced in at the position of the parent key. Lists are atomic:
// any difference inside a list is reported as one Replaced at the list's path.
package diff

import (
	"strings"

	"github.com/pugvideo/pugvideo-go/attrs"
)

// Path is the ordered key sequence from the snapshot root to a field.
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Change is one of Added, Removed or Replaced.
type Change interface {
	ChangePath() Path
	isChange()
}

type Added struct {
	Path  Path
	Value any
}

type Removed struct {
	Path Path
}

type Replaced struct {
	Path Path
	Old  any
	New  any
}

func (c Added) ChangePath() Path    { return c.Path }
func (c Removed) ChangePath() Path  { return c.Path }
func (c Replaced) ChangePath() Path { return c.Path }

func (Added) isChange()    {}
func (Removed) isChange()  {}
func (Replaced) isChange() {}

// Diff returns the changes that turn original into current. A nil snapshot
// on either side yields no changes. Values carried by the records are
// detached copies.
func Diff(original, current *attrs.Map) []Change {
	if original == nil || current == nil {
		return []Change{}
	}
	return diffMaps(original, current, nil)
}

func diffMaps(original, current *attrs.Map, prefix Path) []Change {
	changes := []Change{}

	for key, value := range current.All() {
		if !original.Has(key) {
			changes = append(changes, Added{Path: join(prefix, key), Value: detach(value)})
		}
	}

	for key := range original.All() {
		if !current.Has(key) {
			changes = append(changes, Removed{Path: join(prefix, key)})
		}
	}

	for key, newValue := range current.All() {
		oldValue, ok := original.Get(key)
		if !ok || attrs.Equal(oldValue, newValue) {
			continue
		}

		oldMap, oldIsMap := oldValue.(*attrs.Map)
		newMap, newIsMap := newValue.(*attrs.Map)
		if oldIsMap && newIsMap {
			changes = append(changes, diffMaps(oldMap, newMap, join(prefix, key))...)
			continue
		}

		changes = append(changes, Replaced{
			Path: join(prefix, key),
			Old:  detach(oldValue),
			New:  detach(newValue),
		})
	}

	return changes
}

func join(prefix Path, key string) Path {
	out := make(Path, len(prefix), len(prefix)+1)
	copy(out, prefix)
	return append(out, key)
}

func detach(value any) any {
	// Values stored in a container are already normalized, so Wrap cannot fail.
	detached, _ := attrs.Wrap(value, nil)
	return detached
}
