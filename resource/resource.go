// Package resource implements the local state of one remote object: its
// loaded attributes, the caller's pending edits and the patch that would
// send those edits back.
//
// A Resource starts Loaded. Any write through its attribute containers marks
// it Dirty until the caller commits, discards or reloads. Freeze makes it
// read-only for good; every later write fails with a frozen error.
package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/diff"
	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/keys"
	"github.com/pugvideo/pugvideo-go/patch"
)

type Resource struct {
	kind     Kind
	id       string
	typ      string
	original *attrs.Map
	current  *attrs.Map
	dirty    bool
	frozen   bool
	style    patch.Style
}

type Option func(*Resource)

// WithPatchStyle selects how PatchOperations writes paths and values.
func WithPatchStyle(style patch.Style) Option {
	return func(r *Resource) {
		r.style = style
	}
}

// New returns an empty resource of kind that has not been persisted yet.
func New(kind Kind, opts ...Option) *Resource {
	r := &Resource{kind: kind}
	for _, opt := range opts {
		opt(r)
	}
	r.reset(loadedObject{attributes: attrs.NewMap(nil)})
	return r
}

// Load builds a resource from a response payload.
func Load(kind Kind, payload any, opts ...Option) *Resource {
	r := New(kind, opts...)
	r.reset(parsePayload(payload))
	return r
}

// Load replaces all local state with payload and returns to Loaded. Pending
// edits are dropped. A frozen resource keeps its attributes.
func (r *Resource) Load(payload any) error {
	if r.frozen {
		return faults.NewFrozenError("")
	}
	r.reset(parsePayload(payload))
	return nil
}

func (r *Resource) reset(object loadedObject) {
	if object.id != "" {
		r.id = object.id
	}
	if object.typ != "" {
		r.typ = object.typ
	}
	r.original = object.attributes
	r.current = object.attributes.Clone(r)
	r.dirty = false
}

func (r *Resource) Kind() Kind { return r.kind }

func (r *Resource) ID() string { return r.id }

// Type returns the JSON:API type from the last payload, or the kind's type.
func (r *Resource) Type() string {
	if r.typ != "" {
		return r.typ
	}
	return r.kind.Type
}

// Persisted reports whether the resource has a server-side id.
func (r *Resource) Persisted() bool { return r.id != "" }

func (r *Resource) Style() patch.Style { return r.style }

func (r *Resource) Get(field string) (any, bool) {
	value, ok := r.current.Get(field)
	if !ok {
		return nil, false
	}
	if r.kind.IsReadOnly(field) {
		detached, _ := attrs.Wrap(value, nil)
		return detached, true
	}
	return value, true
}

func (r *Resource) String(field string) string {
	value, _ := r.current.Get(field)
	text, _ := value.(string)
	return text
}

// Int returns the field as an integer. Floats holding a whole number are
// accepted.
func (r *Resource) Int(field string) int64 {
	switch typed := r.current.Value(field).(type) {
	case int64:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return int64(typed)
		}
	}
	return 0
}

func (r *Resource) Float(field string) float64 {
	switch typed := r.current.Value(field).(type) {
	case int64:
		return float64(typed)
	case float64:
		return typed
	}
	return 0
}

func (r *Resource) Bool(field string) bool {
	value, _ := r.current.Value(field).(bool)
	return value
}

// Time parses an RFC 3339 timestamp field. The second result is false when
// the field is missing, null or not a timestamp.
func (r *Resource) Time(field string) (time.Time, bool) {
	text, ok := r.current.Value(field).(string)
	if !ok || text == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Map returns the nested map stored at field. Writes to it mark the resource
// dirty, except for read-only fields which get a detached copy.
func (r *Resource) Map(field string) (*attrs.Map, bool) {
	nested, ok := r.current.Map(field)
	if !ok {
		return nil, false
	}
	if r.kind.IsReadOnly(field) {
		return nested.Clone(nil), true
	}
	return nested, true
}

func (r *Resource) List(field string) (*attrs.List, bool) {
	nested, ok := r.current.List(field)
	if !ok {
		return nil, false
	}
	if r.kind.IsReadOnly(field) {
		return nested.Clone(nil), true
	}
	return nested, true
}

// Attributes returns a plain copy of the current attributes.
func (r *Resource) Attributes() map[string]any {
	return r.current.Plain()
}

// Snapshot returns a detached ordered copy of the current attributes.
func (r *Resource) Snapshot() *attrs.Map {
	return r.current.Clone(nil)
}

func (r *Resource) Set(field string, value any) error {
	if err := r.checkWritable(field); err != nil {
		return err
	}
	return r.current.Set(field, value)
}

// SetPath writes a nested attribute, creating intermediate maps. The first
// segment is checked like a Set field.
func (r *Resource) SetPath(path []string, value any) error {
	if len(path) == 0 {
		return validationError("attribute path must not be empty", nil)
	}
	if err := r.checkWritable(path[0]); err != nil {
		return err
	}
	return r.current.SetPath(path, value)
}

// Unset removes field and reports whether it was present.
func (r *Resource) Unset(field string) (bool, error) {
	if err := r.checkWritable(field); err != nil {
		return false, err
	}
	return r.current.Delete(field)
}

func (r *Resource) checkWritable(field string) error {
	if r.frozen {
		return faults.NewFrozenError("")
	}
	if r.kind.IsReadOnly(field) {
		return validationError(fmt.Sprintf("%s field %q is read-only", r.kindName(), field), nil)
	}
	if !r.kind.Known(field) {
		return validationError(
			fmt.Sprintf("%s has no field %q (known fields: %s)", r.kindName(), field, strings.Join(r.kind.Fields, ", ")),
			nil,
		)
	}
	return nil
}

func (r *Resource) kindName() string {
	if r.kind.Name != "" {
		return r.kind.Name
	}
	return "resource"
}

// Frozen implements attrs.Owner.
func (r *Resource) Frozen() bool { return r.frozen }

// MarkDirty implements attrs.Owner.
func (r *Resource) MarkDirty() error {
	if r.frozen {
		return faults.NewFrozenError("")
	}
	r.dirty = true
	return nil
}

// Freeze is called once the remote object is deleted.
func (r *Resource) Freeze() { r.frozen = true }

// Dirty reports whether any write happened since the last load or commit.
// Writes that restore the loaded value still count; use Changed for a
// structural check.
func (r *Resource) Dirty() bool { return r.dirty }

func (r *Resource) Changed() bool {
	return len(r.Changes()) > 0
}

func (r *Resource) Changes() []diff.Change {
	return diff.Diff(r.original, r.current)
}

// PatchOperations is empty unless the resource is dirty.
func (r *Resource) PatchOperations() []patch.Operation {
	if !r.dirty {
		return []patch.Operation{}
	}
	return patch.Generator{Style: r.style}.Generate(r.Changes())
}

func (r *Resource) PatchDocument() patch.Document {
	return patch.Document{Data: r.PatchOperations()}
}

// CreateDocument is the JSON:API body that creates this resource.
func (r *Resource) CreateDocument() map[string]any {
	attributes := any(r.current.Plain())
	if r.style == patch.StyleCamel {
		attributes = keys.ToAPI(attributes)
	}
	return map[string]any{
		"data": map[string]any{
			"type":       r.Type(),
			"attributes": attributes,
		},
	}
}

// Discard drops pending edits.
func (r *Resource) Discard() error {
	if r.frozen {
		return faults.NewFrozenError("")
	}
	r.current = r.original.Clone(r)
	r.dirty = false
	return nil
}

// Commit accepts the current attributes as the persisted state.
func (r *Resource) Commit() error {
	if r.frozen {
		return faults.NewFrozenError("")
	}
	r.original = r.current.Clone(nil)
	r.dirty = false
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
