// Package patch turns attribute changes into RFC 6902 JSON Patch operations.
package patch

import (
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/goccy/go-json"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/diff"
	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/keys"
)

type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
)

type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// MarshalJSON keeps value on add and replace even when it is null, and drops
// it from remove.
func (o Operation) MarshalJSON() ([]byte, error) {
	if o.Op == OpRemove {
		return json.Marshal(struct {
			Op   Op     `json:"op"`
			Path string `json:"path"`
		}{Op: o.Op, Path: o.Path})
	}
	return json.Marshal(struct {
		Op    Op     `json:"op"`
		Path  string `json:"path"`
		Value any    `json:"value"`
	}{Op: o.Op, Path: o.Path, Value: o.Value})
}

// Document is the body of a PATCH request.
type Document struct {
	Data []Operation `json:"data"`
}

// Style selects how paths and values are written on the wire.
type Style int

const (
	// StyleCamel translates every path segment and nested object key to
	// camelCase.
	StyleCamel Style = iota
	// StyleSnake writes attribute names verbatim, for backends that expect
	// snake_case.
	StyleSnake
)

func (s Style) String() string {
	switch s {
	case StyleSnake:
		return "snake"
	default:
		return "camel"
	}
}

func ParseStyle(value string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "camel", "camelcase":
		return StyleCamel, nil
	case "snake", "snake_case":
		return StyleSnake, nil
	default:
		return StyleCamel, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("unsupported patch key style %q (expected camel or snake)", value),
			nil,
		)
	}
}

type Generator struct {
	Style Style
}

// Generate converts changes one to one, keeping their order.
func Generate(changes []diff.Change) []Operation {
	return Generator{}.Generate(changes)
}

func (g Generator) Generate(changes []diff.Change) []Operation {
	operations := make([]Operation, 0, len(changes))
	for _, change := range changes {
		switch typed := change.(type) {
		case diff.Added:
			operations = append(operations, Operation{Op: OpAdd, Path: g.Pointer(typed.Path), Value: g.convert(typed.Value)})
		case diff.Removed:
			operations = append(operations, Operation{Op: OpRemove, Path: g.Pointer(typed.Path)})
		case diff.Replaced:
			operations = append(operations, Operation{Op: OpReplace, Path: g.Pointer(typed.Path), Value: g.convert(typed.New)})
		}
	}
	return operations
}

// Pointer renders path as an RFC 6901 JSON Pointer. The empty path is the
// whole document.
func (g Generator) Pointer(path diff.Path) string {
	var builder strings.Builder
	for _, segment := range path {
		if g.Style == StyleCamel {
			segment = keys.Camelize(segment)
		}
		builder.WriteByte('/')
		builder.WriteString(jsonpointer.Escape(segment))
	}
	return builder.String()
}

func (g Generator) convert(value any) any {
	value = attrs.Plain(value)
	if g.Style == StyleSnake {
		return value
	}
	return keys.ToAPI(value)
}
