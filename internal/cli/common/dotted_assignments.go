package common

import (
	"strings"

	"go.yaml.in/yaml/v3"
)

// Assignment is one parsed key=value pair. Values are read as yaml scalars
// or flow collections, so "true", "12" and "[a, b]" keep their types.
type Assignment struct {
	Path  []string
	Value any
}

func (a Assignment) Key() string {
	return strings.Join(a.Path, ".")
}

func ParseAssignments(raw []string) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(raw))
	for _, item := range raw {
		part := strings.TrimSpace(item)
		if part == "" {
			return nil, ValidationError("invalid assignment: empty item", nil)
		}
		pieces := strings.SplitN(part, "=", 2)
		if len(pieces) != 2 {
			return nil, ValidationError("invalid assignment: expected key=value", nil)
		}

		key := strings.TrimSpace(pieces[0])
		if key == "" {
			return nil, ValidationError("invalid assignment: key must not be empty", nil)
		}
		segments := strings.Split(key, ".")
		for idx, segment := range segments {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				return nil, ValidationError("invalid assignment key: empty path segment", nil)
			}
			segments[idx] = segment
		}

		value, err := parseAssignmentValue(strings.TrimSpace(pieces[1]))
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, Assignment{Path: segments, Value: value})
	}
	return assignments, nil
}

func parseAssignmentValue(raw string) (any, error) {
	if raw == "" {
		return "", nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, ValidationError("invalid assignment value "+raw, err)
	}
	switch value.(type) {
	case map[string]any, []any, string, bool, int, float64, nil:
		return value, nil
	default:
		// timestamps and other resolved yaml types stay as written
		return raw, nil
	}
}

// ApplyAssignments writes assignments into target, creating nested objects
// for dotted keys.
func ApplyAssignments(target map[string]any, assignments []Assignment) error {
	for _, assignment := range assignments {
		if err := setDottedAssignmentValue(target, assignment.Path, assignment.Value); err != nil {
			return err
		}
	}
	return nil
}

func setDottedAssignmentValue(target map[string]any, segments []string, value any) error {
	current := target
	for idx, segment := range segments {
		isLeaf := idx == len(segments)-1
		if isLeaf {
			current[segment] = value
			return nil
		}

		next, exists := current[segment]
		if !exists {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return ValidationError("invalid assignment: key path conflicts with scalar value", nil)
		}
		current = child
	}

	return nil
}
