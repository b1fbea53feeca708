package config

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

type HeaderEntry struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// HeaderList holds "Name: value" lines. In yaml it may be written as a list
// of lines, a list of name/value entries or a plain mapping.
type HeaderList []string

func (h *HeaderList) UnmarshalYAML(value *yaml.Node) error {
	if h == nil || value == nil || value.Kind == 0 {
		return nil
	}

	if value.Kind == yaml.MappingNode {
		var asMap map[string]string
		if err := value.Decode(&asMap); err != nil {
			return fmt.Errorf("invalid default-headers mapping: %w", err)
		}
		names := make([]string, 0, len(asMap))
		for name := range asMap {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]HeaderEntry, 0, len(names))
		for _, name := range names {
			entries = append(entries, HeaderEntry{Name: name, Value: asMap[name]})
		}
		*h = headersFromEntries(entries)
		return nil
	}

	var asStrings []string
	if err := value.Decode(&asStrings); err == nil {
		*h = HeaderList(asStrings)
		return nil
	}

	var asEntries []HeaderEntry
	if err := value.Decode(&asEntries); err == nil {
		*h = headersFromEntries(asEntries)
		return nil
	}

	return fmt.Errorf("invalid default-headers format")
}

func headersFromEntries(entries []HeaderEntry) HeaderList {
	var headers HeaderList
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		value := strings.TrimSpace(entry.Value)
		if name == "" || value == "" {
			continue
		}
		headers = append(headers, fmt.Sprintf("%s: %s", name, value))
	}
	return headers
}

func SplitHeaderLine(header string) (string, string, bool) {
	name, value, found := strings.Cut(header, ":")
	if !found {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", "", false
	}
	return name, value, true
}

// Header converts the list into canonical http.Header form, skipping
// malformed lines.
func (h HeaderList) Header() http.Header {
	result := http.Header{}
	for _, line := range h {
		name, value, ok := SplitHeaderLine(line)
		if !ok {
			continue
		}
		result.Add(name, value)
	}
	return result
}

func (h HeaderList) validate() error {
	for _, line := range h {
		if _, _, ok := SplitHeaderLine(line); !ok {
			return validationError(fmt.Sprintf("default-headers entry %q must look like \"Name: value\"", line), nil)
		}
	}
	return nil
}
