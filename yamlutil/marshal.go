// Package yamlutil holds the yaml layout shared by profile catalogs and CLI
// output.
package yamlutil

import (
	"bytes"

	"go.yaml.in/yaml/v3"
)

// Indent matches the layout of hand-written profile catalogs.
const Indent = 2

func Marshal(v any) ([]byte, error) {
	return MarshalDocuments(v)
}

// MarshalDocuments writes one yaml document per value, separated by "---"
// lines. No values yields no output.
func MarshalDocuments(values ...any) ([]byte, error) {
	// an encoder closed before its first document reports an error
	if len(values) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(Indent)
	for _, value := range values {
		if err := encoder.Encode(value); err != nil {
			_ = encoder.Close()
			return nil, err
		}
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
