package resource

import "slices"

// Kind describes one remote resource type.
type Kind struct {
	// Name is the singular CLI name, e.g. "video".
	Name string
	// Type is the JSON:API type, e.g. "videos".
	Type string
	// Path is the collection endpoint, e.g. "/videos".
	Path string
	// Fields lists the attributes callers may write. Empty allows any field.
	Fields []string
	// ReadOnly lists server-managed attributes. "id" is always read-only.
	ReadOnly []string
}

func (k Kind) IsReadOnly(field string) bool {
	return field == "id" || slices.Contains(k.ReadOnly, field)
}

// Known reports whether field is declared for the kind.
func (k Kind) Known(field string) bool {
	if len(k.Fields) == 0 {
		return true
	}
	return slices.Contains(k.Fields, field) || k.IsReadOnly(field)
}

func (k Kind) ItemPath(id string) (string, error) {
	return JoinItemPath(k.Path, id)
}

func (k Kind) CollectionPath() (string, error) {
	return NormalizeCollectionPath(k.Path)
}
