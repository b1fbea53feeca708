package resource

import (
	"net/url"
	"path"
	"strings"

	"github.com/pugvideo/pugvideo-go/faults"
)

// NormalizeCollectionPath cleans an endpoint path such as "/videos/" into
// "/videos". Paths must be absolute and free of traversal segments.
func NormalizeCollectionPath(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", faults.NewTypedError(faults.ValidationError, "collection path must not be empty", nil)
	}

	normalizedInput := strings.ReplaceAll(strings.TrimSpace(value), "\\", "/")
	if !strings.HasPrefix(normalizedInput, "/") {
		return "", faults.NewTypedError(faults.ValidationError, "collection path must be absolute", nil)
	}
	for _, segment := range strings.Split(normalizedInput, "/") {
		if segment == ".." || segment == "." {
			return "", faults.NewTypedError(faults.ValidationError, "collection path must not contain traversal segments", nil)
		}
	}

	cleaned := path.Clean(normalizedInput)
	if cleaned != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned, nil
}

// JoinItemPath appends an escaped resource id to a collection path.
func JoinItemPath(collectionPath string, id string) (string, error) {
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return "", faults.NewTypedError(faults.ValidationError, "resource id must not be empty", nil)
	}
	if trimmedID == "." || trimmedID == ".." {
		return "", faults.NewTypedError(faults.ValidationError, "resource id must not be a traversal segment", nil)
	}

	normalized, err := NormalizeCollectionPath(collectionPath)
	if err != nil {
		return "", err
	}
	if normalized == "/" {
		return "/" + url.PathEscape(trimmedID), nil
	}
	return normalized + "/" + url.PathEscape(trimmedID), nil
}

// SplitPathSegments returns the unescaped segments of an endpoint path.
func SplitPathSegments(value string) []string {
	normalized, err := NormalizeCollectionPath(value)
	if err != nil || normalized == "/" {
		return nil
	}

	segments := strings.Split(strings.TrimPrefix(normalized, "/"), "/")
	for idx, segment := range segments {
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segments[idx] = unescaped
		}
	}
	return segments
}
