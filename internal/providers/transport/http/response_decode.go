package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pugvideo/pugvideo-go/attrs"
)

func encodeRequestBody(body any) ([]byte, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return typed, nil
	case string:
		return []byte(typed), nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, validationError("failed to encode JSON request body", err)
	}
	return encoded, nil
}

// decodeResponseBody keeps object key order. Bodies that are not JSON come
// back as a string so callers still see what the server said.
func decodeResponseBody(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	value, err := attrs.Decode(body)
	if err != nil {
		return string(body), nil
	}
	return value, nil
}

func classifyStatusError(statusCode int, body []byte) error {
	message := fmt.Sprintf("remote request failed with status %d: %s", statusCode, describeErrorBody(body))

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	case http.StatusTooManyRequests:
		return transportError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return transportError(message, nil)
}

// describeErrorBody prefers the JSON:API errors array and falls back to the
// raw body.
func describeErrorBody(body []byte) string {
	var document struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
			Source struct {
				Pointer string `json:"pointer"`
			} `json:"source"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &document); err != nil || len(document.Errors) == 0 {
		return summarizeBody(body)
	}

	messages := make([]string, 0, len(document.Errors))
	for _, item := range document.Errors {
		text := strings.TrimSpace(item.Detail)
		if text == "" {
			text = strings.TrimSpace(item.Title)
		}
		if text == "" {
			continue
		}
		if item.Source.Pointer != "" {
			text = item.Source.Pointer + ": " + text
		}
		messages = append(messages, text)
	}
	if len(messages) == 0 {
		return summarizeBody(body)
	}
	return summarizeBody([]byte(strings.Join(messages, "; ")))
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
