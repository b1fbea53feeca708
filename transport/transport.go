// Package transport declares the HTTP capability the SDK core consumes.
//
// Responses are JSON:API documents decoded with ordered objects (*attrs.Map)
// and arrays (*attrs.List). A nil response means the server sent no body.
package transport

import (
	"context"
	"net/url"
)

type Transport interface {
	Get(ctx context.Context, path string, params url.Values) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Patch(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	// Delete reports whether the server confirmed the deletion.
	Delete(ctx context.Context, path string) (bool, error)
}
