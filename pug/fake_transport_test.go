package pug

import (
	"context"
	"net/url"
	"testing"

	"github.com/goccy/go-json"

	"github.com/pugvideo/pugvideo-go/attrs"
)

type recordedCall struct {
	method string
	path   string
	params url.Values
	body   string
}

type fakeResponse struct {
	value   any
	deleted bool
	err     error
}

// fakeTransport answers from a queue of responses per "METHOD path" and
// records every call with its JSON-encoded body.
type fakeTransport struct {
	t         *testing.T
	responses map[string][]fakeResponse
	calls     []recordedCall
}

func newFakeTransport(t *testing.T) *fakeTransport {
	return &fakeTransport{t: t, responses: map[string][]fakeResponse{}}
}

// respond queues a JSON document (or nil for an empty body).
func (f *fakeTransport) respond(method string, path string, document string) {
	f.t.Helper()

	var value any
	if document != "" {
		decoded, err := attrs.Decode([]byte(document))
		if err != nil {
			f.t.Fatalf("invalid fixture JSON: %v", err)
		}
		value = decoded
	}
	key := method + " " + path
	f.responses[key] = append(f.responses[key], fakeResponse{value: value, deleted: true})
}

func (f *fakeTransport) respondError(method string, path string, err error) {
	key := method + " " + path
	f.responses[key] = append(f.responses[key], fakeResponse{err: err})
}

func (f *fakeTransport) respondDelete(path string, deleted bool) {
	key := "DELETE " + path
	f.responses[key] = append(f.responses[key], fakeResponse{deleted: deleted})
}

func (f *fakeTransport) next(method string, path string, params url.Values, body any) fakeResponse {
	f.t.Helper()

	encoded := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			f.t.Fatalf("failed to encode request body: %v", err)
		}
		encoded = string(raw)
	}
	f.calls = append(f.calls, recordedCall{method: method, path: path, params: params, body: encoded})

	key := method + " " + path
	queue := f.responses[key]
	if len(queue) == 0 {
		f.t.Fatalf("unexpected request %s", key)
	}
	f.responses[key] = queue[1:]
	return queue[0]
}

func (f *fakeTransport) Get(_ context.Context, path string, params url.Values) (any, error) {
	response := f.next("GET", path, params, nil)
	return response.value, response.err
}

func (f *fakeTransport) Post(_ context.Context, path string, body any) (any, error) {
	response := f.next("POST", path, nil, body)
	return response.value, response.err
}

func (f *fakeTransport) Patch(_ context.Context, path string, body any) (any, error) {
	response := f.next("PATCH", path, nil, body)
	return response.value, response.err
}

func (f *fakeTransport) Put(_ context.Context, path string, body any) (any, error) {
	response := f.next("PUT", path, nil, body)
	return response.value, response.err
}

func (f *fakeTransport) Delete(_ context.Context, path string) (bool, error) {
	response := f.next("DELETE", path, nil, nil)
	return response.deleted, response.err
}
