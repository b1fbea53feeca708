package pug

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/patch"
)

func TestNewClientUsesConfiguredPatchStyle(t *testing.T) {
	t.Parallel()

	patches := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"data":{"id":"ns1","type":"namespaces","attributes":{"name":"Pugs","videoCount":3}}}`))
		case http.MethodPatch:
			body, _ := io.ReadAll(r.Body)
			patches <- string(body)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.Client{
		BaseURL:       server.URL + "/v1",
		Auth:          &config.Auth{BearerToken: &config.BearerTokenAuth{Token: "tok"}},
		PatchKeyStyle: config.PatchKeyStyleSnake,
	}, WithMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.PatchStyle() != patch.StyleSnake {
		t.Fatalf("expected snake style from config, got %v", client.PatchStyle())
	}

	namespace, err := client.Namespaces.Get(context.Background(), "ns1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if namespace.VideoCount() != 3 {
		t.Fatalf("unexpected video count %d", namespace.VideoCount())
	}

	if err := namespace.SetDescription("Only pugs"); err != nil {
		t.Fatalf("SetDescription returned error: %v", err)
	}
	if err := client.Namespaces.Save(context.Background(), namespace); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if got := <-patches; got != `{"data":[{"op":"add","path":"/description","value":"Only pugs"}]}` {
		t.Fatalf("unexpected patch body %s", got)
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.Client{BaseURL: "https://api.pugvideo.com/v1", PatchKeyStyle: "kebab"})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewClientSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"video not found"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.Client{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := client.Videos.Get(context.Background(), "missing"); !faults.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
