package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/debugctx"
	"github.com/pugvideo/pugvideo-go/faults"
)

func bearerConfig(baseURL string) config.Client {
	return config.Client{
		BaseURL: baseURL,
		Auth:    &config.Auth{BearerToken: &config.BearerTokenAuth{Token: "static-token"}},
	}
}

func newTestTransport(t *testing.T, cfg config.Client, opts ...Option) *HTTPTransport {
	t.Helper()

	transport, err := NewHTTPTransport(cfg, opts...)
	if err != nil {
		t.Fatalf("NewHTTPTransport returned error: %v", err)
	}
	return transport
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %s, got %v", category, err)
	}
}

func TestNewHTTPTransportValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Client
	}{
		{
			name: "unsupported_scheme",
			cfg:  config.Client{BaseURL: "ftp://api.pugvideo.com/v1"},
		},
		{
			name: "relative_base_url",
			cfg:  config.Client{BaseURL: "api.pugvideo.com"},
		},
		{
			name: "two_auth_modes",
			cfg: config.Client{
				BaseURL: "https://api.pugvideo.com/v1",
				Auth: &config.Auth{
					BearerToken: &config.BearerTokenAuth{Token: "a"},
					OAuth2: &config.OAuth2{
						TokenURL:     "https://auth.pugvideo.com/token",
						ClientID:     "id",
						ClientSecret: "secret",
					},
				},
			},
		},
		{
			name: "incomplete_tls_pair",
			cfg: config.Client{
				BaseURL: "https://api.pugvideo.com/v1",
				TLS:     &config.TLS{ClientCertFile: "/tmp/only-cert.pem"},
			},
		},
		{
			name: "bad_patch_style",
			cfg: config.Client{
				BaseURL:       "https://api.pugvideo.com/v1",
				PatchKeyStyle: "kebab",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewHTTPTransport(tt.cfg)
			assertTypedCategory(t, err, faults.ValidationError)
		})
	}
}

func TestOAuthTokenCachedAcrossRequests(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			tokenCalls.Add(1)
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse token form: %v", err)
			}
			if r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "pug" {
				t.Errorf("unexpected token form %v", r.Form)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
		case "/v1/videos":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("unexpected authorization header %q", got)
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, config.Client{
		BaseURL: server.URL + "/v1",
		Auth: &config.Auth{OAuth2: &config.OAuth2{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "pug",
			ClientSecret: "secret",
		}},
	})

	for range 3 {
		if _, err := transport.Get(context.Background(), "/videos", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("expected one token request, got %d", got)
	}

	token, err := transport.AccessToken(context.Background())
	if err != nil || token != "tok-1" {
		t.Fatalf("expected cached token, got %q err=%v", token, err)
	}
}

func TestOAuthTokenRefetchedAfterUnauthorized(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	var resourceCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			tokenCalls.Add(1)
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
			return
		}
		if resourceCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"detail":"token revoked"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, config.Client{
		BaseURL: server.URL,
		Auth: &config.Auth{OAuth2: &config.OAuth2{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "pug",
			ClientSecret: "secret",
		}},
	})

	_, err := transport.Get(context.Background(), "/videos/1", nil)
	assertTypedCategory(t, err, faults.AuthError)
	if !strings.Contains(err.Error(), "token revoked") {
		t.Fatalf("expected JSON:API detail in error, got %v", err)
	}

	if _, err := transport.Get(context.Background(), "/videos/1", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got := tokenCalls.Load(); got != 2 {
		t.Fatalf("expected token to be fetched again after 401, got %d token calls", got)
	}
}

func TestOAuthTokenEndpointFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, config.Client{
		BaseURL: server.URL,
		Auth: &config.Auth{OAuth2: &config.OAuth2{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "pug",
			ClientSecret: "wrong",
		}},
	})

	_, err := transport.Get(context.Background(), "/videos", nil)
	assertTypedCategory(t, err, faults.AuthError)
	if !strings.Contains(err.Error(), "invalid_client") {
		t.Fatalf("expected token endpoint body in error, got %v", err)
	}
}

func TestRequestHeadersAndBody(t *testing.T) {
	t.Parallel()

	type capturedRequest struct {
		request *http.Request
		body    []byte
	}
	requests := make(chan capturedRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- capturedRequest{request: r.Clone(context.Background()), body: body}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"v1","type":"videos","attributes":{"title":"Pug"}}}`))
	}))
	t.Cleanup(server.Close)

	cfg := bearerConfig(server.URL + "/v1")
	cfg.UserAgent = "pugctl/test"
	cfg.DefaultHeaders = config.HeaderList{"X-Team: media"}
	transport := newTestTransport(t, cfg, withRequestIDFunc(func() string { return "req-123" }))

	body := map[string]any{"data": map[string]any{"type": "videos", "attributes": map[string]any{"title": "Pug"}}}
	if _, err := transport.Post(context.Background(), "/videos", body); err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	received := <-requests
	captured, capturedBody := received.request, received.body

	checks := map[string]string{
		"Accept":        defaultMediaType,
		"Content-Type":  defaultMediaType,
		"User-Agent":    "pugctl/test",
		"X-Request-Id":  "req-123",
		"X-Team":        "media",
		"Authorization": "Bearer static-token",
	}
	for name, want := range checks {
		if got := captured.Header.Get(name); got != want {
			t.Fatalf("expected %s=%q, got %q", name, want, got)
		}
	}
	if captured.Method != http.MethodPost || captured.URL.Path != "/v1/videos" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL.Path)
	}
	if !bytes.Contains(capturedBody, []byte(`"attributes":{"title":"Pug"}`)) {
		t.Fatalf("unexpected request body %s", capturedBody)
	}
}

func TestRequestIDIsUniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(requestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, bearerConfig(server.URL))
	for range 2 {
		if _, err := transport.Get(context.Background(), "/videos", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}

	first, second := <-seen, <-seen
	if first == "" || first == second {
		t.Fatalf("expected distinct request ids, got %q and %q", first, second)
	}
}

func TestGetDecodesOrderedDocument(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"1","attributes":{"zeta":1,"alpha":2.5}}}`))
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, bearerConfig(server.URL))
	value, err := transport.Get(context.Background(), "/videos/1", nil)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	document, ok := value.(*attrs.Map)
	if !ok {
		t.Fatalf("expected *attrs.Map, got %T", value)
	}
	data, _ := document.Map("data")
	attributes, _ := data.Map("attributes")
	if got := attributes.Keys(); len(got) != 2 || got[0] != "zeta" || got[1] != "alpha" {
		t.Fatalf("expected response key order to be kept, got %v", got)
	}
	if attributes.Value("zeta") != int64(1) || attributes.Value("alpha") != 2.5 {
		t.Fatalf("unexpected scalar normalization %#v", attributes.Plain())
	}
}

func TestEmptyAndNonJSONResponses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/text" {
			_, _ = w.Write([]byte("accepted"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, bearerConfig(server.URL))

	value, err := transport.Patch(context.Background(), "/empty", map[string]any{"data": []any{}})
	if err != nil || value != nil {
		t.Fatalf("expected nil value for empty body, got %#v err=%v", value, err)
	}

	value, err = transport.Put(context.Background(), "/text", nil)
	if err != nil || value != "accepted" {
		t.Fatalf("expected raw text body, got %#v err=%v", value, err)
	}
}

func TestDeleteReportsConfirmation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Path == "/videos/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, bearerConfig(server.URL))

	deleted, err := transport.Delete(context.Background(), "/videos/v1")
	if err != nil || !deleted {
		t.Fatalf("expected confirmed delete, got %t err=%v", deleted, err)
	}

	deleted, err = transport.Delete(context.Background(), "/videos/missing")
	assertTypedCategory(t, err, faults.NotFoundError)
	if deleted {
		t.Fatalf("expected delete to report false on error")
	}
}

func TestClassifyStatusError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   int
		category faults.ErrorCategory
	}{
		{status: http.StatusBadRequest, category: faults.ValidationError},
		{status: http.StatusUnauthorized, category: faults.AuthError},
		{status: http.StatusForbidden, category: faults.AuthError},
		{status: http.StatusNotFound, category: faults.NotFoundError},
		{status: http.StatusConflict, category: faults.ConflictError},
		{status: http.StatusUnprocessableEntity, category: faults.ValidationError},
		{status: http.StatusTooManyRequests, category: faults.TransportError},
		{status: http.StatusInternalServerError, category: faults.TransportError},
		{status: http.StatusBadGateway, category: faults.TransportError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			err := classifyStatusError(tt.status, []byte(`{"errors":[{"title":"Invalid","detail":"title is too long","source":{"pointer":"/data/attributes/title"}}]}`))
			assertTypedCategory(t, err, tt.category)
			if !strings.Contains(err.Error(), "/data/attributes/title: title is too long") {
				t.Fatalf("expected JSON:API detail in %q", err.Error())
			}
		})
	}
}

func TestDescribeErrorBodyFallsBackToRawBody(t *testing.T) {
	t.Parallel()

	if got := describeErrorBody([]byte("  upstream timeout  ")); got != "upstream timeout" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := describeErrorBody(nil); got != "<empty>" {
		t.Fatalf("unexpected summary %q", got)
	}
	long := strings.Repeat("x", 600)
	if got := describeErrorBody([]byte(long)); len(got) != 515 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated summary, got %d chars", len(got))
	}
}

func TestResolveRequestURL(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, bearerConfig("https://api.pugvideo.com/v1/"))

	tests := []struct {
		name   string
		path   string
		params url.Values
		want   string
	}{
		{
			name: "collection",
			path: "/videos",
			want: "https://api.pugvideo.com/v1/videos",
		},
		{
			name: "escaped_id_kept",
			path: "/videos/a%2Fb",
			want: "https://api.pugvideo.com/v1/videos/a%2Fb",
		},
		{
			name:   "params_merged",
			path:   "/videos?include=tags",
			params: url.Values{"page[size]": {"10"}},
			want:   "https://api.pugvideo.com/v1/videos?include=tags&page%5Bsize%5D=10",
		},
		{
			name: "absolute_next_link",
			path: "https://api.pugvideo.com/v1/videos?page%5Bafter%5D=abc#frag",
			want: "https://api.pugvideo.com/v1/videos?page%5Bafter%5D=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, err := transport.resolveRequestURL(tt.path, tt.params)
			if err != nil {
				t.Fatalf("resolveRequestURL returned error: %v", err)
			}
			if got := target.String(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}

	for _, rejected := range []string{
		"",
		"https://evil.example.com/v1/videos",
		"http://api.pugvideo.com/v1/videos",
		"//evil.example.com/videos",
		"/videos/../admin",
	} {
		if _, err := transport.resolveRequestURL(rejected, nil); !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected %q to be rejected, got %v", rejected, err)
		}
	}
}

func TestMetricsCountRequests(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	registry := prometheus.NewRegistry()
	transport := newTestTransport(t, bearerConfig(server.URL), WithMetrics(registry))

	for range 2 {
		if _, err := transport.Get(context.Background(), "/videos", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	_, _ = transport.Get(context.Background(), "/missing", nil)

	if got := testutil.ToFloat64(transport.metrics.requests.WithLabelValues("GET", "200")); got != 2 {
		t.Fatalf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(transport.metrics.requests.WithLabelValues("GET", "404")); got != 1 {
		t.Fatalf("expected 1 not-found request, got %v", got)
	}
	if got := testutil.CollectAndCount(transport.metrics.duration); got != 1 {
		t.Fatalf("expected one latency series, got %d", got)
	}
}

func TestCircuitBreakerOpensOnTransportFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := bearerConfig(server.URL)
	cfg.CircuitBreaker = &config.CircuitBreaker{MaxFailures: 2, OpenTimeout: time.Minute}
	registry := prometheus.NewRegistry()
	transport := newTestTransport(t, cfg, WithMetrics(registry))

	for range 2 {
		_, err := transport.Get(context.Background(), "/videos", nil)
		assertTypedCategory(t, err, faults.TransportError)
	}

	_, err := transport.Get(context.Background(), "/videos", nil)
	assertTypedCategory(t, err, faults.TransportError)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker error, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected open breaker to short-circuit, server saw %d calls", got)
	}
	if got := testutil.ToFloat64(transport.metrics.breaker); got != 2 {
		t.Fatalf("expected breaker gauge to report open, got %v", got)
	}
	if got := testutil.ToFloat64(transport.metrics.rejects.WithLabelValues("GET")); got != 1 {
		t.Fatalf("expected one rejected request, got %v", got)
	}
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	cfg := bearerConfig(server.URL)
	cfg.CircuitBreaker = &config.CircuitBreaker{MaxFailures: 1, OpenTimeout: time.Minute}
	transport := newTestTransport(t, cfg)

	for range 3 {
		_, err := transport.Get(context.Background(), "/videos/missing", nil)
		assertTypedCategory(t, err, faults.NotFoundError)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected every request to reach the server, got %d", got)
	}
}

func TestRateLimiterRespectsContextDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	cfg := bearerConfig(server.URL)
	cfg.RateLimit = &config.RateLimit{RequestsPerSecond: 0.01, Burst: 1}
	transport := newTestTransport(t, cfg)

	if _, err := transport.Get(context.Background(), "/videos", nil); err != nil {
		t.Fatalf("first request should use the burst, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := transport.Get(ctx, "/videos", nil)
	assertTypedCategory(t, err, faults.TransportError)
	if !strings.Contains(err.Error(), "rate limiter") {
		t.Fatalf("expected rate limiter error, got %v", err)
	}
}

func TestDebugContextLogsRedactedRequests(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	transport := newTestTransport(t, bearerConfig(server.URL))

	var output bytes.Buffer
	ctx := debugctx.WithWriter(debugctx.WithEnabled(context.Background(), true), &output)
	if _, err := transport.Get(ctx, "/videos", url.Values{"api_key": {"secret"}}); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	logged := output.String()
	if !strings.Contains(logged, "debug: http: ") || !strings.Contains(logged, `"msg"="http response"`) {
		t.Fatalf("expected request log lines, got %q", logged)
	}
	if strings.Contains(logged, "secret") {
		t.Fatalf("expected query values to be redacted, got %q", logged)
	}
}
