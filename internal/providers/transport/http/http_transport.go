package http

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/internal/providers/shared/tlsconfig"
	"github.com/pugvideo/pugvideo-go/transport"
)

const (
	defaultMediaType = "application/vnd.api+json"
	defaultUserAgent = "pugvideo-go"
	requestIDHeader  = "X-Request-Id"
	maxResponseBytes = 8 << 20
)

var _ transport.Transport = (*HTTPTransport)(nil)

// HTTPTransport talks JSON:API to the Pug Video API. It is safe for
// concurrent use.
type HTTPTransport struct {
	baseURL        *url.URL
	defaultHeaders http.Header
	userAgent      string
	auth           authConfig
	client         *http.Client
	tlsDebug       tlsDebugInfo
	logger         logr.Logger
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
	metrics        *requestMetrics
	newRequestID   func() string

	oauthMu          sync.Mutex
	oauthAccessToken string
	oauthExpiresAt   time.Time
}

type Option func(*HTTPTransport)

// WithHTTPClient replaces the client built from the TLS and timeout
// settings.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithMetrics registers request counters and latency histograms on
// registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(t *HTTPTransport) {
		if registerer != nil {
			t.metrics = newRequestMetrics(registerer)
		}
	}
}

func withRequestIDFunc(fn func() string) Option {
	return func(t *HTTPTransport) {
		t.newRequestID = fn
	}
}

func NewHTTPTransport(cfg config.Client, opts ...Option) (*HTTPTransport, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuthConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	roundTripper := http.DefaultTransport.(*http.Transport).Clone()
	roundTripper.TLSClientConfig = tlsConfig

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	t := &HTTPTransport{
		baseURL:        baseURL,
		defaultHeaders: cfg.DefaultHeaders.Header(),
		userAgent:      userAgent,
		auth:           auth,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: roundTripper,
		},
		tlsDebug:     newTLSDebugInfo(cfg.TLS),
		logger:       logr.Discard(),
		limiter:      newLimiter(cfg.RateLimit),
		newRequestID: uuid.NewString,
	}
	t.breaker = newBreaker(cfg.CircuitBreaker, t)

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t, nil
}

func (t *HTTPTransport) Get(ctx context.Context, path string, params url.Values) (any, error) {
	return t.call(ctx, http.MethodGet, path, params, nil)
}

func (t *HTTPTransport) Post(ctx context.Context, path string, body any) (any, error) {
	return t.call(ctx, http.MethodPost, path, nil, body)
}

func (t *HTTPTransport) Patch(ctx context.Context, path string, body any) (any, error) {
	return t.call(ctx, http.MethodPatch, path, nil, body)
}

func (t *HTTPTransport) Put(ctx context.Context, path string, body any) (any, error) {
	return t.call(ctx, http.MethodPut, path, nil, body)
}

// Delete returns true once the server answers with a success status.
func (t *HTTPTransport) Delete(ctx context.Context, path string) (bool, error) {
	if _, err := t.execute(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (t *HTTPTransport) call(ctx context.Context, method string, path string, params url.Values, body any) (any, error) {
	payload, err := encodeRequestBody(body)
	if err != nil {
		return nil, err
	}

	responseBody, err := t.execute(ctx, method, path, params, payload)
	if err != nil {
		return nil, err
	}
	return decodeResponseBody(responseBody)
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("client.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("client.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("client.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("client.base-url host is required", nil)
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
		parsed.RawPath = ""
	}
	return parsed, nil
}

func buildTLSConfig(tlsSettings *config.TLS) (*tls.Config, error) {
	return tlsconfig.BuildTLSConfig(tlsSettings, "client")
}

func newLimiter(settings *config.RateLimit) *rate.Limiter {
	if settings == nil || settings.RequestsPerSecond <= 0 {
		return nil
	}
	burst := settings.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
}
