package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/debugctx"
)

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
	clientCertFile     string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
		clientCertFile:     strings.TrimSpace(tlsSettings.ClientCertFile),
	}
}

func (info tlsDebugInfo) mTLSEnabled() bool {
	return info.clientCertFile != ""
}

// requestLogger prefers the context debug logger so `--debug` output works
// without configuring one on the transport.
func (t *HTTPTransport) requestLogger(ctx context.Context) logr.Logger {
	if debugctx.Enabled(ctx) {
		return debugctx.Logger(ctx).WithName("http")
	}
	return t.logger.WithName("http")
}

func (t *HTTPTransport) doRequest(ctx context.Context, purpose string, request *http.Request) (*http.Response, error) {
	logger := t.requestLogger(ctx).WithValues(
		"purpose", purpose,
		"method", request.Method,
		"url", redactURLForDebug(request.URL),
	)
	if requestID := request.Header.Get(requestIDHeader); requestID != "" {
		logger = logger.WithValues("request_id", requestID)
	}

	logger.V(1).Info(
		"http request",
		"tls_enabled", t.tlsDebug.enabled,
		"mtls_enabled", t.tlsDebug.mTLSEnabled(),
		"tls_insecure_skip_verify", t.tlsDebug.insecureSkipVerify,
		"tls_ca_cert_file", t.tlsDebug.caCertFile,
	)

	started := time.Now()
	response, err := t.client.Do(request)
	if err != nil {
		logger.Error(err, "http request failed", "elapsed", time.Since(started).String())
		return nil, err
	}

	logger.V(1).Info("http response", "status", response.StatusCode, "elapsed", time.Since(started).String())
	return response, nil
}

// redactURLForDebug hides userinfo and query values. Query values can carry
// tokens or pagination cursors.
func redactURLForDebug(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil

	query := cloned.Query()
	if len(query) > 0 {
		for key, values := range query {
			redacted := make([]string, len(values))
			for idx := range values {
				redacted[idx] = "<redacted>"
			}
			query[key] = redacted
		}
		cloned.RawQuery = query.Encode()
	}

	return cloned.String()
}
