package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

func (t *HTTPTransport) execute(
	ctx context.Context,
	method string,
	requestPath string,
	params url.Values,
	payload []byte,
) ([]byte, error) {
	target, err := t.resolveRequestURL(requestPath, params)
	if err != nil {
		return nil, err
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, transportError("rate limiter wait failed", err)
		}
	}

	if t.breaker == nil {
		return t.roundTrip(ctx, method, target, payload)
	}

	body, err := t.breaker.Execute(func() ([]byte, error) {
		return t.roundTrip(ctx, method, target, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		t.metrics.rejected(method)
		return nil, transportError(fmt.Sprintf("circuit breaker %q rejected request", t.breaker.Name()), err)
	}
	return body, err
}

func (t *HTTPTransport) roundTrip(ctx context.Context, method string, target *url.URL, payload []byte) ([]byte, error) {
	request, err := t.newRequest(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	response, err := t.doRequest(ctx, "resource", request)
	if err != nil {
		t.metrics.observe(method, "error", time.Since(started))
		return nil, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	t.metrics.observe(method, strconv.Itoa(response.StatusCode), time.Since(started))
	if err != nil {
		return nil, transportError("failed to read remote response body", err)
	}

	if response.StatusCode == http.StatusUnauthorized && t.auth.mode == authModeOAuth2 {
		t.invalidateToken()
	}
	if response.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatusError(response.StatusCode, body)
	}
	return body, nil
}

func (t *HTTPTransport) newRequest(ctx context.Context, method string, target *url.URL, payload []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if len(payload) > 0 {
		bodyReader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	for name, values := range t.defaultHeaders {
		request.Header[name] = append([]string(nil), values...)
	}
	request.Header.Set("Accept", defaultMediaType)
	if len(payload) > 0 {
		request.Header.Set("Content-Type", defaultMediaType)
	}
	request.Header.Set("User-Agent", t.userAgent)
	if t.newRequestID != nil {
		request.Header.Set(requestIDHeader, t.newRequestID())
	}

	if err := t.applyAuth(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// resolveRequestURL joins a relative path under the base URL. Absolute URLs,
// such as pagination links, are accepted only on the base URL's host.
func (t *HTTPTransport) resolveRequestURL(requestPath string, params url.Values) (*url.URL, error) {
	trimmed := strings.TrimSpace(requestPath)
	if trimmed == "" {
		return nil, validationError("request path is required", nil)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, validationError(fmt.Sprintf("request path %q is invalid", trimmed), err)
	}

	var target url.URL
	switch {
	case parsed.IsAbs():
		if !strings.EqualFold(parsed.Scheme, t.baseURL.Scheme) || !strings.EqualFold(parsed.Host, t.baseURL.Host) {
			return nil, validationError(
				fmt.Sprintf("request URL %q is not on the API host %q", redactURLForDebug(parsed), t.baseURL.Host),
				nil,
			)
		}
		target = *parsed
	case parsed.Host != "":
		return nil, validationError(fmt.Sprintf("request path %q must not name a host", trimmed), nil)
	default:
		escapedPath := parsed.EscapedPath()
		for _, segment := range strings.Split(escapedPath, "/") {
			if segment == "." || segment == ".." {
				return nil, validationError(fmt.Sprintf("request path %q must not contain traversal segments", trimmed), nil)
			}
		}

		joined := joinEscapedPath(t.baseURL.EscapedPath(), escapedPath)
		unescaped, err := url.PathUnescape(joined)
		if err != nil {
			return nil, validationError(fmt.Sprintf("request path %q is invalid", trimmed), err)
		}
		target = *t.baseURL
		target.Path = unescaped
		target.RawPath = joined
		target.RawQuery = parsed.RawQuery
	}
	target.Fragment = ""
	target.User = nil

	if len(params) > 0 {
		values := target.Query()
		for key, items := range params {
			values[key] = append([]string(nil), items...)
		}
		target.RawQuery = values.Encode()
	}
	return &target, nil
}

func joinEscapedPath(basePath string, requestPath string) string {
	base := strings.TrimRight(basePath, "/")
	request := strings.Trim(requestPath, "/")
	if request == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + request
}
