package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pugvideo/pugvideo-go/config"
)

type authMode int

const (
	authModeNone authMode = iota
	authModeOAuth2
	authModeBearer
)

type authConfig struct {
	mode        authMode
	oauth2      config.OAuth2
	bearerToken config.BearerTokenAuth
}

// buildAuthConfig expects a validated client config. A nil block sends
// requests without credentials.
func buildAuthConfig(cfg *config.Auth) (authConfig, error) {
	if cfg == nil {
		return authConfig{mode: authModeNone}, nil
	}

	switch {
	case cfg.OAuth2 != nil:
		oauth := *cfg.OAuth2
		if strings.TrimSpace(oauth.GrantType) != config.OAuthClientCreds {
			return authConfig{}, validationError("client.auth.oauth2.grant-type supports only client_credentials", nil)
		}
		tokenURL, err := url.Parse(oauth.TokenURL)
		if err != nil || tokenURL.Scheme == "" || tokenURL.Host == "" {
			return authConfig{}, validationError("client.auth.oauth2.token-url is invalid", err)
		}
		return authConfig{mode: authModeOAuth2, oauth2: oauth}, nil
	case cfg.BearerToken != nil:
		return authConfig{mode: authModeBearer, bearerToken: *cfg.BearerToken}, nil
	default:
		return authConfig{mode: authModeNone}, nil
	}
}

func (t *HTTPTransport) applyAuth(ctx context.Context, request *http.Request) error {
	switch t.auth.mode {
	case authModeOAuth2:
		token, err := t.oauthToken(ctx)
		if err != nil {
			return err
		}
		request.Header.Set("Authorization", "Bearer "+token)
	case authModeBearer:
		request.Header.Set("Authorization", "Bearer "+t.auth.bearerToken.Token)
	}
	return nil
}

// AccessToken returns the bearer credential the transport would send, or ""
// when auth is disabled.
func (t *HTTPTransport) AccessToken(ctx context.Context) (string, error) {
	switch t.auth.mode {
	case authModeOAuth2:
		return t.oauthToken(ctx)
	case authModeBearer:
		return t.auth.bearerToken.Token, nil
	default:
		return "", nil
	}
}

// oauthToken fetches a client-credentials token and caches it until 30
// seconds before it expires.
func (t *HTTPTransport) oauthToken(ctx context.Context) (string, error) {
	t.oauthMu.Lock()
	if t.oauthAccessToken != "" && time.Now().Before(t.oauthExpiresAt.Add(-30*time.Second)) {
		token := t.oauthAccessToken
		t.oauthMu.Unlock()
		return token, nil
	}
	t.oauthMu.Unlock()

	formValues := url.Values{}
	formValues.Set("grant_type", t.auth.oauth2.GrantType)
	formValues.Set("client_id", t.auth.oauth2.ClientID)
	formValues.Set("client_secret", t.auth.oauth2.ClientSecret)
	if strings.TrimSpace(t.auth.oauth2.Scope) != "" {
		formValues.Set("scope", t.auth.oauth2.Scope)
	}
	if strings.TrimSpace(t.auth.oauth2.Audience) != "" {
		formValues.Set("audience", t.auth.oauth2.Audience)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.auth.oauth2.TokenURL,
		strings.NewReader(formValues.Encode()),
	)
	if err != nil {
		return "", internalError("failed to create oauth2 token request", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("User-Agent", t.userAgent)

	response, err := t.doRequest(ctx, "oauth2-token", request)
	if err != nil {
		return "", transportError("oauth2 token request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return "", transportError("failed to read oauth2 token response", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return "", authError(
			fmt.Sprintf("oauth2 token request failed with status %d: %s", response.StatusCode, summarizeBody(body)),
			nil,
		)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", authError("oauth2 token response is not valid JSON", err)
	}
	if strings.TrimSpace(tokenResponse.AccessToken) == "" {
		return "", authError("oauth2 token response does not include access_token", nil)
	}

	expiresAt := time.Now().Add(time.Hour)
	if tokenResponse.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second)
	}

	t.oauthMu.Lock()
	t.oauthAccessToken = tokenResponse.AccessToken
	t.oauthExpiresAt = expiresAt
	t.oauthMu.Unlock()

	return tokenResponse.AccessToken, nil
}

// invalidateToken drops the cached token after the API rejects it.
func (t *HTTPTransport) invalidateToken() {
	t.oauthMu.Lock()
	t.oauthAccessToken = ""
	t.oauthExpiresAt = time.Time{}
	t.oauthMu.Unlock()
}
