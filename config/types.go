package config

import "time"

type ProfileSelection struct {
	Name      string
	Overrides map[string]string
}

const (
	ProfilesFileEnvVar        = "PUGVIDEO_PROFILES_FILE"
	DefaultProfileCatalogPath = "~/.pugvideo/profiles.yaml"
	DefaultBaseURL            = "https://api.pugvideo.com/v1"
	DefaultTimeout            = 30 * time.Second
	PatchKeyStyleCamel        = "camel"
	PatchKeyStyleSnake        = "snake"
	OAuthClientCreds          = "client_credentials"
)

type ProfileCatalog struct {
	Profiles       []Profile `yaml:"profiles"`
	CurrentProfile string    `yaml:"current-profile"`
}

type Profile struct {
	Name        string            `yaml:"name"`
	Client      Client            `yaml:"client"`
	Preferences map[string]string `yaml:"preferences,omitempty"`
}

// Client configures one API client. Zero values fall back to the package
// defaults through WithDefaults.
type Client struct {
	BaseURL        string          `yaml:"base-url" validate:"required,url"`
	Auth           *Auth           `yaml:"auth,omitempty"`
	TLS            *TLS            `yaml:"tls,omitempty"`
	Timeout        time.Duration   `yaml:"timeout,omitempty" validate:"gte=0"`
	UserAgent      string          `yaml:"user-agent,omitempty"`
	DefaultHeaders HeaderList      `yaml:"default-headers,omitempty"`
	PatchKeyStyle  string          `yaml:"patch-key-style,omitempty" validate:"omitempty,oneof=camel snake"`
	RateLimit      *RateLimit      `yaml:"rate-limit,omitempty"`
	CircuitBreaker *CircuitBreaker `yaml:"circuit-breaker,omitempty"`
}

type Auth struct {
	OAuth2      *OAuth2          `yaml:"oauth2,omitempty"`
	BearerToken *BearerTokenAuth `yaml:"bearer-token,omitempty"`
}

type OAuth2 struct {
	TokenURL     string `yaml:"token-url" validate:"required,url"`
	GrantType    string `yaml:"grant-type,omitempty" validate:"omitempty,eq=client_credentials"`
	ClientID     string `yaml:"client-id" validate:"required"`
	ClientSecret string `yaml:"client-secret" validate:"required"`
	Scope        string `yaml:"scope,omitempty"`
	Audience     string `yaml:"audience,omitempty"`
}

type BearerTokenAuth struct {
	Token string `yaml:"token" validate:"required"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests-per-second" validate:"gt=0"`
	Burst             int     `yaml:"burst,omitempty" validate:"gte=0"`
}

type CircuitBreaker struct {
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32 `yaml:"max-failures" validate:"gte=1"`
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration `yaml:"open-timeout,omitempty" validate:"gte=0"`
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `yaml:"interval,omitempty" validate:"gte=0"`
}

// WithDefaults fills unset optional values.
func (c Client) WithDefaults() Client {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PatchKeyStyle == "" {
		c.PatchKeyStyle = PatchKeyStyleCamel
	}
	if c.Auth != nil && c.Auth.OAuth2 != nil && c.Auth.OAuth2.GrantType == "" {
		oauth := *c.Auth.OAuth2
		oauth.GrantType = OAuthClientCreds
		c.Auth = &Auth{OAuth2: &oauth, BearerToken: c.Auth.BearerToken}
	}
	return c
}
