package file

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pugvideo/pugvideo-go/config"
)

// Environment variables layered over the selected profile. Explicit
// overrides in the selection win over these.
var envOverrideKeys = map[string]string{
	"PUGVIDEO_BASE_URL":        "base-url",
	"PUGVIDEO_TOKEN_URL":       "auth.oauth2.token-url",
	"PUGVIDEO_CLIENT_ID":       "auth.oauth2.client-id",
	"PUGVIDEO_CLIENT_SECRET":   "auth.oauth2.client-secret",
	"PUGVIDEO_ACCESS_TOKEN":    "auth.bearer-token.token",
	"PUGVIDEO_TIMEOUT":         "timeout",
	"PUGVIDEO_PATCH_KEY_STYLE": "patch-key-style",
}

func environmentOverrides(lookup func(string) (string, bool)) map[string]string {
	overrides := map[string]string{}
	for envVar, key := range envOverrideKeys {
		value, ok := lookup(envVar)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		overrides[key] = strings.TrimSpace(value)
	}
	return overrides
}

func applyOverrides(cfg config.Client, overrides map[string]string) (config.Client, error) {
	for _, key := range sortedOverrideKeys(overrides) {
		value := overrides[key]
		switch key {
		case "base-url":
			cfg.BaseURL = value
		case "user-agent":
			cfg.UserAgent = value
		case "patch-key-style":
			cfg.PatchKeyStyle = value
		case "timeout":
			timeout, err := time.ParseDuration(value)
			if err != nil {
				return config.Client{}, validationError(fmt.Sprintf("override timeout %q is not a duration", value), err)
			}
			cfg.Timeout = timeout
		case "auth.oauth2.token-url", "auth.oauth2.client-id", "auth.oauth2.client-secret":
			oauth := config.OAuth2{}
			if cfg.Auth != nil && cfg.Auth.OAuth2 != nil {
				oauth = *cfg.Auth.OAuth2
			}
			switch key {
			case "auth.oauth2.token-url":
				oauth.TokenURL = value
			case "auth.oauth2.client-id":
				oauth.ClientID = value
			default:
				oauth.ClientSecret = value
			}
			cfg.Auth = &config.Auth{OAuth2: &oauth}
		case "auth.bearer-token.token":
			cfg.Auth = &config.Auth{BearerToken: &config.BearerTokenAuth{Token: value}}
		default:
			return config.Client{}, unknownOverrideError(key)
		}
	}

	return cfg, nil
}

func sortedOverrideKeys(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// resolveEnvPlaceholders expands ${NAME} references in every string value of
// the profile.
func resolveEnvPlaceholders(profile config.Profile, lookup func(string) (string, bool)) (config.Profile, error) {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return config.Profile{}, internalError("failed to encode profile", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return config.Profile{}, internalError("failed to decode profile", err)
	}
	if err := walkPlaceholderNode(&root, lookup); err != nil {
		return config.Profile{}, validationError(fmt.Sprintf("profile %q has an invalid placeholder", profile.Name), err)
	}

	var resolved config.Profile
	if err := root.Decode(&resolved); err != nil {
		return config.Profile{}, internalError("failed to decode profile", err)
	}
	return resolved, nil
}

func walkPlaceholderNode(node *yaml.Node, lookup func(string) (string, bool)) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := walkPlaceholderNode(child, lookup); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		// Keys are never expanded.
		for i := 1; i < len(node.Content); i += 2 {
			if err := walkPlaceholderNode(node.Content[i], lookup); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if isStringScalar(node) && strings.Contains(node.Value, "${") {
			resolved, err := substituteEnvPlaceholders(node.Value, lookup)
			if err != nil {
				return err
			}
			node.Value = resolved
		}
	}
	return nil
}

func isStringScalar(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && (node.Tag == "!!str" || node.Tag == "")
}

func substituteEnvPlaceholders(value string, lookup func(string) (string, bool)) (string, error) {
	var builder strings.Builder
	for i := 0; i < len(value); {
		if value[i] == '$' && i+1 < len(value) && value[i+1] == '{' {
			start := i + 2
			end := strings.IndexByte(value[start:], '}')
			if end < 0 {
				return "", fmt.Errorf("missing closing brace in %q", value)
			}
			name := strings.TrimSpace(value[start : start+end])
			if name == "" {
				return "", fmt.Errorf("empty environment variable reference in %q", value)
			}
			envValue, ok := lookup(name)
			if !ok {
				return "", fmt.Errorf("environment variable %q is not set", name)
			}
			builder.WriteString(envValue)
			i = start + end + 1
			continue
		}
		builder.WriteByte(value[i])
		i++
	}
	return builder.String(), nil
}

func osLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}
