package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/faults"
)

const validProfileCatalogYAML = `
profiles:
  - name: dev
    client:
      base-url: https://api.dev.pugvideo.com/v1
      auth:
        oauth2:
          token-url: https://auth.dev.pugvideo.com/oauth/token
          client-id: dev-client
          client-secret: ${PUG_DEV_SECRET}
      default-headers:
        X-Team: media
  - name: prod
    client:
      base-url: https://api.pugvideo.com/v1
      auth:
        bearer-token:
          token: static-token
      patch-key-style: snake
current-profile: dev
`

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestDecodeCatalogRejectsUnknownField(t *testing.T) {
	t.Parallel()

	_, err := decodeCatalog([]byte("profiles:\n  - name: dev\n    client:\n      base-url: https://x\n      unknown-key: true\ncurrent-profile: dev\n"))
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveProfileExpandsPlaceholders(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(
		writeCatalog(t, validProfileCatalogYAML),
		WithLookupEnv(envLookup(map[string]string{"PUG_DEV_SECRET": "s3cret"})),
	)

	profile, err := service.ResolveProfile(context.Background(), config.ProfileSelection{})
	if err != nil {
		t.Fatalf("ResolveProfile returned error: %v", err)
	}
	if profile.Name != "dev" {
		t.Fatalf("expected current profile dev, got %q", profile.Name)
	}
	oauth := profile.Client.Auth.OAuth2
	if oauth.ClientSecret != "s3cret" || oauth.GrantType != config.OAuthClientCreds {
		t.Fatalf("unexpected oauth settings %#v", oauth)
	}
	if profile.Client.Timeout != config.DefaultTimeout || profile.Client.PatchKeyStyle != config.PatchKeyStyleCamel {
		t.Fatalf("expected defaults to be applied, got %#v", profile.Client)
	}
	if profile.Client.DefaultHeaders.Header().Get("X-Team") != "media" {
		t.Fatalf("expected default headers to survive resolution")
	}
}

func TestResolveProfileMissingPlaceholderFails(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(writeCatalog(t, validProfileCatalogYAML), WithLookupEnv(envLookup(nil)))
	_, err := service.ResolveProfile(context.Background(), config.ProfileSelection{Name: "dev"})
	if !faults.IsCategory(err, faults.ValidationError) || !strings.Contains(err.Error(), "PUG_DEV_SECRET") {
		t.Fatalf("expected missing placeholder error, got %v", err)
	}
}

func TestResolveProfileEnvironmentAndExplicitOverrides(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(
		writeCatalog(t, validProfileCatalogYAML),
		WithLookupEnv(envLookup(map[string]string{
			"PUGVIDEO_BASE_URL": "https://staging.pugvideo.com/v1",
			"PUGVIDEO_TIMEOUT":  "5s",
		})),
	)

	profile, err := service.ResolveProfile(context.Background(), config.ProfileSelection{
		Name:      "prod",
		Overrides: map[string]string{"base-url": "https://override.pugvideo.com/v1"},
	})
	if err != nil {
		t.Fatalf("ResolveProfile returned error: %v", err)
	}
	if profile.Client.BaseURL != "https://override.pugvideo.com/v1" {
		t.Fatalf("expected explicit override to win, got %q", profile.Client.BaseURL)
	}
	if profile.Client.Timeout != 5*time.Second {
		t.Fatalf("expected env timeout, got %v", profile.Client.Timeout)
	}
	if profile.Client.PatchKeyStyle != config.PatchKeyStyleSnake {
		t.Fatalf("expected profile patch style to be kept, got %q", profile.Client.PatchKeyStyle)
	}
}

func TestResolveProfileFromEnvironmentOnly(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(
		filepath.Join(t.TempDir(), "missing.yaml"),
		WithLookupEnv(envLookup(map[string]string{"PUGVIDEO_ACCESS_TOKEN": "tok"})),
	)

	profile, err := service.ResolveProfile(context.Background(), config.ProfileSelection{})
	if err != nil {
		t.Fatalf("ResolveProfile returned error: %v", err)
	}
	if profile.Client.BaseURL != config.DefaultBaseURL || profile.Client.Auth.BearerToken.Token != "tok" {
		t.Fatalf("unexpected env-only profile %#v", profile.Client)
	}
}

func TestResolveProfileUnknownOverrideFails(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(writeCatalog(t, validProfileCatalogYAML), WithLookupEnv(envLookup(nil)))
	_, err := service.ResolveProfile(context.Background(), config.ProfileSelection{
		Name:      "prod",
		Overrides: map[string]string{"unknown.key": "value"},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown override key") {
		t.Fatalf("expected unknown override error, got %v", err)
	}
}

func TestResolveProfileNotFound(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(writeCatalog(t, validProfileCatalogYAML), WithLookupEnv(envLookup(nil)))
	_, err := service.ResolveProfile(context.Background(), config.ProfileSelection{Name: "qa"})
	if !faults.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateSetCurrentDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "profiles.yaml")
	service := NewFileProfileService(path, WithLookupEnv(envLookup(nil)))
	ctx := context.Background()

	first := config.Profile{Name: "dev", Client: config.Client{
		BaseURL: "https://api.dev.pugvideo.com/v1",
		Auth:    &config.Auth{BearerToken: &config.BearerTokenAuth{Token: "a"}},
	}}
	second := first
	second.Name = "prod"

	if err := service.Create(ctx, first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := service.Create(ctx, second); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := service.Create(ctx, second); !faults.IsCategory(err, faults.ConflictError) {
		t.Fatalf("expected conflict for duplicate profile, got %v", err)
	}

	current, err := service.GetCurrent(ctx)
	if err != nil || current.Name != "dev" {
		t.Fatalf("expected first profile to become current, got %q err=%v", current.Name, err)
	}

	if err := service.SetCurrent(ctx, "prod"); err != nil {
		t.Fatalf("SetCurrent returned error: %v", err)
	}
	if err := service.Delete(ctx, "prod"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	current, err = service.GetCurrent(ctx)
	if err != nil || current.Name != "dev" {
		t.Fatalf("expected current to fall back to dev, got %q err=%v", current.Name, err)
	}

	profiles, err := service.List(ctx)
	if err != nil || len(profiles) != 1 {
		t.Fatalf("expected one profile, got %d err=%v", len(profiles), err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat returned error: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("expected 0600 catalog, got %v", info.Mode().Perm())
		}
	}
}

func TestCreateRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	service := NewFileProfileService(filepath.Join(t.TempDir(), "profiles.yaml"))
	err := service.Create(context.Background(), config.Profile{Name: "dev"})
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveCatalogPathDefaultAndEnv(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to resolve home dir: %v", err)
	}

	t.Setenv(config.ProfilesFileEnvVar, "")
	resolvedDefault, err := resolveCatalogPath("")
	if err != nil {
		t.Fatalf("resolveCatalogPath default failed: %v", err)
	}
	if want := filepath.Join(home, ".pugvideo/profiles.yaml"); resolvedDefault != want {
		t.Fatalf("expected %q, got %q", want, resolvedDefault)
	}

	envPath := filepath.Join(t.TempDir(), "profiles.yaml")
	t.Setenv(config.ProfilesFileEnvVar, envPath)
	resolvedFromEnv, err := resolveCatalogPath("")
	if err != nil {
		t.Fatalf("resolveCatalogPath env failed: %v", err)
	}
	if resolvedFromEnv != envPath {
		t.Fatalf("expected env path %q, got %q", envPath, resolvedFromEnv)
	}
}

func TestLoadTightensCatalogPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	t.Parallel()

	path := writeCatalog(t, validProfileCatalogYAML)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod returned error: %v", err)
	}

	if _, err := NewFileProfileService(path).List(context.Background()); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected permissions to be tightened, got %v", info.Mode().Perm())
	}
}
