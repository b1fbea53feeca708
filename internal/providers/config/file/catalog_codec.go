package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/yamlutil"
)

func decodeCatalogFile(path string) (config.ProfileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.ProfileCatalog{}, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (config.ProfileCatalog, error) {
	var profileCatalog config.ProfileCatalog
	if len(bytes.TrimSpace(data)) == 0 {
		return profileCatalog, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profileCatalog); err != nil {
		return config.ProfileCatalog{}, validationError("invalid profile catalog yaml", err)
	}

	return profileCatalog, nil
}

func encodeCatalog(profileCatalog config.ProfileCatalog) ([]byte, error) {
	return yamlutil.Marshal(profileCatalog)
}

// resolveCatalogPath picks the explicit path, then $PUGVIDEO_PROFILES_FILE,
// then the default under the home directory.
func resolveCatalogPath(explicitPath string) (string, error) {
	path := strings.TrimSpace(explicitPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(config.ProfilesFileEnvVar))
	}
	if path == "" {
		path = config.DefaultProfileCatalogPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}

	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("profile catalog path is invalid", errors.New("resolved to current directory"))
	}
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(homeDir, cleanPath)
	}

	return cleanPath, nil
}

func unknownOverrideError(key string) error {
	return validationError(fmt.Sprintf("unknown override key %q", key), nil)
}
