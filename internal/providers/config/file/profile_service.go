package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/faults"
)

var _ config.ProfileService = (*FileProfileService)(nil)

type FileProfileService struct {
	catalogPath string
	lookupEnv   func(string) (string, bool)
}

type Option func(*FileProfileService)

// WithLookupEnv replaces os.LookupEnv for placeholder and override
// resolution.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(s *FileProfileService) {
		if lookup != nil {
			s.lookupEnv = lookup
		}
	}
}

func NewFileProfileService(path string, opts ...Option) *FileProfileService {
	service := &FileProfileService{catalogPath: path, lookupEnv: osLookup}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FileProfileService) Create(_ context.Context, profile config.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	if findProfileIndex(profileCatalog.Profiles, profile.Name) >= 0 {
		return faults.NewTypedError(faults.ConflictError, fmt.Sprintf("profile %q already exists", profile.Name), nil)
	}

	profileCatalog.Profiles = append(profileCatalog.Profiles, profile)
	if profileCatalog.CurrentProfile == "" {
		profileCatalog.CurrentProfile = profile.Name
	}
	return s.saveCatalog(profileCatalog)
}

func (s *FileProfileService) Update(_ context.Context, profile config.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	idx := findProfileIndex(profileCatalog.Profiles, profile.Name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", profile.Name))
	}

	profileCatalog.Profiles[idx] = profile
	return s.saveCatalog(profileCatalog)
}

func (s *FileProfileService) Delete(_ context.Context, name string) error {
	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	idx := findProfileIndex(profileCatalog.Profiles, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	profileCatalog.Profiles = append(profileCatalog.Profiles[:idx], profileCatalog.Profiles[idx+1:]...)
	if profileCatalog.CurrentProfile == name {
		profileCatalog.CurrentProfile = ""
		if len(profileCatalog.Profiles) > 0 {
			profileCatalog.CurrentProfile = profileCatalog.Profiles[0].Name
		}
	}
	return s.saveCatalog(profileCatalog)
}

func (s *FileProfileService) SetCurrent(_ context.Context, name string) error {
	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	if findProfileIndex(profileCatalog.Profiles, name) < 0 {
		return notFoundError(fmt.Sprintf("profile %q not found", name))
	}

	profileCatalog.CurrentProfile = name
	return s.saveCatalog(profileCatalog)
}

func (s *FileProfileService) List(_ context.Context) ([]config.Profile, error) {
	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}

	profiles := make([]config.Profile, len(profileCatalog.Profiles))
	copy(profiles, profileCatalog.Profiles)
	return profiles, nil
}

func (s *FileProfileService) GetCurrent(_ context.Context) (config.Profile, error) {
	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return config.Profile{}, err
	}
	if profileCatalog.CurrentProfile == "" {
		return config.Profile{}, notFoundError("current profile not set")
	}

	idx := findProfileIndex(profileCatalog.Profiles, profileCatalog.CurrentProfile)
	if idx < 0 {
		return config.Profile{}, notFoundError(fmt.Sprintf("current profile %q not found", profileCatalog.CurrentProfile))
	}
	return profileCatalog.Profiles[idx], nil
}

// ResolveProfile returns the selected profile (or the current one) with
// ${NAME} placeholders expanded, PUGVIDEO_* variables and then explicit
// overrides applied, and defaults filled. Without a catalog file and without
// an explicit name, a profile is built from the environment alone.
func (s *FileProfileService) ResolveProfile(_ context.Context, selection config.ProfileSelection) (config.Profile, error) {
	profileCatalog, err := s.loadCatalog()
	if err != nil {
		return config.Profile{}, err
	}

	var profile config.Profile
	effectiveName := selection.Name
	if effectiveName == "" {
		effectiveName = profileCatalog.CurrentProfile
	}

	switch {
	case effectiveName != "":
		idx := findProfileIndex(profileCatalog.Profiles, effectiveName)
		if idx < 0 {
			return config.Profile{}, notFoundError(fmt.Sprintf("profile %q not found", effectiveName))
		}
		profile, err = resolveEnvPlaceholders(profileCatalog.Profiles[idx], s.lookupEnv)
		if err != nil {
			return config.Profile{}, err
		}
	case len(profileCatalog.Profiles) == 0:
		profile = config.Profile{Name: "env"}
	default:
		return config.Profile{}, notFoundError("current profile not set")
	}

	client, err := applyOverrides(profile.Client, environmentOverrides(s.lookupEnv))
	if err != nil {
		return config.Profile{}, err
	}
	client, err = applyOverrides(client, selection.Overrides)
	if err != nil {
		return config.Profile{}, err
	}

	profile.Client = client.WithDefaults()
	if err := profile.Validate(); err != nil {
		return config.Profile{}, err
	}
	return profile, nil
}

func (s *FileProfileService) saveCatalog(profileCatalog config.ProfileCatalog) error {
	if err := profileCatalog.Validate(); err != nil {
		return err
	}

	resolvedPath, err := resolveCatalogPath(s.catalogPath)
	if err != nil {
		return err
	}

	encoded, err := encodeCatalog(profileCatalog)
	if err != nil {
		return internalError("failed to encode profile catalog", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedPath), 0o700); err != nil {
		return internalError("failed to create profile config directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(resolvedPath), ".pugvideo-profiles-*")
	if err != nil {
		return internalError("failed to create temporary profile catalog file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write profile catalog", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to set profile catalog permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize profile catalog", err)
	}

	if err := os.Rename(tempPath, resolvedPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace profile catalog", err)
	}
	return nil
}

func (s *FileProfileService) loadCatalog() (config.ProfileCatalog, error) {
	resolvedPath, err := resolveCatalogPath(s.catalogPath)
	if err != nil {
		return config.ProfileCatalog{}, err
	}

	profileCatalog, err := decodeCatalogFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.ProfileCatalog{}, nil
		}
		return config.ProfileCatalog{}, err
	}
	if err := ensureUserOnlyReadWriteFile(resolvedPath); err != nil {
		return config.ProfileCatalog{}, err
	}
	if err := profileCatalog.Validate(); err != nil {
		return config.ProfileCatalog{}, err
	}
	return profileCatalog, nil
}

func findProfileIndex(profiles []config.Profile, name string) int {
	for idx, item := range profiles {
		if item.Name == name {
			return idx
		}
	}
	return -1
}

// Profiles carry client secrets, so the catalog is kept private to the user.
func ensureUserOnlyReadWriteFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return internalError("failed to inspect profile catalog permissions", err)
	}

	if info.Mode().Perm() == 0o600 {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return internalError("failed to update profile catalog permissions", err)
	}
	return nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
