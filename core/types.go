package core

import "github.com/pugvideo/pugvideo-go/pug"

type BootstrapConfig struct {
	// ProfileCatalogPath overrides PUGVIDEO_PROFILES_FILE and the default
	// catalog location.
	ProfileCatalogPath string
	// ClientOptions are applied to every client built by the factory.
	ClientOptions []pug.Option
}
