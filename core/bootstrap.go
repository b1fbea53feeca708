package core

import (
	"context"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/debugctx"
	configfile "github.com/pugvideo/pugvideo-go/internal/providers/config/file"
	"github.com/pugvideo/pugvideo-go/pug"
)

func NewProfileService(opts BootstrapConfig) config.ProfileService {
	return configfile.NewFileProfileService(opts.ProfileCatalogPath)
}

// NewClient resolves the selected profile and builds a client from it.
func NewClient(ctx context.Context, opts BootstrapConfig, selection config.ProfileSelection) (*pug.Client, error) {
	return NewClientFactory(NewProfileService(opts), opts.ClientOptions...)(ctx, selection)
}

// NewClientFactory returns a factory that resolves profiles through
// profiles on every call, so flags parsed after bootstrap still apply.
func NewClientFactory(
	profiles config.ProfileResolver,
	clientOptions ...pug.Option,
) func(context.Context, config.ProfileSelection) (*pug.Client, error) {
	return func(ctx context.Context, selection config.ProfileSelection) (*pug.Client, error) {
		profile, err := profiles.ResolveProfile(ctx, selection)
		if err != nil {
			return nil, err
		}

		debugctx.Printf(
			ctx,
			"resolved profile name=%q base_url=%q patch_key_style=%q",
			profile.Name,
			profile.Client.BaseURL,
			profile.Client.PatchKeyStyle,
		)
		return pug.NewClient(profile.Client, clientOptions...)
	}
}
