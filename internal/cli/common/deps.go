package common

import (
	"context"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/pug"
)

// ClientFactory builds an API client for the selected profile.
type ClientFactory func(ctx context.Context, selection config.ProfileSelection) (*pug.Client, error)

type CommandDependencies struct {
	Profiles config.ProfileService
	Clients  ClientFactory
}

func RequireProfiles(deps CommandDependencies) (config.ProfileService, error) {
	if deps.Profiles == nil {
		return nil, InternalError("profile service is not configured", nil)
	}
	return deps.Profiles, nil
}

func ResolveClient(ctx context.Context, deps CommandDependencies, globalFlags *GlobalFlags) (*pug.Client, error) {
	if deps.Clients == nil {
		return nil, InternalError("api client is not configured", nil)
	}
	return deps.Clients(ctx, Selection(globalFlags))
}

func Selection(globalFlags *GlobalFlags) config.ProfileSelection {
	if globalFlags == nil {
		return config.ProfileSelection{}
	}
	return config.ProfileSelection{Name: globalFlags.Profile, Overrides: globalFlags.Overrides}
}
