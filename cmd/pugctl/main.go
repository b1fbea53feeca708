package main

import (
	"os"

	"github.com/pugvideo/pugvideo-go/core"
	"github.com/pugvideo/pugvideo-go/internal/cli"
)

func main() {
	bootstrap := core.BootstrapConfig{}
	profiles := core.NewProfileService(bootstrap)
	deps := cli.Dependencies{
		Profiles: profiles,
		Clients:  core.NewClientFactory(profiles, bootstrap.ClientOptions...),
	}

	if err := cli.Execute(deps); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
