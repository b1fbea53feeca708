package config

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	configdomain "github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/internal/cli/common"
)

const (
	authModeNone   = "none"
	authModeBearer = "bearer"
	authModeOAuth2 = "oauth2"
)

type configPrompter interface {
	IsInteractive(command *cobra.Command) bool
	Profile(command *cobra.Command, draft profileDraft) (profileDraft, error)
	Confirm(command *cobra.Command, prompt string, defaultYes bool) (bool, error)
}

// profileDraft holds the answers collected by init before they become a
// config.Profile.
type profileDraft struct {
	Name          string
	BaseURL       string
	AuthMode      string
	Token         string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	PatchKeyStyle string
}

func (d profileDraft) profile() configdomain.Profile {
	profile := configdomain.Profile{
		Name: d.Name,
		Client: configdomain.Client{
			BaseURL:       d.BaseURL,
			PatchKeyStyle: d.PatchKeyStyle,
		},
	}

	switch d.AuthMode {
	case authModeBearer:
		profile.Client.Auth = &configdomain.Auth{BearerToken: &configdomain.BearerTokenAuth{Token: d.Token}}
	case authModeOAuth2:
		profile.Client.Auth = &configdomain.Auth{OAuth2: &configdomain.OAuth2{
			TokenURL:     d.TokenURL,
			GrantType:    configdomain.OAuthClientCreds,
			ClientID:     d.ClientID,
			ClientSecret: d.ClientSecret,
		}}
	}
	return profile
}

type terminalPrompter struct{}

func (terminalPrompter) IsInteractive(command *cobra.Command) bool {
	return common.IsInteractiveTerminal(command)
}

func (terminalPrompter) Confirm(command *cobra.Command, prompt string, defaultYes bool) (bool, error) {
	return common.PromptConfirm(command, prompt, defaultYes)
}

func (terminalPrompter) Profile(command *cobra.Command, draft profileDraft) (profileDraft, error) {
	if draft.AuthMode == "" {
		draft.AuthMode = authModeNone
	}
	if draft.PatchKeyStyle == "" {
		draft.PatchKeyStyle = configdomain.PatchKeyStyleCamel
	}

	general := huh.NewGroup(
		huh.NewInput().Title("Profile name").Value(&draft.Name).Validate(huh.ValidateNotEmpty()),
		huh.NewInput().Title("API base URL").Value(&draft.BaseURL).Validate(huh.ValidateNotEmpty()),
		huh.NewSelect[string]().
			Title("Authentication").
			Options(
				huh.NewOption("None", authModeNone),
				huh.NewOption("Bearer token", authModeBearer),
				huh.NewOption("OAuth2 client credentials", authModeOAuth2),
			).
			Value(&draft.AuthMode),
		huh.NewSelect[string]().
			Title("Patch key style").
			Options(
				huh.NewOption("camelCase", configdomain.PatchKeyStyleCamel),
				huh.NewOption("snake_case", configdomain.PatchKeyStyleSnake),
			).
			Value(&draft.PatchKeyStyle),
	)
	bearer := huh.NewGroup(
		huh.NewInput().Title("Bearer token").EchoMode(huh.EchoModePassword).Value(&draft.Token).Validate(huh.ValidateNotEmpty()),
	).WithHideFunc(func() bool { return draft.AuthMode != authModeBearer })
	oauth := huh.NewGroup(
		huh.NewInput().Title("Token URL").Value(&draft.TokenURL).Validate(huh.ValidateNotEmpty()),
		huh.NewInput().Title("Client ID").Value(&draft.ClientID).Validate(huh.ValidateNotEmpty()),
		huh.NewInput().Title("Client secret").EchoMode(huh.EchoModePassword).Value(&draft.ClientSecret).Validate(huh.ValidateNotEmpty()),
	).WithHideFunc(func() bool { return draft.AuthMode != authModeOAuth2 })

	if err := common.RunForm(command, general, bearer, oauth); err != nil {
		return profileDraft{}, err
	}
	return draft, nil
}
