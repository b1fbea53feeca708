package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	configdomain "github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	"github.com/pugvideo/pugvideo-go/yamlutil"
)

const redactedValue = "<redacted>"

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return newCommandWithPrompter(deps, globalFlags, terminalPrompter{})
}

func newCommandWithPrompter(
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	prompter configPrompter,
) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Manage client profiles",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newViewCommand(deps, globalFlags),
		newListCommand(deps, globalFlags),
		newUseCommand(deps),
		newInitCommand(deps, prompter),
		newDeleteCommand(deps),
	)

	return command
}

func newViewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var showSecrets bool

	command := &cobra.Command{
		Use:   "view [name]",
		Short: "Show the resolved profile with environment overrides applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			selection := common.Selection(globalFlags)
			if len(args) > 0 {
				selection.Name = args[0]
			}
			profile, err := profiles.ResolveProfile(command.Context(), selection)
			if err != nil {
				return err
			}
			if !showSecrets {
				profile = redactProfile(profile)
			}

			document, err := profileDocument(profile)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, document, func(w io.Writer, value map[string]any) error {
				encoded, err := yamlutil.Marshal(value)
				if err != nil {
					return err
				}
				_, err = w.Write(encoded)
				return err
			})
		},
	}
	command.Flags().BoolVar(&showSecrets, "show-secrets", false, "print tokens and client secrets in clear text")
	return command
}

type profileListEntry struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	Current bool   `json:"current" yaml:"current"`
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			items, err := profiles.List(command.Context())
			if err != nil {
				return err
			}
			currentName := ""
			if current, err := profiles.GetCurrent(command.Context()); err == nil {
				currentName = current.Name
			}

			entries := make([]profileListEntry, 0, len(items))
			for _, item := range items {
				entries = append(entries, profileListEntry{
					Name:    item.Name,
					BaseURL: item.Client.BaseURL,
					Current: item.Name == currentName,
				})
			}
			return common.WriteOutput(command, globalFlags, entries, func(w io.Writer, values []profileListEntry) error {
				for _, value := range values {
					marker := " "
					if value.Current {
						marker = "*"
					}
					if _, err := fmt.Fprintf(w, "%s %s\t%s\n", marker, value.Name, value.BaseURL); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newUseCommand(deps common.CommandDependencies) *cobra.Command {
	command := &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			return profiles.SetCurrent(command.Context(), args[0])
		},
	}
	common.MarkEmitsStatus(command)
	return command
}

func newDeleteCommand(deps common.CommandDependencies) *cobra.Command {
	command := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a profile from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}
			return profiles.Delete(command.Context(), args[0])
		},
	}
	common.MarkEmitsStatus(command)
	return command
}

func newInitCommand(deps common.CommandDependencies, prompter configPrompter) *cobra.Command {
	var draft profileDraft
	var setCurrent bool

	command := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a profile from flags or interactive prompts",
		Example: strings.Join([]string{
			"  pugctl config init",
			"  pugctl config init prod --base-url https://api.pugvideo.com/v1 --token $PUG_TOKEN --use",
		}, "\n"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			profiles, err := common.RequireProfiles(deps)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				draft.Name = args[0]
			}
			draft.AuthMode = inferAuthMode(draft)

			interactive := draft.BaseURL == "" && prompter.IsInteractive(command)
			if interactive {
				draft, err = prompter.Profile(command, draft)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(draft.Name) == "" {
				return common.ValidationError("profile name is required", nil)
			}

			profile := draft.profile()
			if profile.Client.BaseURL == "" {
				profile.Client.BaseURL = configdomain.DefaultBaseURL
			}
			if err := profiles.Create(command.Context(), profile); err != nil {
				return err
			}

			if !setCurrent && interactive {
				setCurrent, err = prompter.Confirm(command, "Use this profile as the current profile?", true)
				if err != nil {
					return err
				}
			}
			if setCurrent {
				return profiles.SetCurrent(command.Context(), profile.Name)
			}
			return nil
		},
	}

	command.Flags().StringVar(&draft.BaseURL, "base-url", "", "API base URL")
	command.Flags().StringVar(&draft.Token, "token", "", "bearer token")
	command.Flags().StringVar(&draft.TokenURL, "token-url", "", "OAuth2 token endpoint")
	command.Flags().StringVar(&draft.ClientID, "client-id", "", "OAuth2 client id")
	command.Flags().StringVar(&draft.ClientSecret, "client-secret", "", "OAuth2 client secret")
	command.Flags().StringVar(&draft.PatchKeyStyle, "patch-key-style", "", "patch key style: camel|snake")
	command.Flags().BoolVar(&setCurrent, "use", false, "set the new profile as current")
	command.MarkFlagsMutuallyExclusive("token", "client-id")
	common.MarkEmitsStatus(command)
	return command
}

func inferAuthMode(draft profileDraft) string {
	switch {
	case draft.Token != "":
		return authModeBearer
	case draft.ClientID != "" || draft.ClientSecret != "" || draft.TokenURL != "":
		return authModeOAuth2
	default:
		return authModeNone
	}
}

func redactProfile(profile configdomain.Profile) configdomain.Profile {
	if profile.Client.Auth == nil {
		return profile
	}

	auth := *profile.Client.Auth
	if auth.OAuth2 != nil {
		oauth := *auth.OAuth2
		if oauth.ClientSecret != "" {
			oauth.ClientSecret = redactedValue
		}
		auth.OAuth2 = &oauth
	}
	if auth.BearerToken != nil {
		bearer := *auth.BearerToken
		if bearer.Token != "" {
			bearer.Token = redactedValue
		}
		auth.BearerToken = &bearer
	}
	profile.Client.Auth = &auth
	return profile
}

// profileDocument converts a profile into a plain map keyed by its yaml
// names so every output format shares the catalog field names.
func profileDocument(profile configdomain.Profile) (map[string]any, error) {
	encoded, err := yaml.Marshal(profile)
	if err != nil {
		return nil, common.ValidationError("failed to encode profile", err)
	}
	document := map[string]any{}
	if err := yaml.Unmarshal(encoded, &document); err != nil {
		return nil, common.ValidationError("failed to encode profile", err)
	}
	return document, nil
}
