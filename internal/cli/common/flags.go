package common

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type GlobalFlags struct {
	Profile   string
	Overrides map[string]string
	Debug     bool
	NoStatus  bool
	NoColor   bool
	Output    string
	JQ        string
}

type InputFlags struct {
	File        string
	Assignments []string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Profile, "profile", "p", "", "profile name")
	command.PersistentFlags().StringToStringVar(&flags.Overrides, "override", nil, "client setting override, e.g. base-url=https://... (repeatable)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().StringVar(&flags.JQ, "jq", "", "jq filter applied to structured output")
	_ = command.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputAuto, OutputText, OutputJSON, OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
}

func BindInputFlags(command *cobra.Command, flags *InputFlags) {
	command.Flags().StringVarP(&flags.File, "file", "f", "", "attributes file in json or yaml (use '-' for stdin)")
	command.Flags().StringArrayVar(&flags.Assignments, "set", nil, "attribute assignment key=value, dotted keys for nested values (repeatable)")
}

// WordSepNormalizeFunc accepts underscores in flag names, so --page_size
// and --page-size are the same flag.
func WordSepNormalizeFunc(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if strings.Contains(name, "_") {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	}
	return pflag.NormalizedName(name)
}
