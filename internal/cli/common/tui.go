package common

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// RunForm runs an interactive huh form on the command streams.
func RunForm(command *cobra.Command, groups ...*huh.Group) error {
	if !IsInteractiveTerminal(command) {
		return ValidationError("interactive terminal is required", nil)
	}

	form := huh.NewForm(groups...).
		WithInput(command.InOrStdin()).
		WithOutput(command.OutOrStdout()).
		WithShowHelp(false)

	err := form.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ValidationError("interactive prompt interrupted", nil)
	}
	return err
}

func PromptConfirm(command *cobra.Command, prompt string, defaultYes bool) (bool, error) {
	value := defaultYes
	field := huh.NewConfirm().
		Title(NormalizePrompt(prompt)).
		Value(&value)

	if err := RunForm(command, huh.NewGroup(field)); err != nil {
		return false, err
	}
	return value, nil
}

func NormalizePrompt(prompt string) string {
	title := strings.TrimSpace(prompt)
	title = strings.TrimSuffix(title, ":")
	if title == "" {
		return "Input"
	}
	return title
}
