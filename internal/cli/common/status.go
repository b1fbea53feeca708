package common

import "github.com/spf13/cobra"

const statusAnnotation = "pugctl/emits-status"

// MarkEmitsStatus makes Execute print an OK or ERROR line after command
// runs. Read-only commands stay quiet so their output can be piped.
func MarkEmitsStatus(command *cobra.Command) {
	if command.Annotations == nil {
		command.Annotations = map[string]string{}
	}
	command.Annotations[statusAnnotation] = "true"
}

func EmitsStatus(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	return command.Annotations[statusAnnotation] == "true"
}
