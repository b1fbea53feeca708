package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/config"
	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/internal/cli/common"
)

type Dependencies struct {
	Profiles config.ProfileService
	Clients  common.ClientFactory
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		Profiles: d.Profiles,
		Clients:  d.Clients,
	}
}

func Execute(deps Dependencies) error {
	return run(NewRootCommand(deps))
}

func run(root *cobra.Command) error {
	command, err := root.ExecuteC()
	emitStatus := shouldEmitExecutionStatus(root, command)

	if err != nil {
		if emitStatus {
			writeExecutionErrorStatus(root.ErrOrStderr(), err, colorEnabled(root))
		} else {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		}
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(root.ErrOrStderr(), colorEnabled(root))
	}
	return nil
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.TransportError:
		return 6
	case faults.FrozenError:
		return 7
	default:
		return 1
	}
}

func shouldEmitExecutionStatus(root *cobra.Command, command *cobra.Command) bool {
	if noStatus, err := root.PersistentFlags().GetBool("no-status"); err == nil && noStatus {
		return false
	}
	return common.EmitsStatus(command)
}

func colorEnabled(root *cobra.Command) bool {
	if noColor, err := root.PersistentFlags().GetBool("no-color"); err == nil && noColor {
		return false
	}
	return common.SupportsColor(root.ErrOrStderr())
}

func writeExecutionOKStatus(w io.Writer, color bool) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel("OK", color))
}

func writeExecutionErrorStatus(w io.Writer, err error, color bool) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel("ERROR", color), description)
}

func formatStatusLabel(status string, color bool) string {
	label := fmt.Sprintf("[%s]", status)
	if !color {
		return label
	}

	switch status {
	case "OK":
		return "\x1b[1;32m" + label + "\x1b[0m"
	case "ERROR":
		return "\x1b[1;31m" + label + "\x1b[0m"
	default:
		return label
	}
}
