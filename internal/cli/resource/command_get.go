package resource

import (
	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one " + kind.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			service, err := resolveService(command.Context(), deps, globalFlags, kind)
			if err != nil {
				return err
			}

			model, err := service.Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, viewOf(model), nil)
		},
	}
}
