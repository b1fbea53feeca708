package resource

import (
	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

func newCreateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	var input common.InputFlags

	command := &cobra.Command{
		Use:   "create",
		Short: "Create a " + kind.Name + " from --file and --set",
		Example: "  pugctl " + CommandName(kind) + " create --set " + exampleAssignment(kind) +
			"\n  pugctl " + CommandName(kind) + " create -f attributes.yaml",
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			attributes, assignments, err := readAttributes(command, input)
			if err != nil {
				return err
			}
			if err := common.ApplyAssignments(attributes, assignments); err != nil {
				return err
			}
			if len(attributes) == 0 {
				return common.ValidationError("no attributes given: use --file or --set", nil)
			}

			service, err := resolveService(command.Context(), deps, globalFlags, kind)
			if err != nil {
				return err
			}
			model, err := service.Create(command.Context(), attributes)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, viewOf(model), nil)
		},
	}

	common.BindInputFlags(command, &input)
	common.MarkEmitsStatus(command)
	return command
}

func exampleAssignment(kind resourcedomain.Kind) string {
	if len(kind.Fields) == 0 {
		return "name=value"
	}
	return kind.Fields[0] + "=value"
}
