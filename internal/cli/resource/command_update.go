package resource

import (
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	"github.com/pugvideo/pugvideo-go/keys"
	"github.com/pugvideo/pugvideo-go/pug"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

func newUpdateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	var (
		input  common.InputFlags
		unset  []string
		dryRun bool
	)

	command := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch a " + kind.Name + " with the changed attributes only",
		Example: "  pugctl " + CommandName(kind) + " update <id> --set " + exampleAssignment(kind) +
			"\n  pugctl " + CommandName(kind) + " update <id> --set metadata.labels.env=prod --dry-run",
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			attributes, assignments, err := readAttributes(command, input)
			if err != nil {
				return err
			}
			if len(attributes) == 0 && len(assignments) == 0 && len(unset) == 0 {
				return common.ValidationError("no changes given: use --file, --set or --unset", nil)
			}

			service, err := resolveService(command.Context(), deps, globalFlags, kind)
			if err != nil {
				return err
			}
			model, err := service.Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			if err := applyChanges(model, attributes, assignments, unset); err != nil {
				return err
			}

			if dryRun {
				return common.WriteOutput(command, globalFlags, model.PatchDocument(), nil)
			}
			if err := service.Save(command.Context(), model); err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, viewOf(model), nil)
		},
	}

	common.BindInputFlags(command, &input)
	command.Flags().StringArrayVar(&unset, "unset", nil, "attribute to remove (repeatable)")
	command.Flags().BoolVar(&dryRun, "dry-run", false, "print the patch document instead of sending it")
	common.MarkEmitsStatus(command)
	return command
}

// applyChanges writes file attributes first, then assignments, then removals,
// so a later --set wins over the file.
func applyChanges(model *pug.Generic, attributes map[string]any, assignments []common.Assignment, unset []string) error {
	for _, field := range slices.Sorted(maps.Keys(attributes)) {
		if err := model.Set(field, attributes[field]); err != nil {
			return err
		}
	}
	for _, assignment := range assignments {
		if err := model.SetPath(assignment.Path, assignment.Value); err != nil {
			return err
		}
	}
	for _, field := range unset {
		if _, err := model.Unset(keys.Underscore(field)); err != nil {
			return err
		}
	}
	return nil
}
