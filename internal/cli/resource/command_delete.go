package resource

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

const defaultDeleteConcurrency = 4

type deleteResult struct {
	ID      string `json:"id" yaml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	var concurrency int

	command := &cobra.Command{
		Use:   "delete <id> [id...]",
		Short: "Delete one or more " + CommandName(kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			if concurrency < 1 {
				return common.ValidationError("flag --concurrency must be at least 1", nil)
			}
			service, err := resolveService(command.Context(), deps, globalFlags, kind)
			if err != nil {
				return err
			}

			results := make([]deleteResult, len(args))
			group, groupCtx := errgroup.WithContext(command.Context())
			group.SetLimit(concurrency)
			for idx, id := range args {
				results[idx].ID = id
				group.Go(func() error {
					if err := service.DeleteByID(groupCtx, id); err != nil {
						return fmt.Errorf("delete %s %s: %w", kind.Name, id, err)
					}
					results[idx].Deleted = true
					return nil
				})
			}
			waitErr := group.Wait()

			if err := common.WriteOutput(command, globalFlags, results, renderDeleteResults); err != nil {
				return err
			}
			return waitErr
		},
	}

	command.Flags().IntVar(&concurrency, "concurrency", defaultDeleteConcurrency, "number of deletes in flight")
	common.MarkEmitsStatus(command)
	return command
}

func renderDeleteResults(w io.Writer, results []deleteResult) error {
	for _, result := range results {
		if !result.Deleted {
			continue
		}
		if _, err := fmt.Fprintf(w, "deleted %s\n", result.ID); err != nil {
			return err
		}
	}
	return nil
}
