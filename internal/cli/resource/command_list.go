package resource

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	"github.com/pugvideo/pugvideo-go/pug"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	var (
		filter   map[string]string
		sort     string
		pageSize int
		limit    int
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List " + CommandName(kind) + " across all pages",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if limit < 0 || pageSize < 0 {
				return common.ValidationError("flag --limit and --page-size must not be negative", nil)
			}
			service, err := resolveService(command.Context(), deps, globalFlags, kind)
			if err != nil {
				return err
			}

			views := make([]resourceView, 0)
			for model, err := range service.List(command.Context(), pug.ListOptions{Filter: filter, Sort: sort, PageSize: pageSize}) {
				if err != nil {
					return err
				}
				views = append(views, viewOf(model))
				if limit > 0 && len(views) >= limit {
					break
				}
			}

			return common.WriteOutput(command, globalFlags, views, renderList)
		},
	}

	command.Flags().StringToStringVar(&filter, "filter", nil, "filter field=value (repeatable)")
	command.Flags().StringVar(&sort, "sort", "", "sort fields, prefix with - for descending")
	command.Flags().IntVar(&pageSize, "page-size", 0, "page size requested from the server")
	command.Flags().IntVar(&limit, "limit", 0, "stop after this many items")
	return command
}

func renderList(w io.Writer, views []resourceView) error {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, "ID\tNAME"); err != nil {
		return err
	}
	for _, view := range views {
		if _, err := fmt.Fprintf(writer, "%s\t%s\n", view.ID, view.label()); err != nil {
			return err
		}
	}
	return writer.Flush()
}
