package resource

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pugvideo/pugvideo-go/internal/cli/common"
	"github.com/pugvideo/pugvideo-go/keys"
	"github.com/pugvideo/pugvideo-go/pug"
	resourcedomain "github.com/pugvideo/pugvideo-go/resource"
)

// NewCommand builds the command group for one resource kind, named after
// its collection ("videos", "simulcast-targets").
func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, kind resourcedomain.Kind) *cobra.Command {
	command := &cobra.Command{
		Use:     CommandName(kind),
		Aliases: []string{kind.Name},
		Short:   "Manage " + strings.ReplaceAll(kind.Type, "_", " "),
		Args:    cobra.NoArgs,
	}

	command.AddCommand(
		newListCommand(deps, globalFlags, kind),
		newGetCommand(deps, globalFlags, kind),
		newCreateCommand(deps, globalFlags, kind),
		newUpdateCommand(deps, globalFlags, kind),
		newDeleteCommand(deps, globalFlags, kind),
	)
	return command
}

func CommandName(kind resourcedomain.Kind) string {
	return strings.ReplaceAll(kind.Type, "_", "-")
}

type resourceView struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
}

func viewOf(model *pug.Generic) resourceView {
	return resourceView{ID: model.ID(), Type: model.Type(), Attributes: model.Attributes()}
}

// label picks the attribute most useful to a human scanning a listing.
func (v resourceView) label() string {
	for _, field := range []string{"title", "name", "url"} {
		if value, ok := v.Attributes[field].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func resolveService(
	ctx context.Context,
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	kind resourcedomain.Kind,
) (*pug.Service[*pug.Generic], error) {
	client, err := common.ResolveClient(ctx, deps, globalFlags)
	if err != nil {
		return nil, err
	}
	registered, err := client.Kind(kind.Name)
	if err != nil {
		return nil, err
	}
	return client.Generic(registered), nil
}

// readAttributes merges the --file document and --set assignments into one
// snake_case attribute object.
func readAttributes(command *cobra.Command, input common.InputFlags) (map[string]any, []common.Assignment, error) {
	attributes := map[string]any{}
	if input.File != "" {
		decoded, err := readAttributesFile(command, input.File)
		if err != nil {
			return nil, nil, err
		}
		attributes = decoded
	}

	assignments, err := common.ParseAssignments(input.Assignments)
	if err != nil {
		return nil, nil, err
	}
	for _, assignment := range assignments {
		for pos, segment := range assignment.Path {
			assignment.Path[pos] = keys.Underscore(segment)
		}
	}
	return attributes, assignments, nil
}

func readAttributesFile(command *cobra.Command, path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(command.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, common.ValidationError("failed to read attributes file", err)
	}

	// yaml also accepts json documents
	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, common.ValidationError("attributes file is not valid json or yaml", err)
	}
	if decoded == nil {
		return map[string]any{}, nil
	}
	object, ok := keys.FromAPI(decoded).(map[string]any)
	if !ok {
		return nil, common.ValidationError("attributes file must contain an object", nil)
	}
	return unwrapDocument(object), nil
}

// unwrapDocument accepts either a bare attribute object or a full
// {"data":{"attributes":{...}}} document.
func unwrapDocument(object map[string]any) map[string]any {
	data, ok := object["data"].(map[string]any)
	if !ok || len(object) != 1 {
		return object
	}
	attributes, ok := data["attributes"].(map[string]any)
	if !ok {
		return object
	}
	return attributes
}
