package common

import (
	"fmt"
	"io"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/pugvideo/pugvideo-go/yamlutil"
)

const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func ValidateOutputFormat(format string) error {
	switch format {
	case OutputAuto, OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

// WriteOutput renders value in the selected format. With --jq the filter
// results are written instead of value, one per line for text output.
func WriteOutput[T any](command *cobra.Command, globalFlags *GlobalFlags, value T, renderText func(io.Writer, T) error) error {
	if isNilOutputValue(value) {
		return nil
	}

	format := OutputAuto
	expression := ""
	if globalFlags != nil {
		format = globalFlags.Output
		expression = globalFlags.JQ
	}

	if expression != "" {
		results, err := ApplyJQ(command.Context(), value, expression)
		if err != nil {
			return err
		}
		if format == OutputYAML {
			return writeYAML(command.OutOrStdout(), results...)
		}
		for _, result := range results {
			if err := writeJQResult(command.OutOrStdout(), format, result); err != nil {
				return err
			}
		}
		return nil
	}

	switch format {
	case OutputAuto, OutputText:
		if renderText != nil {
			return renderText(command.OutOrStdout(), value)
		}
		if format == OutputText {
			return writeYAML(command.OutOrStdout(), value)
		}
		return writeJSON(command.OutOrStdout(), value)
	case OutputJSON:
		return writeJSON(command.OutOrStdout(), value)
	case OutputYAML:
		return writeYAML(command.OutOrStdout(), value)
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

func WriteText(command *cobra.Command, globalFlags *GlobalFlags, text string) error {
	return WriteOutput(command, globalFlags, text, func(w io.Writer, value string) error {
		_, err := fmt.Fprintln(w, value)
		return err
	})
}

func writeJQResult(w io.Writer, format string, result any) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	default:
		if text, ok := result.(string); ok {
			_, err := fmt.Fprintln(w, text)
			return err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	}
}

func writeJSON(w io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

// writeYAML prints one document per value. Values go through JSON first so
// yaml keys follow the json field names.
func writeYAML(w io.Writer, values ...any) error {
	documents := make([]any, 0, len(values))
	for _, value := range values {
		plain, err := jsonCompatible(value)
		if err != nil {
			return err
		}
		documents = append(documents, plain)
	}
	encoded, err := yamlutil.MarshalDocuments(documents...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(encoded))
	return err
}

func isNilOutputValue[T any](value T) bool {
	anyValue := any(value)
	if anyValue == nil {
		return true
	}

	reflected := reflect.ValueOf(anyValue)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflected.IsNil()
	default:
		return false
	}
}
