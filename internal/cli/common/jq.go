package common

import (
	"context"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"
)

var jqCodeCache sync.Map

func CompileJQ(expression string) (*gojq.Code, error) {
	trimmed := strings.TrimSpace(expression)
	if cached, ok := jqCodeCache.Load(trimmed); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(trimmed)
	if err != nil {
		return nil, ValidationError("invalid --jq expression", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, ValidationError("invalid --jq expression", err)
	}

	actual, _ := jqCodeCache.LoadOrStore(trimmed, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}

// ApplyJQ runs expression over value and returns every emitted result.
func ApplyJQ(ctx context.Context, value any, expression string) ([]any, error) {
	code, err := CompileJQ(expression)
	if err != nil {
		return nil, err
	}

	input, err := jsonCompatible(value)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	iterator := code.RunWithContext(ctx, input)
	results := make([]any, 0, 1)
	for {
		result, ok := iterator.Next()
		if !ok {
			break
		}
		if resultErr, isErr := result.(error); isErr {
			return nil, ValidationError("failed to evaluate --jq expression", resultErr)
		}
		results = append(results, result)
	}
	return results, nil
}

// jsonCompatible converts value into the plain map, slice and float64 shapes
// gojq accepts.
func jsonCompatible(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, InternalError("failed to encode output", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, InternalError("failed to encode output", err)
	}
	return decoded, nil
}
