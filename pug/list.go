package pug

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/keys"
	"github.com/pugvideo/pugvideo-go/patch"
)

type ListOptions struct {
	// Filter becomes filter[name]=value. Names are snake_case; they are sent
	// camelCased unless the client uses snake patch keys.
	Filter map[string]string
	// Sort is a JSON:API sort expression such as "-created_at".
	Sort string
	// PageSize overrides the client page size for this listing.
	PageSize int
}

func (o ListOptions) params(defaultPageSize int, style patch.Style) url.Values {
	params := url.Values{}
	pageSize := o.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > 0 {
		params.Set("page[size]", strconv.Itoa(pageSize))
	}
	for _, name := range slices.Sorted(maps.Keys(o.Filter)) {
		params.Set("filter["+apiName(name, style)+"]", o.Filter[name])
	}
	if sort := strings.TrimSpace(o.Sort); sort != "" {
		fields := strings.Split(sort, ",")
		for idx, field := range fields {
			field = strings.TrimSpace(field)
			prefix := ""
			if strings.HasPrefix(field, "-") {
				prefix, field = "-", field[1:]
			}
			fields[idx] = prefix + apiName(field, style)
		}
		params.Set("sort", strings.Join(fields, ","))
	}
	return params
}

func apiName(name string, style patch.Style) string {
	if style == patch.StyleSnake {
		return name
	}
	return keys.Camelize(name)
}

// List iterates over every remote object of the kind, fetching pages on
// demand by following links.next. Iteration stops at the first error, which
// is yielded with a zero model.
func (s *Service[T]) List(ctx context.Context, opts ListOptions) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		requestPath, err := s.kind.CollectionPath()
		if err != nil {
			yield(zero, err)
			return
		}
		params := opts.params(s.client.pageSize, s.client.style)
		visited := map[string]struct{}{}

		for requestPath != "" {
			if _, seen := visited[requestPath]; seen {
				yield(zero, validationError(fmt.Sprintf("pagination loop detected at %q", requestPath), nil))
				return
			}
			visited[requestPath] = struct{}{}

			response, err := s.client.transport.Get(ctx, requestPath, params)
			if err != nil {
				yield(zero, err)
				return
			}

			items, next, err := parsePage(response)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(s.Load(item), nil) {
					return
				}
			}

			// The next link carries its own query.
			requestPath = next
			params = nil
		}
	}
}

// All collects List into a slice.
func (s *Service[T]) All(ctx context.Context, opts ListOptions) ([]T, error) {
	var models []T
	for model, err := range s.List(ctx, opts) {
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

func parsePage(response any) ([]any, string, error) {
	if response == nil {
		return nil, "", nil
	}

	document, ok := response.(*attrs.Map)
	if !ok {
		wrapped, err := attrs.Wrap(response, nil)
		if err != nil {
			return nil, "", validationError("list response is not a JSON:API document", err)
		}
		if document, ok = wrapped.(*attrs.Map); !ok {
			return nil, "", validationError(fmt.Sprintf("list response is %T, not a JSON:API document", response), nil)
		}
	}

	var items []any
	switch data := document.Value("data").(type) {
	case *attrs.List:
		for _, item := range data.All() {
			items = append(items, item)
		}
	case nil:
	default:
		return nil, "", validationError("list response data is not an array", nil)
	}

	next := ""
	if links, ok := document.Map("links"); ok {
		next, _ = links.Value("next").(string)
	}
	return items, strings.TrimSpace(next), nil
}
