// Package keys translates attribute names between the API's camelCase wire
// format and the snake_case names used inside the SDK.
//
// The translation is not lossless for acronyms: "playback_urls" camelizes to
// "playbackUrls", never "playbackURLs". Callers depend on that exact mapping,
// so acronym handling is limited to the explicit override table.
package keys

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pugvideo/pugvideo-go/attrs"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// acronyms maps a snake_case segment to the exact text Camelize emits for it.
var acronyms = map[string]string{}

func Underscore(name string) string {
	out := acronymBoundary.ReplaceAllString(name, "${1}_${2}")
	out = wordBoundary.ReplaceAllString(out, "${1}_${2}")
	return strings.ToLower(out)
}

func Camelize(name string) string {
	var builder strings.Builder
	first := true
	for _, segment := range strings.Split(name, "_") {
		if segment == "" {
			continue
		}
		if first {
			builder.WriteString(lowerFirst(segment))
			first = false
			continue
		}
		if override, ok := acronyms[segment]; ok {
			builder.WriteString(override)
			continue
		}
		builder.WriteString(upperFirst(segment))
	}
	return builder.String()
}

// FromAPI rewrites every object key of value with Underscore.
func FromAPI(value any) any {
	return transform(value, Underscore)
}

// ToAPI rewrites every object key of value with Camelize.
func ToAPI(value any) any {
	return transform(value, Camelize)
}

func transform(value any, translate func(string) string) any {
	switch typed := value.(type) {
	case *attrs.Map:
		out := attrs.NewMap(nil)
		for key, item := range typed.All() {
			// Wrap cannot fail on values that already live in a container.
			_ = out.Set(translate(key), transform(item, translate))
		}
		return out
	case *attrs.List:
		out := attrs.NewList(nil)
		for _, item := range typed.All() {
			_ = out.Append(transform(item, translate))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[translate(key)] = transform(item, translate)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = transform(item, translate)
		}
		return out
	default:
		return value
	}
}

func lowerFirst(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToLower(r)) + value[size:]
}

func upperFirst(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}
