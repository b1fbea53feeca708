package patch

import (
	"reflect"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/goccy/go-json"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/diff"
	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/keys"
)

func mustDecode(t *testing.T, raw string) *attrs.Map {
	t.Helper()
	value, err := attrs.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	return value.(*attrs.Map)
}

func mustMarshal(t *testing.T, value any) string {
	t.Helper()
	encoded, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	return string(encoded)
}

func TestGenerateScenarios(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		original string
		current  string
		want     string
	}{
		{
			name:     "replace_status",
			original: `{"status":"processing"}`,
			current:  `{"status":"ready"}`,
			want:     `[{"op":"replace","path":"/status","value":"ready"}]`,
		},
		{
			name:     "add_nested_label",
			original: `{"metadata":{"labels":{}}}`,
			current:  `{"metadata":{"labels":{"env":"prod"}}}`,
			want:     `[{"op":"add","path":"/metadata/labels/env","value":"prod"}]`,
		},
		{
			name:     "remove_has_no_value",
			original: `{"a":1,"b":2}`,
			current:  `{"a":1}`,
			want:     `[{"op":"remove","path":"/b"}]`,
		},
		{
			name:     "camelizes_paths_and_values",
			original: `{"started_at":null}`,
			current:  `{"started_at":"2024-01-01T00:00:00Z","playback_urls":[{"media_type":"hls"}]}`,
			want: `[{"op":"add","path":"/playbackUrls","value":[{"mediaType":"hls"}]},` +
				`{"op":"replace","path":"/startedAt","value":"2024-01-01T00:00:00Z"}]`,
		},
		{
			name:     "null_value_is_kept",
			original: `{"ended_at":"2024-01-01T00:00:00Z"}`,
			current:  `{"ended_at":null}`,
			want:     `[{"op":"replace","path":"/endedAt","value":null}]`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			changes := diff.Diff(mustDecode(t, testCase.original), mustDecode(t, testCase.current))
			if got := mustMarshal(t, Generate(changes)); got != testCase.want {
				t.Fatalf("expected %s, got %s", testCase.want, got)
			}
		})
	}
}

func TestGenerateSnakeStyleKeepsNamesVerbatim(t *testing.T) {
	t.Parallel()

	changes := diff.Diff(
		mustDecode(t, `{"metadata":{}}`),
		mustDecode(t, `{"metadata":{"cost_center":{"owner_team":"media"}}}`),
	)
	got := mustMarshal(t, Generator{Style: StyleSnake}.Generate(changes))
	want := `[{"op":"add","path":"/metadata/cost_center","value":{"owner_team":"media"}}]`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGenerateKeepsInputOrder(t *testing.T) {
	t.Parallel()

	changes := []diff.Change{
		diff.Replaced{Path: diff.Path{"z"}, Old: int64(1), New: int64(2)},
		diff.Removed{Path: diff.Path{"a"}},
		diff.Added{Path: diff.Path{"m"}, Value: "x"},
	}
	operations := Generate(changes)

	var got []string
	for _, operation := range operations {
		got = append(got, string(operation.Op)+" "+operation.Path)
	}
	want := []string{"replace /z", "remove /a", "add /m"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPointerEscapesSegments(t *testing.T) {
	t.Parallel()

	generator := Generator{Style: StyleSnake}
	if got := generator.Pointer(diff.Path{"metadata", "a/b", "c~d"}); got != "/metadata/a~1b/c~0d" {
		t.Fatalf("unexpected pointer %q", got)
	}
	if got := generator.Pointer(nil); got != "" {
		t.Fatalf("expected empty pointer for root, got %q", got)
	}
}

func TestDocumentShape(t *testing.T) {
	t.Parallel()

	document := Document{Data: []Operation{{Op: OpRemove, Path: "/b"}}}
	if got := mustMarshal(t, document); got != `{"data":[{"op":"remove","path":"/b"}]}` {
		t.Fatalf("unexpected document %s", got)
	}
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  Style
	}{
		{input: "", want: StyleCamel},
		{input: "camel", want: StyleCamel},
		{input: "Snake", want: StyleSnake},
		{input: "snake_case", want: StyleSnake},
	}
	for _, testCase := range testCases {
		got, err := ParseStyle(testCase.input)
		if err != nil || got != testCase.want {
			t.Fatalf("ParseStyle(%q) = %v, %v", testCase.input, got, err)
		}
	}

	if _, err := ParseStyle("kebab"); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// Applying the generated patch to the original document must produce the
// current document.
func TestGeneratedPatchAppliesCleanly(t *testing.T) {
	t.Parallel()

	pairs := []struct {
		name     string
		original string
		current  string
	}{
		{
			name:     "mixed",
			original: `{"title":"intro","status":"processing","metadata":{"labels":{"env":"dev"},"owner":"ops"},"tags":["a"]}`,
			current:  `{"title":"intro","status":"ready","metadata":{"labels":{"env":"prod","tier":"gold"}},"tags":["a","b"],"duration_ms":1200}`,
		},
		{
			name:     "map_becomes_scalar",
			original: `{"settings":{"dvr_enabled":true}}`,
			current:  `{"settings":"inherit"}`,
		},
		{
			name:     "special_characters",
			original: `{"labels":{"a/b":"x","c~d":"y"}}`,
			current:  `{"labels":{"a/b":"z"}}`,
		},
		{
			name:     "identical",
			original: `{"a":[1,{"b":null}]}`,
			current:  `{"a":[1,{"b":null}]}`,
		},
	}

	for _, pair := range pairs {
		t.Run(pair.name, func(t *testing.T) {
			t.Parallel()

			original := mustDecode(t, pair.original)
			current := mustDecode(t, pair.current)
			changes := diff.Diff(original, current)

			for _, style := range []Style{StyleSnake, StyleCamel} {
				source, target := original.Plain(), current.Plain()
				if style == StyleCamel {
					source = keys.ToAPI(source).(map[string]any)
					target = keys.ToAPI(target).(map[string]any)
				}

				operations := Generator{Style: style}.Generate(changes)
				decoded, err := jsonpatch.DecodePatch([]byte(mustMarshal(t, operations)))
				if err != nil {
					t.Fatalf("DecodePatch returned error: %v", err)
				}
				applied, err := decoded.Apply([]byte(mustMarshal(t, source)))
				if err != nil {
					t.Fatalf("%s: Apply returned error: %v", style, err)
				}
				if want := mustMarshal(t, target); !jsonpatch.Equal(applied, []byte(want)) {
					t.Fatalf("%s: expected %s, got %s", style, want, applied)
				}
			}
		})
	}
}
