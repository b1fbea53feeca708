package attrs

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Wrap normalizes value and converts maps and slices into containers owned
// by owner. Existing containers are deep copied so that no two owners ever
// share a node.
func Wrap(value any, owner Owner) (any, error) {
	return wrap(value, owner)
}

func wrap(value any, owner Owner) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string:
		return typed, nil
	case float32:
		return normalizeFloat(float64(typed))
	case float64:
		return normalizeFloat(typed)
	case int:
		return int64(typed), nil
	case int8:
		return int64(typed), nil
	case int16:
		return int64(typed), nil
	case int32:
		return int64(typed), nil
	case int64:
		return typed, nil
	case uint:
		return normalizeUint(uint64(typed))
	case uint8:
		return normalizeUint(uint64(typed))
	case uint16:
		return normalizeUint(uint64(typed))
	case uint32:
		return normalizeUint(uint64(typed))
	case uint64:
		return normalizeUint(typed)
	case json.Number:
		return normalizeJSONNumber(typed)
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano), nil
	case *Map:
		return typed.Clone(owner), nil
	case *List:
		return typed.Clone(owner), nil
	case map[string]any:
		return FromMap(typed, owner)
	case []any:
		items, err := wrapAll(typed, owner)
		if err != nil {
			return nil, err
		}
		return &List{items: items, owner: owner}, nil
	}

	return wrapReflectValue(value, owner)
}

func normalizeFloat(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, validationError("attribute contains non-finite float", nil)
	}
	return value, nil
}

func normalizeUint(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, validationError("attribute contains integer out of range", nil)
	}
	return int64(value), nil
}

func normalizeJSONNumber(value json.Number) (any, error) {
	if asInt, err := value.Int64(); err == nil {
		return asInt, nil
	}
	asBig, ok := new(big.Int).SetString(value.String(), 10)
	if ok {
		if asBig.IsInt64() {
			return asBig.Int64(), nil
		}
		return nil, validationError("attribute contains integer out of range", nil)
	}

	asFloat, err := value.Float64()
	if err != nil {
		return nil, validationError("attribute contains invalid number", err)
	}
	return normalizeFloat(asFloat)
}

func wrapReflectValue(value any, owner Owner) (any, error) {
	reflectValue := reflect.ValueOf(value)
	switch reflectValue.Kind() {
	case reflect.Pointer:
		if reflectValue.IsNil() {
			return nil, nil
		}
		return wrap(reflectValue.Elem().Interface(), owner)
	case reflect.String:
		return reflectValue.String(), nil
	case reflect.Bool:
		return reflectValue.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflectValue.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return normalizeUint(reflectValue.Uint())
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(reflectValue.Float())
	case reflect.Map:
		if reflectValue.Type().Key().Kind() != reflect.String {
			return nil, validationError("attribute map keys must be strings", nil)
		}
		if reflectValue.IsNil() {
			return nil, nil
		}

		keys := reflectValue.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

		out := NewMap(owner)
		for _, key := range keys {
			item, err := wrap(reflectValue.MapIndex(key).Interface(), owner)
			if err != nil {
				return nil, err
			}
			out.put(key.String(), item)
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if reflectValue.Kind() == reflect.Slice && reflectValue.IsNil() {
			return nil, nil
		}
		out := &List{items: make([]any, reflectValue.Len()), owner: owner}
		for idx := range reflectValue.Len() {
			item, err := wrap(reflectValue.Index(idx).Interface(), owner)
			if err != nil {
				return nil, err
			}
			out.items[idx] = item
		}
		return out, nil
	default:
		return nil, validationError(fmt.Sprintf("unsupported attribute type %T", value), nil)
	}
}

func plain(value any) any {
	switch typed := value.(type) {
	case *Map:
		return typed.Plain()
	case *List:
		return typed.Plain()
	default:
		return typed
	}
}

// Plain unwraps containers recursively; other values are returned as is.
func Plain(value any) any {
	return plain(value)
}

func cloneValue(value any, owner Owner) any {
	switch typed := value.(type) {
	case *Map:
		return typed.Clone(owner)
	case *List:
		return typed.Clone(owner)
	default:
		return typed
	}
}
