package resource

import (
	"strconv"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/keys"
)

type loadedObject struct {
	id         string
	typ        string
	attributes *attrs.Map
}

// parsePayload accepts {data:{...}}, {data:[one]}, a resource object
// {id,type,attributes} or a bare attributes map. Anything else, including a
// data array without exactly one element, loads as an empty attribute set.
func parsePayload(payload any) loadedObject {
	root := asObject(payload)
	if root == nil {
		return loadedObject{attributes: attrs.NewMap(nil)}
	}

	if data, ok := root.Get("data"); ok {
		switch typed := data.(type) {
		case *attrs.Map:
			return parseObject(typed)
		case *attrs.List:
			if typed.Len() == 1 {
				item, _ := typed.At(0)
				if object, ok := item.(*attrs.Map); ok {
					return parseObject(object)
				}
			}
		}
		return loadedObject{attributes: attrs.NewMap(nil)}
	}

	if root.Has("attributes") {
		return parseObject(root)
	}

	return loadedObject{
		id:         scalarString(root.Value("id")),
		attributes: translate(root),
	}
}

func parseObject(object *attrs.Map) loadedObject {
	attributes, _ := object.Map("attributes")
	return loadedObject{
		id:         scalarString(object.Value("id")),
		typ:        scalarString(object.Value("type")),
		attributes: translate(attributes),
	}
}

func asObject(payload any) *attrs.Map {
	if raw, ok := payload.([]byte); ok {
		decoded, err := attrs.Decode(raw)
		if err != nil {
			return nil
		}
		payload = decoded
	}

	wrapped, err := attrs.Wrap(payload, nil)
	if err != nil {
		return nil
	}
	object, _ := wrapped.(*attrs.Map)
	return object
}

func translate(attributes *attrs.Map) *attrs.Map {
	if attributes == nil {
		return attrs.NewMap(nil)
	}
	translated, _ := keys.FromAPI(attributes).(*attrs.Map)
	return translated
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}
