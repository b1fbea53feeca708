package attrs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Decode parses a JSON document keeping object key order. Objects become
// owner-less *Map values and arrays become *List values.
func Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		return nil, validationError("invalid JSON document", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, validationError("invalid JSON document", errors.New("unexpected trailing data"))
	}
	return value, nil
}

func decodeValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", typed)
		}
	case json.Number:
		return normalizeJSONNumber(typed)
	case float64:
		return normalizeFloat(typed)
	case string, bool, nil:
		return typed, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", token)
	}
}

func decodeObject(decoder *json.Decoder) (*Map, error) {
	out := NewMap(nil)
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %T", keyToken)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		out.put(key, value)
	}
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeArray(decoder *json.Decoder) (*List, error) {
	out := NewList(nil)
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		out.items = append(out.items, value)
	}
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalJSON replaces the content with an ordered JSON object. It counts
// as construction, so the owner is not notified.
func (m *Map) UnmarshalJSON(data []byte) error {
	value, err := Decode(data)
	if err != nil {
		return err
	}
	decoded, ok := value.(*Map)
	if !ok {
		return validationError("expected a JSON object", nil)
	}

	adopted := decoded.Clone(m.owner)
	m.keys = adopted.keys
	m.values = adopted.values
	return nil
}

func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for idx, key := range m.keys {
		if idx > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		buffer.Write(encodedValue)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func (l *List) UnmarshalJSON(data []byte) error {
	value, err := Decode(data)
	if err != nil {
		return err
	}
	decoded, ok := value.(*List)
	if !ok {
		return validationError("expected a JSON array", nil)
	}
	l.items = decoded.Clone(l.owner).items
	return nil
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}
