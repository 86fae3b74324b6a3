package resource

import "fmt"

// Object asserts that v is a JSON object.
func Object(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Errorf(KindDecode, "expected object, got %s", typeName(v))
	}
	return obj, nil
}

// Array asserts that v is a JSON array.
func Array(v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Errorf(KindDecode, "expected array, got %s", typeName(v))
	}
	return arr, nil
}

// String returns obj[key] when it is present and a JSON string.
func String(obj map[string]any, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", Errorf(KindDecode, "missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", Errorf(KindDecode, "field %q: expected string, got %s", key, typeName(raw))
	}
	return s, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
