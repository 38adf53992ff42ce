// Package fieldpath resolves dotted paths such as "candidate.address.city"
// against decoded JSON payloads.
package fieldpath

import "strings"

// Lookup walks input following the dot-separated segments of path. The
// boolean is false when a segment is missing or an intermediate value is not
// an object; a present key holding nil is found.
func Lookup(input map[string]any, path string) (any, bool) {
	if input == nil {
		return nil, false
	}

	var current any = input

	for _, segment := range strings.Split(path, ".") {
		object, ok := asObject(current)
		if !ok {
			return nil, false
		}

		current, ok = object[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, v != nil
	case map[string]string:
		if v == nil {
			return nil, false
		}

		object := make(map[string]any, len(v))
		for key, val := range v {
			object[key] = val
		}

		return object, true
	default:
		return nil, false
	}
}
