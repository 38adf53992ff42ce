// Package template substitutes {{path.to.field}} placeholders in rule
// configuration with values from the trigger payload.
package template

import (
	"regexp"
	"strings"

	"github.com/dukex/hireflow/pkg/fieldpath"
)

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// HasPlaceholders reports whether s contains at least one {{...}} token.
func HasPlaceholders(s string) bool {
	return placeholder.MatchString(s)
}

// Resolve replaces every {{ path }} token in tmpl with the string form of the
// value found at path in input. Tokens whose path is absent are left as they
// are; values that are present but falsy (0, false, "") and nil still
// substitute.
func Resolve(tmpl string, input map[string]any) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	return placeholder.ReplaceAllStringFunc(tmpl, func(token string) string {
		path := strings.TrimSpace(token[2 : len(token)-2])

		value, found := fieldpath.Lookup(input, path)
		if !found {
			return token
		}

		return fieldpath.String(value)
	})
}

// ResolveObject returns a copy of obj where string values are resolved,
// nested objects are resolved recursively and every other value is kept as
// is. obj is not modified.
func ResolveObject(obj map[string]any, input map[string]any) map[string]any {
	if obj == nil {
		return nil
	}

	resolved := make(map[string]any, len(obj))

	for key, value := range obj {
		switch v := value.(type) {
		case string:
			resolved[key] = Resolve(v, input)
		case map[string]any:
			resolved[key] = ResolveObject(v, input)
		default:
			resolved[key] = value
		}
	}

	return resolved
}

// ResolveStrings resolves every value of a string map.
func ResolveStrings(values map[string]string, input map[string]any) map[string]string {
	if values == nil {
		return nil
	}

	resolved := make(map[string]string, len(values))
	for key, value := range values {
		resolved[key] = Resolve(value, input)
	}

	return resolved
}

// ResolveEach resolves every element of a string slice.
func ResolveEach(values []string, input map[string]any) []string {
	if values == nil {
		return nil
	}

	resolved := make([]string, len(values))
	for i, value := range values {
		resolved[i] = Resolve(value, input)
	}

	return resolved
}
