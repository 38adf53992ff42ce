package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_NoPlaceholders(t *testing.T) {
	input := map[string]any{"name": "Ada"}

	for _, tmpl := range []string{"", "Welcome aboard", "curly { braces } only", "{{}}"} {
		assert.Equal(t, tmpl, Resolve(tmpl, input))
	}
}

func TestResolve_SimpleField(t *testing.T) {
	data := map[string]any{
		"email": "a@b.com",
		"candidate": map[string]any{
			"firstName": "Ada",
			"address":   map[string]any{"city": "London"},
		},
	}

	assert.Equal(t, "a@b.com", Resolve("{{email}}", data))
	assert.Equal(t, "Hi Ada from London", Resolve("Hi {{ candidate.firstName }} from {{candidate.address.city}}", data))
}

func TestResolve_AbsentPathKeepsToken(t *testing.T) {
	data := map[string]any{"candidate": map[string]any{"firstName": "Ada"}}

	assert.Equal(t, "Dear {{ candidate.lastName }}", Resolve("Dear {{ candidate.lastName }}", data))
	assert.Equal(t, "Ada {{job.title}}", Resolve("{{candidate.firstName}} {{job.title}}", data))
	assert.Equal(t, "{{email}}", Resolve("{{email}}", nil))
}

func TestResolve_ValueKinds(t *testing.T) {
	data := map[string]any{
		"zero":    float64(0),
		"count":   3,
		"ratio":   0.25,
		"no":      false,
		"blank":   "",
		"nothing": nil,
		"tags":    []any{"go", "sql"},
		"meta":    map[string]any{"a": float64(1)},
	}

	tests := []struct {
		tmpl     string
		expected string
	}{
		{"[{{zero}}]", "[0]"},
		{"[{{count}}]", "[3]"},
		{"[{{ratio}}]", "[0.25]"},
		{"[{{no}}]", "[false]"},
		{"[{{blank}}]", "[]"},
		{"[{{nothing}}]", "[null]"},
		{"[{{tags}}]", "[go,sql]"},
		{"[{{meta}}]", `[{"a":1}]`},
		{"{{tags}} / {{meta}}", `go,sql / {"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.tmpl, data))
		})
	}
}

func TestResolveObject(t *testing.T) {
	data := map[string]any{
		"applicationId": "app-42",
		"candidate":     map[string]any{"name": "Ada"},
	}

	obj := map[string]any{
		"subject": "Application {{applicationId}}",
		"nested": map[string]any{
			"greeting": "Hello {{candidate.name}}",
			"missing":  "{{candidate.phone}}",
		},
		"count":   float64(2),
		"enabled": true,
		"list":    []any{"{{applicationId}}"},
		"none":    nil,
	}

	resolved := ResolveObject(obj, data)

	assert.Equal(t, "Application app-42", resolved["subject"])
	assert.Equal(t, map[string]any{"greeting": "Hello Ada", "missing": "{{candidate.phone}}"}, resolved["nested"])
	assert.Equal(t, float64(2), resolved["count"])
	assert.Equal(t, true, resolved["enabled"])
	assert.Equal(t, []any{"{{applicationId}}"}, resolved["list"])
	assert.Nil(t, resolved["none"])

	assert.Equal(t, "Application {{applicationId}}", obj["subject"], "source object must not be modified")
	assert.Nil(t, ResolveObject(nil, data))
}

func TestResolveStringsAndEach(t *testing.T) {
	data := map[string]any{"token": "s3cr3t", "id": "u-1"}

	assert.Equal(t,
		map[string]string{"Authorization": "Bearer s3cr3t"},
		ResolveStrings(map[string]string{"Authorization": "Bearer {{token}}"}, data),
	)
	assert.Equal(t, []string{"u-1", "{{other}}"}, ResolveEach([]string{"{{id}}", "{{other}}"}, data))
	assert.Nil(t, ResolveEach(nil, data))
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("Hi {{name}}"))
	assert.False(t, HasPlaceholders("Hi name"))
}
