package templating

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		declared []string
		reason   string
	}{
		{name: "valid", content: "Hi {{name}}, order {{id}} ready", declared: []string{"name", "id"}},
		{name: "no variables", content: "We missed your call", declared: nil},
		{name: "declared but not used", content: "Hi {{name}}", declared: []string{"name", "extra"}, reason: ReasonUnused},
		{name: "duplicate occurrence", content: "Hi {{name}} {{name}}", declared: []string{"name"}, reason: ReasonDuplicateVariables},
		{name: "duplicate declaration", content: "Hi {{name}}", declared: []string{"name", "name"}, reason: ReasonDuplicateVariables},
		{name: "used but not declared", content: "Hi {{name}} at {{time}}", declared: []string{"name"}, reason: ReasonUndeclared},
		{name: "order mismatch", content: "{{id}} for {{name}}", declared: []string{"name", "id"}, reason: ReasonOrderMismatch},
		{name: "whitespace is not a placeholder", content: "Hi {{ name }}", declared: nil},
		{name: "too long", content: strings.Repeat("a", MaxContentLength+1), reason: ReasonTooLong},
		{name: "limit counts characters", content: strings.Repeat("é", MaxContentLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.content, tt.declared)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.reason, vErr.Reason)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestValidateReportsOffendingVariables(t *testing.T) {
	err := Validate("Hi {{name}}", []string{"name", "extra"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"extra"}, vErr.Variables)
}

func TestExtractVariablesKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "b"}, ExtractVariables("{{b}} {{a}} {{b}} {{not valid}}"))
	assert.Empty(t, ExtractVariables("plain"))
}

func TestRender(t *testing.T) {
	declared := []string{"name", "id"}

	out := Render("Hi {{name}}, order {{id}} ready", declared, map[string]string{"name": "Ana", "id": "42"})
	assert.Equal(t, "Hi Ana, order 42 ready", out)

	out = Render("Hi {{name}}, order {{id}} ready", declared, map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi Ana, order  ready", out)

	out = Render("Hi {{name}}", nil, map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi {{name}}", out)
}

func TestOrderedValues(t *testing.T) {
	values := OrderedValues([]string{"business_name", "caller_number"}, map[string]string{
		"caller_number": "+15550100",
	})
	assert.Equal(t, []string{"", "+15550100"}, values)
}
