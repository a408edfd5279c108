// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["ownerId", "action"],
	"properties": {
		"ownerId": {"type": "string", "minLength": 1},
		"action": {"type": "string", "enum": ["save", "list"]},
		"radius": {"type": "number", "minimum": 1}
	}
}`

func TestSchema_Valid(t *testing.T) {
	s := MustCompile(testSchema)
	res, err := s.Validate(map[string]interface{}{"ownerId": "u-1", "action": "save"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestSchema_Invalid(t *testing.T) {
	s := MustCompile(testSchema)
	res, err := s.Validate(map[string]interface{}{"action": "drop", "radius": 0.0})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	codes := map[string]string{}
	for _, e := range res.Errors {
		codes[e.Code] = e.Field
	}
	assert.Contains(t, codes, "REQUIRED_FIELD_MISSING")
	assert.Contains(t, codes, "INVALID_ENUM_VALUE")
	assert.Contains(t, codes, "MINIMUM_VIOLATION")
	assert.NotEmpty(t, res.Summary())
}

func TestCompile_BadSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}
