package scaffold

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-search-workers/pkg/registry"
)

func testActivity() registry.Activity {
	return registry.Activity{
		ID:                   "score-listing",
		DisplayName:          "Score Listing",
		Description:          "Scores a listing for a buyer.",
		Category:             "search",
		TaskType:             "score-listing",
		ImplementationStatus: registry.StatusPlanned,
		Timeout:              "1500ms",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"listingId"},
			"properties": map[string]interface{}{
				"listingId": map[string]interface{}{"type": "string"},
				"weight":    map[string]interface{}{"type": []interface{}{"null", "number"}},
				"tags":      map[string]interface{}{"type": "array"},
				"strict":    map[string]interface{}{"type": "boolean"},
			},
		},
	}
}

// ==========================
// Fields
// ==========================

func TestFields(t *testing.T) {
	fields := Fields(testActivity().InputSchema)
	assert.Equal(t, []Field{
		{Name: "ListingID", Type: "string", JSONTag: "listingId"},
		{Name: "Strict", Type: "bool", JSONTag: "strict,omitempty"},
		{Name: "Tags", Type: "[]interface{}", JSONTag: "tags,omitempty"},
		{Name: "Weight", Type: "float64", JSONTag: "weight,omitempty"},
	}, fields)
}

func TestFields_NoProperties(t *testing.T) {
	assert.Empty(t, Fields(map[string]interface{}{"type": "object"}))
}

// ==========================
// Render
// ==========================

func TestRender(t *testing.T) {
	files, err := Render(testActivity(), "example.com/workers")
	require.NoError(t, err)
	require.Len(t, files, 4)

	fset := token.NewFileSet()
	for name, src := range files {
		_, err := parser.ParseFile(fset, name, src, parser.AllErrors)
		assert.NoError(t, err, name)
	}

	assert.Contains(t, string(files["handler.go"]), `const TaskType = "score-listing"`)
	assert.Contains(t, string(files["handler.go"]), `"example.com/workers/internal/common/camunda"`)
	assert.Contains(t, string(files["handler.go"]), "// Handler serves Score Listing: Scores a listing for a buyer.")
	assert.Contains(t, string(files["config.go"]), "Timeout: 1500 * time.Millisecond")
	assert.Regexp(t, `ListingID\s+string\s+`+"`"+`json:"listingId"`+"`", string(files["models.go"]))
	assert.Contains(t, string(files["models.go"]), `"required": [`)
	assert.Contains(t, string(files["handler_test.go"]), "package scorelisting")
}

func TestRender_Errors(t *testing.T) {
	a := testActivity()
	a.Timeout = "eventually"
	_, err := Render(a, "example.com/workers")
	assert.Error(t, err)

	_, err = Render(registry.Activity{ID: "x"}, "example.com/workers")
	assert.Error(t, err)
}

// ==========================
// Write
// ==========================

func TestWrite(t *testing.T) {
	root := t.TempDir()
	a := testActivity()
	dir := Dir(root, a)
	assert.Equal(t, filepath.Join(root, "internal", "workers", "search", "score-listing"), dir)

	written, err := Write(dir, a, "example.com/workers", false)
	require.NoError(t, err)
	assert.Len(t, written, 4)
	for _, path := range written {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}

	_, err = Write(dir, a, "example.com/workers", false)
	assert.Error(t, err)

	_, err = Write(dir, a, "example.com/workers", true)
	assert.NoError(t, err)
}
