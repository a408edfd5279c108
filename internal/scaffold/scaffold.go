// Package scaffold renders the skeleton of a new worker package from an
// activity registry entry.
package scaffold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"listing-search-workers/pkg/registry"
)

// Field is one generated Input struct field.
type Field struct {
	Name    string
	Type    string
	JSONTag string
}

type data struct {
	Module      string
	PackageName string
	TaskType    string
	DisplayName string
	Description string
	Timeout     time.Duration
	Fields      []Field
	InputSchema string
}

// PackageName derives the Go package name from an activity id.
func PackageName(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}

// Dir is where the worker package for a lives under root.
func Dir(root string, a registry.Activity) string {
	category := strings.ToLower(a.Category)
	if category == "" {
		category = "misc"
	}
	return filepath.Join(root, "internal", "workers", category, a.ID)
}

// Render returns gofmt-ed file contents keyed by file name.
func Render(a registry.Activity, module string) (map[string][]byte, error) {
	if a.ID == "" || a.TaskType == "" {
		return nil, fmt.Errorf("activity needs id and taskType")
	}
	timeout := 10 * time.Second
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return nil, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout)
		}
		timeout = d
	}

	schema := a.InputSchema
	if schema == nil {
		schema = map[string]interface{}{"type": "object"}
	}
	raw, err := json.MarshalIndent(schema, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("activity %s: marshal input schema: %w", a.ID, err)
	}

	d := data{
		Module:      module,
		PackageName: PackageName(a.ID),
		TaskType:    a.TaskType,
		DisplayName: a.DisplayName,
		Description: a.Description,
		Timeout:     timeout,
		Fields:      Fields(schema),
		InputSchema: string(raw),
	}
	if d.DisplayName == "" {
		d.DisplayName = a.ID
	}

	out := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Funcs(funcs).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, d); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		out[name] = src
	}
	return out, nil
}

// Write renders a into dir. Existing files are left alone unless force is set.
func Write(dir string, a registry.Activity, module string, force bool) ([]string, error) {
	files, err := Render(a, module)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(path); err == nil {
				return written, fmt.Errorf("%s already exists", path)
			}
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// Fields maps the top-level properties of a JSON schema to Go fields,
// sorted by property name.
func Fields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	required := make(map[string]bool)
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		detail, _ := props[k].(map[string]interface{})
		tag := k
		if !required[k] {
			tag += ",omitempty"
		}
		fields = append(fields, Field{
			Name:    exportedName(k),
			Type:    goType(detail["type"]),
			JSONTag: tag,
		})
	}
	return fields
}

func goType(t interface{}) string {
	switch v := t.(type) {
	case string:
		switch v {
		case "string":
			return "string"
		case "integer":
			return "int"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "null" {
				return goType(s)
			}
		}
	}
	return "interface{}"
}

func exportedName(prop string) string {
	if prop == "" {
		return "Field"
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

var funcs = template.FuncMap{
	"duration": func(d time.Duration) string {
		if d%time.Second == 0 {
			return fmt.Sprintf("%d * time.Second", d/time.Second)
		}
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	},
	"backtick": func() string { return "`" },
}
