package main

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"sort"
	"strings"
	"text/template"

	"college-recommender/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	Description  string
	Category     string
	TaskType     string
	PackageName  string
	Timeout      string
	InputFields  []Field
	OutputFields []Field
}

type Field struct {
	Name    string
	Type    string
	JSONTag string
}

type generatedFile struct {
	Name    string
	Content []byte
}

func newWorkerData(a *registry.Activity) WorkerData {
	timeout := a.Timeout
	if timeout == "" {
		timeout = "30s"
	}
	return WorkerData{
		Name:         a.DisplayName,
		Description:  a.Description,
		Category:     a.Category,
		TaskType:     a.TaskType,
		PackageName:  packageName(a.TaskType),
		Timeout:      timeout,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}
}

func packageName(taskType string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "", ".", "").Replace(taskType))
}

// schemaFields turns the properties of an object schema into struct fields,
// sorted by name so output is stable.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		goType, nullable := goType(details)
		tag := name
		if !required[name] {
			tag += ",omitempty"
		}
		if nullable && !strings.HasPrefix(goType, "[]") && !strings.HasPrefix(goType, "map") {
			goType = "*" + goType
		}
		fields = append(fields, Field{Name: exportedName(name), Type: goType, JSONTag: tag})
	}
	return fields
}

// goType maps a JSON Schema property to a Go type. The second result reports
// whether the schema allows null.
func goType(details map[string]interface{}) (string, bool) {
	var types []string
	switch t := details["type"].(type) {
	case string:
		types = []string{t}
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok {
				types = append(types, s)
			}
		}
	}
	nullable := slices.Contains(types, "null")
	types = slices.DeleteFunc(types, func(s string) bool { return s == "null" })
	if len(types) != 1 {
		return "interface{}", false
	}

	switch types[0] {
	case "string":
		return "string", nullable
	case "integer":
		return "int", nullable
	case "number":
		return "float64", nullable
	case "boolean":
		return "bool", nullable
	case "array":
		items, _ := details["items"].(map[string]interface{})
		itemType, _ := goType(items)
		return "[]" + itemType, nullable
	case "object":
		return "map[string]interface{}", nullable
	}
	return "interface{}", false
}

// exportedName upper-cases the first letter and the common Id/Url suffixes.
func exportedName(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	for _, suffix := range []string{"Id", "Url"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix) + strings.ToUpper(suffix)
		}
	}
	return s
}

func render(data WorkerData) ([]generatedFile, error) {
	templates := []struct{ name, text string }{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}

	files := make([]generatedFile, 0, len(templates))
	for _, t := range templates {
		tmpl, err := template.New(t.name).Parse(t.text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", t.name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", t.name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", t.name, err)
		}
		files = append(files, generatedFile{Name: t.name, Content: src})
	}
	return files, nil
}
