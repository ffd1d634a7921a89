package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-recommender/pkg/registry"
)

func TestSchemaFields(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"collegeId"},
		"properties": map[string]interface{}{
			"collegeId":  map[string]interface{}{"type": "string"},
			"rank":       map[string]interface{}{"type": []interface{}{"integer", "null"}},
			"percentile": map[string]interface{}{"type": "number"},
			"branches":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"extra":      map[string]interface{}{},
		},
	}

	fields := schemaFields(schema)

	assert.Equal(t, []Field{
		{Name: "Branches", Type: "[]string", JSONTag: "branches,omitempty"},
		{Name: "CollegeID", Type: "string", JSONTag: "collegeId"},
		{Name: "Extra", Type: "interface{}", JSONTag: "extra,omitempty"},
		{Name: "Percentile", Type: "float64", JSONTag: "percentile,omitempty"},
		{Name: "Rank", Type: "*int", JSONTag: "rank,omitempty"},
	}, fields)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "importcutoffs", packageName("import-cutoffs"))
	assert.Equal(t, "searchcolleges", packageName("search_colleges"))
}

func TestRender_ProducesFormattedSources(t *testing.T) {
	act := &registry.Activity{
		ID:          "catalog.college.search",
		DisplayName: "Search Colleges",
		Category:    "catalog",
		TaskType:    "search-colleges",
		Timeout:     "5s",
		InputSchema: map[string]interface{}{
			"properties": map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
		},
	}

	files, err := render(newWorkerData(act))
	require.NoError(t, err)
	require.Len(t, files, 4)

	byName := map[string]string{}
	for _, f := range files {
		byName[f.Name] = string(f.Content)
	}
	assert.True(t, strings.HasPrefix(byName["handler.go"], "package searchcolleges"))
	assert.Contains(t, byName["handler.go"], `TaskType = "search-colleges"`)
	assert.Contains(t, byName["models.go"], "Query string `json:\"query,omitempty\"`")
	assert.Contains(t, byName["config.go"], `time.ParseDuration("5s")`)
}
