package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndSaveRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "catalog.college.search", TaskType: "search-colleges", Retries: 3},
			{ID: "catalog.cutoff.import", TaskType: "import-cutoffs"},
		},
	}

	require.NoError(t, SaveRegistry(path, reg))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)

	activity, ok := loaded.FindByTaskType("search-colleges")
	require.True(t, ok)
	assert.Equal(t, "catalog.college.search", activity.ID)
	assert.Equal(t, 3, activity.Retries)

	_, ok = loaded.FindByID("catalog.cutoff.import")
	assert.True(t, ok)
	_, ok = loaded.FindByTaskType("missing")
	assert.False(t, ok)
}

func TestLoadRegistry_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadRegistry(path)
	assert.ErrorContains(t, err, "failed to parse registry")
}

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	for _, taskType := range []string{
		"generate-recommendations",
		"predict-cutoff",
		"search-colleges",
		"index-colleges",
		"import-cutoffs",
	} {
		_, ok := reg.FindByTaskType(taskType)
		assert.True(t, ok, taskType)
	}
	assert.NoError(t, reg.Validate())
}

func TestActivityRegistry_Validate(t *testing.T) {
	valid := func() *ActivityRegistry {
		return &ActivityRegistry{Activities: []Activity{
			{ID: "catalog.college.search", DisplayName: "Search", Category: "catalog", TaskType: "search-colleges", ImplementationStatus: StatusCompleted},
			{ID: "catalog.college.index", DisplayName: "Index", Category: "catalog", TaskType: "index-colleges"},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = r.Activities[0].ID }, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = "search-colleges" }, "duplicate task type"},
		{"missing category", func(r *ActivityRegistry) { r.Activities[0].Category = "" }, "missing required field: Category"},
		{"unknown status", func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" }, `unknown status "done"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
