package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pluginops/internal/project"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, CategorySkillOnly, list[0].Category)
	assert.Equal(t, CategoryMCPPlugin, list[1].Category)
	assert.Equal(t, CategoryFullPlugin, list[2].Category)
	for _, s := range list {
		assert.NotEmpty(t, s.Description, s.Category)
	}
}

func TestTemplatesAreWellFormed(t *testing.T) {
	c := MustLoad()

	for _, s := range c.List() {
		tmpl := c.Get(s.Category)
		require.NotNil(t, tmpl, s.Category)

		assert.Equal(t, 100, tmpl.TotalWeight(), "weights of %s", s.Category)
		assert.NotEmpty(t, tmpl.Recommendations, s.Category)

		names := make(map[string]bool)
		for _, check := range tmpl.Checks {
			assert.NotEmpty(t, check.Name)
			assert.NotEmpty(t, check.Description, check.Name)
			assert.Positive(t, check.Weight, check.Name)
			assert.False(t, names[check.Name], "duplicate check %s in %s", check.Name, s.Category)
			names[check.Name] = true
		}
	}
}

func TestGetUnknown(t *testing.T) {
	assert.Nil(t, MustLoad().Get("desktop-app"))
}

func TestForProjectType(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		typ  project.Type
		want string
	}{
		{project.TypeSkillOnly, CategorySkillOnly},
		{project.TypeMCP, CategoryMCPPlugin},
		{project.TypeFull, CategoryFullPlugin},
		{"", CategorySkillOnly},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			tmpl := c.ForProjectType(tt.typ)
			require.NotNil(t, tmpl)
			assert.Equal(t, tt.want, tmpl.Category)
		})
	}
}

func TestSkillOnlyChecks(t *testing.T) {
	tmpl := MustLoad().Get(CategorySkillOnly)
	require.NotNil(t, tmpl)
	require.Len(t, tmpl.Checks, 8)
	assert.Equal(t, "skill-file-exists", tmpl.Checks[0].Name)
	assert.Equal(t, 20, tmpl.Checks[0].Weight)
}
