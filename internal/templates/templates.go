// Package templates serves the built-in health-check checklists for each
// kind of plugin project.
package templates

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pluginops/internal/project"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// Category names of the built-in templates.
const (
	CategorySkillOnly  = "skill-only"
	CategoryMCPPlugin  = "mcp-plugin"
	CategoryFullPlugin = "full-plugin"
)

var categoryOrder = []string{CategorySkillOnly, CategoryMCPPlugin, CategoryFullPlugin}

// Check is one weighted checklist item.
type Check struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Weight      int    `yaml:"weight" json:"weight"`
}

// Template is a checklist for one kind of project.
type Template struct {
	Category        string   `yaml:"category" json:"category"`
	Description     string   `yaml:"description" json:"description"`
	Checks          []Check  `yaml:"checks" json:"checks"`
	Recommendations []string `yaml:"recommendations" json:"recommendations"`
}

// TotalWeight sums the weights of all checks.
func (t *Template) TotalWeight() int {
	total := 0
	for _, c := range t.Checks {
		total += c.Weight
	}
	return total
}

// Summary is the listing form of a template.
type Summary struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Catalog holds the parsed templates.
type Catalog struct {
	byCategory map[string]*Template
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read template catalog: %w", err)
	}

	c := &Catalog{byCategory: make(map[string]*Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := catalogFS.ReadFile(path.Join("catalog", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}

		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}
		if t.Category == "" {
			return nil, fmt.Errorf("template %s has no category", entry.Name())
		}
		c.byCategory[t.Category] = &t
	}
	return c, nil
}

// MustLoad is Load for program start, where a broken embedded catalog is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// List returns every template's category and description in catalog order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.byCategory))
	for _, cat := range c.categories() {
		t := c.byCategory[cat]
		out = append(out, Summary{Category: t.Category, Description: t.Description})
	}
	return out
}

// Get returns the template for category, or nil when there is none.
func (c *Catalog) Get(category string) *Template {
	return c.byCategory[category]
}

// ForProjectType returns the template matching a project's type.
func (c *Catalog) ForProjectType(t project.Type) *Template {
	switch t {
	case project.TypeFull:
		return c.Get(CategoryFullPlugin)
	case project.TypeMCP:
		return c.Get(CategoryMCPPlugin)
	default:
		return c.Get(CategorySkillOnly)
	}
}

// categories lists known categories first, then any others alphabetically.
func (c *Catalog) categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, cat := range categoryOrder {
		if _, ok := c.byCategory[cat]; ok {
			out = append(out, cat)
			seen[cat] = true
		}
	}
	var extra []string
	for cat := range c.byCategory {
		if !seen[cat] {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
