package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Marker paths inspected by Detect, relative to the project root.
const (
	SkillsDir      = "skills"
	AgentsDir      = "agents"
	MCPManifest    = ".mcp.json"
	ServerEntry    = "src/index.ts"
	SettingsFile   = ".claude/settings.json"
	PluginManifest = ".claude-plugin/plugin.json"
)

// DetectionResult is what Detect learned about a directory.
type DetectionResult struct {
	HasSkills   bool    `json:"has_skills"`
	HasMCP      bool    `json:"has_mcp"`
	HasHooks    bool    `json:"has_hooks"`
	HasAgents   bool    `json:"has_agents"`
	Type        Type    `json:"type"`
	Version     *string `json:"version"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// manifestFields is the name/version/description triple read from manifests.
type manifestFields struct {
	Name        string `json:"name" toml:"name"`
	Version     string `json:"version" toml:"version"`
	Description string `json:"description" toml:"description"`
}

// Detect inspects root for plugin marker files and classifies it.
// Unreadable or malformed manifests contribute nothing; Detect never fails.
func Detect(root string) DetectionResult {
	var r DetectionResult

	r.HasSkills = exists(root, SkillsDir)
	r.HasMCP = exists(root, MCPManifest) || exists(root, ServerEntry)
	r.HasHooks = hasHooks(filepath.Join(root, filepath.FromSlash(SettingsFile)))
	r.HasAgents = exists(root, AgentsDir)

	// Earlier sources win; later ones only fill what is still unset.
	sources := []func(string) (manifestFields, bool){
		readPackageJSON,
		readPyProject,
		readCargoToml,
		readPluginJSON,
	}
	for _, read := range sources {
		if m, ok := read(root); ok {
			fill(&r.Name, m.Name)
			fill(&r.Version, m.Version)
			fill(&r.Description, m.Description)
		}
	}

	r.Type = classify(r.HasSkills, r.HasMCP)
	return r
}

// CreateInput turns a detection of root into a registration. The directory
// name stands in when no manifest named the project.
func (d DetectionResult) CreateInput(root string) CreateInput {
	name := filepath.Base(root)
	if d.Name != nil {
		name = *d.Name
	}
	in := CreateInput{
		Name:      name,
		Type:      d.Type,
		Path:      &root,
		Version:   d.Version,
		HasSkills: d.HasSkills,
		HasMCP:    d.HasMCP,
		HasHooks:  d.HasHooks,
		HasAgents: d.HasAgents,
	}
	if d.Description != nil {
		in.Description = *d.Description
	}
	return in
}

func classify(hasSkills, hasMCP bool) Type {
	switch {
	case hasMCP && hasSkills:
		return TypeFull
	case hasMCP:
		return TypeMCP
	default:
		return TypeSkillOnly
	}
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

// hasHooks reports whether the settings file declares at least one hook.
func hasHooks(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var settings struct {
		Hooks map[string]json.RawMessage `json:"hooks"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return false
	}
	return len(settings.Hooks) > 0
}

func fill(dst **string, v string) {
	if *dst == nil && v != "" {
		s := v
		*dst = &s
	}
}

func readJSONManifest(path string) (manifestFields, bool) {
	var m manifestFields
	data, err := os.ReadFile(path)
	if err != nil {
		return m, false
	}
	// Decode loosely so a non-string field does not discard the others.
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return m, false
	}
	m.Name, _ = raw["name"].(string)
	m.Version, _ = raw["version"].(string)
	m.Description, _ = raw["description"].(string)
	return m, true
}

func readPackageJSON(root string) (manifestFields, bool) {
	return readJSONManifest(filepath.Join(root, "package.json"))
}

func readPluginJSON(root string) (manifestFields, bool) {
	return readJSONManifest(filepath.Join(root, filepath.FromSlash(PluginManifest)))
}

func readPyProject(root string) (manifestFields, bool) {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return manifestFields{}, false
	}
	var doc struct {
		Project manifestFields `toml:"project"`
		Tool    struct {
			Poetry manifestFields `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return manifestFields{}, false
	}
	m := doc.Project
	if m.Name == "" {
		m.Name = doc.Tool.Poetry.Name
	}
	if m.Version == "" {
		m.Version = doc.Tool.Poetry.Version
	}
	if m.Description == "" {
		m.Description = doc.Tool.Poetry.Description
	}
	return m, true
}

func readCargoToml(root string) (manifestFields, bool) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return manifestFields{}, false
	}
	var doc struct {
		Package manifestFields `toml:"package"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return manifestFields{}, false
	}
	return doc.Package, true
}
