package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"pluginops/internal/backup"
	"pluginops/internal/config"
	"pluginops/internal/health"
	"pluginops/internal/issue"
	"pluginops/internal/project"
	"pluginops/internal/release"
	"pluginops/internal/runbook"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML. Values go through JSON first so
// keys follow the json tags.
func formatYAML(resp interface{}) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case []*project.Project:
		return formatProjectsHuman(v), nil
	case *project.Project:
		return formatProjectHuman(v), nil
	case *detectResult:
		return formatDetectHuman(v), nil
	case []*issue.Issue:
		return formatIssuesHuman(v), nil
	case *issue.Stats:
		return formatStatsHuman(v), nil
	case []*health.ProjectCheck:
		return formatHealthSummaryHuman(v), nil
	case []*release.Release:
		return formatReleasesHuman(v), nil
	case *release.ExportResult:
		return formatExportHuman(v), nil
	case []*runbook.Execution:
		return formatExecutionsHuman(v), nil
	case []backup.Snapshot:
		return formatSnapshotsHuman(v), nil
	case *backup.Snapshot:
		return fmt.Sprintf("Snapshot written: %s (%s)", v.Path, formatBytes(v.Size)), nil
	case *config.Config:
		return formatYAML(v)
	case string:
		return v, nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatProjectsHuman(projects []*project.Project) string {
	if len(projects) == 0 {
		return "No projects registered"
	}
	t := newTable(table.Row{"ID", "Name", "Type", "Version", "Components", "Updated"})
	for _, p := range projects {
		t.AppendRow(table.Row{shortID(p.ID), p.Name, p.Type, deref(p.Version), components(p.HasSkills, p.HasMCP, p.HasHooks, p.HasAgents), datePart(p.UpdatedAt)})
	}
	return t.Render()
}

func formatProjectHuman(p *project.Project) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Project: %s\n", p.Name))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("ID: %s\n", p.ID))
	b.WriteString(fmt.Sprintf("Type: %s\n", p.Type))
	if p.Path != nil {
		b.WriteString(fmt.Sprintf("Path: %s\n", *p.Path))
	}
	if p.Version != nil {
		b.WriteString(fmt.Sprintf("Version: %s\n", *p.Version))
	}
	if p.Description != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", p.Description))
	}
	b.WriteString(fmt.Sprintf("Components: %s\n", components(p.HasSkills, p.HasMCP, p.HasHooks, p.HasAgents)))
	b.WriteString(fmt.Sprintf("Created: %s\n", p.CreatedAt))
	b.WriteString(fmt.Sprintf("Updated: %s", p.UpdatedAt))
	return b.String()
}

func formatDetectHuman(d *detectResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Detected: %s\n", d.Path))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Type: %s\n", d.Type))
	if d.Name != nil {
		b.WriteString(fmt.Sprintf("Name: %s\n", *d.Name))
	}
	if d.Version != nil {
		b.WriteString(fmt.Sprintf("Version: %s\n", *d.Version))
	}
	if d.Description != nil {
		b.WriteString(fmt.Sprintf("Description: %s\n", *d.Description))
	}
	b.WriteString(fmt.Sprintf("Components: %s", components(d.HasSkills, d.HasMCP, d.HasHooks, d.HasAgents)))
	if d.Registered != nil {
		b.WriteString(fmt.Sprintf("\n\nRegistered as %s", d.Registered.ID))
	}
	return b.String()
}

func formatIssuesHuman(issues []*issue.Issue) string {
	if len(issues) == 0 {
		return "No issues found"
	}
	t := newTable(table.Row{"ID", "Title", "Status", "Priority", "Category", "Created"})
	for _, i := range issues {
		t.AppendRow(table.Row{shortID(i.ID), truncate(i.Title, 48), i.Status, i.Priority, i.Category, datePart(i.CreatedAt)})
	}
	return t.Render()
}

func formatStatsHuman(s *issue.Stats) string {
	t := newTable(table.Row{"Dimension", "Value", "Count"})
	for _, group := range []struct {
		name   string
		counts map[string]int
	}{
		{"status", s.ByStatus},
		{"priority", s.ByPriority},
		{"category", s.ByCategory},
	} {
		for _, k := range sortedKeys(group.counts) {
			t.AppendRow(table.Row{group.name, k, group.counts[k]})
		}
	}
	t.AppendFooter(table.Row{"", "Total", s.Total})
	return t.Render()
}

func formatHealthSummaryHuman(checks []*health.ProjectCheck) string {
	if len(checks) == 0 {
		return "No health checks recorded"
	}
	t := newTable(table.Row{"Project", "Status", "Score", "Failing", "Checked"})
	for _, c := range checks {
		t.AppendRow(table.Row{c.ProjectName, statusIcon(string(c.Status)) + " " + string(c.Status), c.Score, len(c.Failing()), datePart(c.CreatedAt)})
	}
	return t.Render()
}

func formatReleasesHuman(releases []*release.Release) string {
	if len(releases) == 0 {
		return "No releases found"
	}
	t := newTable(table.Row{"Version", "Type", "Tag", "Published", "Created"})
	for _, r := range releases {
		published := "-"
		if r.FilePath != nil {
			published = *r.FilePath
		}
		t.AppendRow(table.Row{r.Version, r.Type, deref(r.GitTag), published, datePart(r.CreatedAt)})
	}
	return t.Render()
}

func formatExportHuman(r *release.ExportResult) string {
	s := fmt.Sprintf("Exported %d release(s) to %s", r.ReleasesExported, r.FilePath)
	if r.OutsideProjectDir {
		s += "\n⚠ target is outside the project directory"
	}
	return s
}

func formatExecutionsHuman(execs []*runbook.Execution) string {
	if len(execs) == 0 {
		return "No runbook executions found"
	}
	t := newTable(table.Row{"ID", "Runbook", "Status", "Steps", "Started", "Error"})
	for _, e := range execs {
		t.AppendRow(table.Row{shortID(e.ID), e.RunbookName, e.Status, fmt.Sprintf("%d/%d", e.StepsCompleted, e.TotalSteps), datePart(e.StartedAt), truncate(deref(e.Error), 40)})
	}
	return t.Render()
}

func formatSnapshotsHuman(snaps []backup.Snapshot) string {
	if len(snaps) == 0 {
		return "No backups found"
	}
	t := newTable(table.Row{"Name", "Created", "Size"})
	for _, s := range snaps {
		t.AppendRow(table.Row{s.Name, s.CreatedAt.Format("2006-01-02 15:04:05"), formatBytes(s.Size)})
	}
	return t.Render()
}

func components(skills, mcp, hooks, agents bool) string {
	var parts []string
	for _, c := range []struct {
		on   bool
		name string
	}{{skills, "skills"}, {mcp, "mcp"}, {hooks, "hooks"}, {agents, "agents"}} {
		if c.on {
			parts = append(parts, c.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func statusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warning":
		return "⚠"
	case "fail":
		return "✗"
	default:
		return "?"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func datePart(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i > 0 {
		return ts[:i]
	}
	return ts
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte size in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
