package mcp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pluginops/internal/health"
	"pluginops/internal/issue"
	"pluginops/internal/project"
	"pluginops/internal/release"
	"pluginops/internal/runbook"
	"pluginops/internal/testutil"
)

func createProject(t *testing.T, server *MCPServer, args map[string]interface{}) *project.Project {
	t.Helper()
	var p project.Project
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_project_create", args)), &p)
	return &p
}

func errorCode(resp *toolResponse) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

func TestProjectToolsLifecycle(t *testing.T) {
	server := newTestMCPServer(t, "")

	p := createProject(t, server, map[string]interface{}{
		"name":       "alpha",
		"has_skills": 1,
		"metadata":   map[string]interface{}{"owner": "ops"},
	})
	if p.Type != project.TypeSkillOnly {
		t.Errorf("Expected default type skill-only, got %s", p.Type)
	}
	if !p.HasSkills || p.HasMCP {
		t.Errorf("Unexpected flags: %+v", p)
	}

	var updated project.Project
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_project_update", map[string]interface{}{
		"id":         p.ID,
		"type":       "mcp",
		"has_mcp":    true,
		"metadata":   `{"owner":"platform"}`,
		"updated_at": "ignored",
	})), &updated)
	if updated.Type != project.TypeMCP || !updated.HasMCP {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.Metadata["owner"] != "platform" {
		t.Errorf("Metadata string should be decoded, got %v", updated.Metadata)
	}
	if updated.CreatedAt != p.CreatedAt {
		t.Error("created_at should not change on update")
	}

	list := mustSucceed(t, callTool(t, server, "ops_project_list", nil))
	if list.Meta == nil || list.Meta.Count == nil || *list.Meta.Count != 1 {
		t.Errorf("Expected count 1, got %+v", list.Meta)
	}

	del := mustSucceed(t, callTool(t, server, "ops_project_delete", map[string]interface{}{"id": p.ID}))
	var deleted struct {
		Deleted bool `json:"deleted"`
	}
	decodeData(t, del, &deleted)
	if !deleted.Deleted {
		t.Error("Expected deleted=true")
	}

	again := callTool(t, server, "ops_project_delete", map[string]interface{}{"id": p.ID})
	if errorCode(again) != "NOT_FOUND" || again.Error.Message != "Project not found" {
		t.Errorf("Expected Project not found, got %+v", again.Error)
	}
}

func TestProjectToolsValidation(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"missing name", "ops_project_create", map[string]interface{}{}},
		{"empty name", "ops_project_create", map[string]interface{}{"name": ""}},
		{"bad type", "ops_project_create", map[string]interface{}{"name": "x", "type": "plugin"}},
		{"bad flag", "ops_project_create", map[string]interface{}{"name": "x", "has_mcp": 2}},
		{"bad metadata", "ops_project_update", map[string]interface{}{"id": p.ID, "metadata": "not json"}},
		{"unknown field", "ops_project_update", map[string]interface{}{"id": p.ID, "id_override": "x"}},
		{"immutable field", "ops_project_update", map[string]interface{}{"id": p.ID, "created_at": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, server, tt.tool, tt.args)
			if errorCode(resp) != "INVALID_PARAMETER" {
				t.Errorf("Expected INVALID_PARAMETER, got %+v", resp.Error)
			}
		})
	}
}

func TestProjectDetectTool(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"skills/":      "",
		"src/index.ts": "export {}",
		"package.json": `{"name":"demo-plugin","version":"1.2.3","description":"Demo"}`,
	})
	server := newTestMCPServer(t, dir)

	resp := mustSucceed(t, callTool(t, server, "ops_project_detect", nil))
	var detected struct {
		Path string       `json:"path"`
		Type project.Type `json:"type"`
		Name *string      `json:"name"`
	}
	decodeData(t, resp, &detected)
	if detected.Type != project.TypeFull {
		t.Errorf("Expected full, got %s", detected.Type)
	}
	if detected.Name == nil || *detected.Name != "demo-plugin" {
		t.Errorf("Expected name demo-plugin, got %v", detected.Name)
	}
	if detected.Path != dir {
		t.Errorf("Expected path %s, got %s", dir, detected.Path)
	}

	if len(resp.SuggestedNextCalls) != 1 || resp.SuggestedNextCalls[0].Tool != "ops_project_create" {
		t.Fatalf("Expected ops_project_create suggestion, got %+v", resp.SuggestedNextCalls)
	}
	params := resp.SuggestedNextCalls[0].Params
	if params["name"] != "demo-plugin" || params["version"] != "1.2.3" || params["type"] != "full" {
		t.Errorf("Unexpected suggestion params: %v", params)
	}

	missing := mustSucceed(t, callTool(t, server, "ops_project_detect", map[string]interface{}{"path": "nope"}))
	if len(missing.Warnings) != 1 || len(missing.SuggestedNextCalls) != 0 {
		t.Errorf("Missing path should warn without suggesting: %+v", missing.Response)
	}
}

func TestHealthTools(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})

	none := callTool(t, server, "ops_health_latest", map[string]interface{}{"project_id": p.ID})
	if errorCode(none) != "NOT_FOUND" || none.Error.Message != "No health checks found" {
		t.Errorf("Expected No health checks found, got %+v", none.Error)
	}

	resp := mustSucceed(t, callTool(t, server, "ops_health_create", map[string]interface{}{
		"project_id": p.ID,
		"status":     "warning",
		"score":      70,
		"checks": []interface{}{
			map[string]interface{}{"name": "readme", "status": "pass", "message": "present"},
			map[string]interface{}{"name": "tests", "status": "fail", "message": "no tests"},
		},
		"summary": "needs tests",
	}))
	var check health.Check
	decodeData(t, resp, &check)
	if check.Score != 70 || len(check.Checks) != 2 {
		t.Errorf("Unexpected check: %+v", check)
	}

	if len(resp.SuggestedNextCalls) != 1 {
		t.Fatalf("Expected one issue suggestion, got %+v", resp.SuggestedNextCalls)
	}
	s := resp.SuggestedNextCalls[0]
	if s.Tool != "ops_issue_create" || s.Params["health_check_id"] != check.ID || s.Params["source"] != "health-scan" {
		t.Errorf("Unexpected suggestion: %+v", s)
	}

	var latest health.Check
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_health_latest", map[string]interface{}{"project_id": p.ID})), &latest)
	if latest.ID != check.ID {
		t.Errorf("Expected latest %s, got %s", check.ID, latest.ID)
	}

	unknown := callTool(t, server, "ops_health_create", map[string]interface{}{"project_id": "missing"})
	if errorCode(unknown) != "CONSTRAINT_VIOLATION" {
		t.Errorf("Expected CONSTRAINT_VIOLATION for unknown project, got %+v", unknown.Error)
	}
	outOfRange := callTool(t, server, "ops_health_create", map[string]interface{}{"project_id": p.ID, "score": 101})
	if errorCode(outOfRange) != "CONSTRAINT_VIOLATION" {
		t.Errorf("Expected CONSTRAINT_VIOLATION for score 101, got %+v", outOfRange.Error)
	}
	badChecks := callTool(t, server, "ops_health_create", map[string]interface{}{
		"project_id": p.ID,
		"checks":     []interface{}{map[string]interface{}{"status": "pass"}},
	})
	if errorCode(badChecks) != "INVALID_PARAMETER" {
		t.Errorf("Expected INVALID_PARAMETER for unnamed check, got %+v", badChecks.Error)
	}
}

func TestIssueTools(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})

	var first issue.Issue
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_issue_create", map[string]interface{}{
		"project_id": p.ID, "title": "crash", "priority": "critical",
	})), &first)
	mustSucceed(t, callTool(t, server, "ops_issue_create", map[string]interface{}{
		"project_id": p.ID, "title": "refactor", "category": "tech-debt",
	}))

	list := mustSucceed(t, callTool(t, server, "ops_issue_list", map[string]interface{}{"priority": "critical"}))
	if *list.Meta.Count != 1 || list.Meta.Filters["priority"] != "critical" {
		t.Errorf("Unexpected list meta: %+v", list.Meta)
	}

	bad := callTool(t, server, "ops_issue_list", map[string]interface{}{"status": "done"})
	if errorCode(bad) != "INVALID_PARAMETER" {
		t.Errorf("Expected INVALID_PARAMETER for bad status, got %+v", bad.Error)
	}

	var updated issue.Issue
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_issue_update", map[string]interface{}{
		"id": first.ID, "status": "in_progress",
	})), &updated)
	if updated.Status != issue.StatusInProgress {
		t.Errorf("Expected in_progress, got %s", updated.Status)
	}

	var closed issue.Issue
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_issue_close", map[string]interface{}{
		"id": first.ID, "resolution": "fixed",
	})), &closed)
	if closed.Status != issue.StatusClosed || closed.Resolution == nil || *closed.Resolution != "fixed" {
		t.Errorf("Unexpected closed issue: %+v", closed)
	}

	var stats issue.Stats
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_issue_stats", map[string]interface{}{"project_id": p.ID})), &stats)
	if stats.Total != 2 || stats.ByStatus["closed"] != 1 || stats.ByCategory["tech-debt"] != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	missing := callTool(t, server, "ops_issue_close", map[string]interface{}{"id": "missing", "resolution": "x"})
	if errorCode(missing) != "NOT_FOUND" || missing.Error.Message != "Issue not found" {
		t.Errorf("Expected Issue not found, got %+v", missing.Error)
	}
}

func TestReleaseExportTool(t *testing.T) {
	dir := t.TempDir()
	server := newTestMCPServer(t, dir)
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})

	noReleases := callTool(t, server, "ops_release_export", map[string]interface{}{"project_id": p.ID})
	if errorCode(noReleases) != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND without releases, got %+v", noReleases.Error)
	}

	created := mustSucceed(t, callTool(t, server, "ops_release_create", map[string]interface{}{
		"project_id":   p.ID,
		"version":      "1.0.0",
		"changelog":    "First release",
		"files_bumped": []interface{}{"package.json"},
	}))
	var r release.Release
	decodeData(t, created, &r)
	if r.Type != release.TypePatch {
		t.Errorf("Expected default type patch, got %s", r.Type)
	}
	if len(created.SuggestedNextCalls) != 1 || created.SuggestedNextCalls[0].Tool != "ops_release_update" {
		t.Errorf("Untagged release should suggest ops_release_update, got %+v", created.SuggestedNextCalls)
	}

	var result release.ExportResult
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_release_export", map[string]interface{}{"project_id": p.ID})), &result)
	if result.FilePath != "CHANGELOG.md" || result.ReleasesExported != 1 {
		t.Errorf("Unexpected export result: %+v", result)
	}
	data, err := os.ReadFile(filepath.Join(dir, "CHANGELOG.md"))
	if err != nil {
		t.Fatalf("Changelog not written: %v", err)
	}
	if !strings.Contains(string(data), "## [1.0.0]") {
		t.Errorf("Changelog missing release entry:\n%s", data)
	}

	conflict := callTool(t, server, "ops_release_export", map[string]interface{}{"project_id": p.ID})
	if errorCode(conflict) != "CONFLICT" {
		t.Fatalf("Expected CONFLICT, got %+v", conflict.Error)
	}
	if !strings.Contains(conflict.Error.Message, "overwrite=true") {
		t.Errorf("Conflict message should mention overwrite: %s", conflict.Error.Message)
	}
	if conflict.Error.SuggestedFixes == nil {
		t.Error("Conflict should carry a suggested fix")
	}

	mustSucceed(t, callTool(t, server, "ops_release_export", map[string]interface{}{
		"project_id": p.ID, "overwrite": true,
	}))

	var stamped release.Release
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_release_get", map[string]interface{}{"id": r.ID})), &stamped)
	if stamped.FilePath == nil || *stamped.FilePath != "CHANGELOG.md" || stamped.PublishedAt == nil {
		t.Errorf("Release should be stamped: %+v", stamped)
	}

	var tagged release.Release
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_release_update", map[string]interface{}{
		"id": r.ID, "git_tag": "v1.0.0", "commit_sha": "abcdef1234567",
	})), &tagged)
	if tagged.GitTag == nil || *tagged.GitTag != "v1.0.0" {
		t.Errorf("Tag not recorded: %+v", tagged)
	}
}

func TestReleaseExportOutsideProjectWarns(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})
	mustSucceed(t, callTool(t, server, "ops_release_create", map[string]interface{}{"project_id": p.ID, "version": "0.1.0"}))

	target := filepath.Join(t.TempDir(), "CHANGES.md")
	resp := mustSucceed(t, callTool(t, server, "ops_release_export", map[string]interface{}{
		"project_id": p.ID, "target_path": target,
	}))
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != "OUTSIDE_PROJECT_DIR" {
		t.Errorf("Expected OUTSIDE_PROJECT_DIR warning, got %+v", resp.Warnings)
	}
}

func TestRunbookTools(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha"})

	var exec runbook.Execution
	decodeData(t, mustSucceed(t, callTool(t, server, "ops_runbook_start", map[string]interface{}{
		"project_id": p.ID, "runbook_name": "release", "total_steps": 2,
	})), &exec)

	first := mustSucceed(t, callTool(t, server, "ops_runbook_step", map[string]interface{}{
		"id": exec.ID, "name": "bump", "status": "pass", "message": "ok", "duration_ms": 12,
	}))
	if len(first.SuggestedNextCalls) != 0 {
		t.Errorf("No suggestion expected before the last step: %+v", first.SuggestedNextCalls)
	}

	last := mustSucceed(t, callTool(t, server, "ops_runbook_step", map[string]interface{}{
		"id": exec.ID, "name": "tag", "status": "pass", "message": "ok",
	}))
	decodeData(t, last, &exec)
	if exec.StepsCompleted != 2 || len(exec.Log) != 2 || exec.Log[0].Name != "bump" {
		t.Errorf("Unexpected execution: %+v", exec)
	}
	if exec.Log[0].DurationMs == nil || *exec.Log[0].DurationMs != 12 {
		t.Errorf("Duration not kept: %+v", exec.Log[0])
	}
	if len(last.SuggestedNextCalls) != 1 || last.SuggestedNextCalls[0].Tool != "ops_runbook_complete" {
		t.Errorf("Expected ops_runbook_complete suggestion, got %+v", last.SuggestedNextCalls)
	}

	bad := callTool(t, server, "ops_runbook_complete", map[string]interface{}{"id": exec.ID, "status": "running"})
	if errorCode(bad) != "INVALID_PARAMETER" {
		t.Errorf("Expected INVALID_PARAMETER for running, got %+v", bad.Error)
	}

	decodeData(t, mustSucceed(t, callTool(t, server, "ops_runbook_complete", map[string]interface{}{
		"id": exec.ID, "status": "completed",
	})), &exec)
	if exec.Status != runbook.StatusCompleted || exec.CompletedAt == nil {
		t.Errorf("Execution not completed: %+v", exec)
	}

	list := mustSucceed(t, callTool(t, server, "ops_runbook_list", map[string]interface{}{"status": "completed"}))
	if *list.Meta.Count != 1 {
		t.Errorf("Expected 1 completed execution, got %d", *list.Meta.Count)
	}

	missing := callTool(t, server, "ops_runbook_step", map[string]interface{}{"id": "missing", "name": "x", "status": "pass"})
	if errorCode(missing) != "NOT_FOUND" || missing.Error.Message != "Execution not found" {
		t.Errorf("Expected Execution not found, got %+v", missing.Error)
	}
}

func TestTemplateTools(t *testing.T) {
	server := newTestMCPServer(t, "")
	p := createProject(t, server, map[string]interface{}{"name": "alpha", "type": "full"})

	list := mustSucceed(t, callTool(t, server, "ops_template_list", nil))
	if *list.Meta.Count != 3 {
		t.Errorf("Expected 3 templates, got %d", *list.Meta.Count)
	}

	byProject := mustSucceed(t, callTool(t, server, "ops_template_get", map[string]interface{}{"project_id": p.ID}))
	var tmpl struct {
		Category string `json:"category"`
	}
	decodeData(t, byProject, &tmpl)
	if tmpl.Category != "full-plugin" {
		t.Errorf("Expected full-plugin, got %s", tmpl.Category)
	}

	if resp := callTool(t, server, "ops_template_get", nil); errorCode(resp) != "INVALID_PARAMETER" {
		t.Errorf("Expected INVALID_PARAMETER without selector, got %+v", resp.Error)
	}
	if resp := callTool(t, server, "ops_template_get", map[string]interface{}{"category": "nope"}); errorCode(resp) != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND for unknown category, got %+v", resp.Error)
	}
}
