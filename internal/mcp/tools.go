package mcp

import "pluginops/internal/envelope"

// Tool represents an ops tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler is a function that handles a tool call and returns an envelope response.
type ToolHandler func(params map[string]interface{}) (*envelope.Response, error)

var (
	projectTypes     = []string{"skill-only", "mcp", "full"}
	healthStatuses   = []string{"pass", "warning", "fail"}
	issueStatuses    = []string{"open", "in_progress", "closed"}
	issuePriorities  = []string{"critical", "high", "medium", "low"}
	issueCategories  = []string{"bug", "dependency", "quality", "structure", "feature", "tech-debt"}
	issueSources     = []string{"manual", "health-scan"}
	releaseTypes     = []string{"major", "minor", "patch"}
	runbookStatuses  = []string{"running", "completed", "failed"}
	terminalStatuses = []string{"completed", "failed"}
)

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func enumProp(description string, values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values, "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func flagProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": []string{"boolean", "integer"}, "description": description}
}

func idSchema(description string) map[string]interface{} {
	return objectSchema(map[string]interface{}{"id": stringProp(description)}, "id")
}

// GetToolDefinitions returns all tool definitions
func (s *MCPServer) GetToolDefinitions() []Tool {
	return []Tool{
		// Projects
		{
			Name:        "ops_project_create",
			Description: "Register a plugin project for maintenance tracking",
			InputSchema: objectSchema(map[string]interface{}{
				"name":        stringProp("Project name"),
				"type":        enumProp("Project type (default skill-only)", projectTypes),
				"path":        stringProp("Filesystem path of the project"),
				"version":     stringProp("Current version"),
				"description": stringProp("Short description"),
				"has_skills":  flagProp("Project ships skills"),
				"has_mcp":     flagProp("Project ships an MCP server"),
				"has_hooks":   flagProp("Project ships hooks"),
				"has_agents":  flagProp("Project ships agents"),
				"metadata":    map[string]interface{}{"type": "object", "description": "Free-form metadata"},
			}, "name"),
		},
		{
			Name:        "ops_project_get",
			Description: "Get a registered project by ID",
			InputSchema: idSchema("Project ID"),
		},
		{
			Name:        "ops_project_list",
			Description: "List all registered plugin projects",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "ops_project_update",
			Description: "Update project details",
			InputSchema: objectSchema(map[string]interface{}{
				"id":          stringProp("Project ID"),
				"name":        stringProp("Project name"),
				"type":        enumProp("Project type", projectTypes),
				"path":        stringProp("Filesystem path of the project"),
				"version":     stringProp("Current version"),
				"description": stringProp("Short description"),
				"has_skills":  flagProp("Project ships skills"),
				"has_mcp":     flagProp("Project ships an MCP server"),
				"has_hooks":   flagProp("Project ships hooks"),
				"has_agents":  flagProp("Project ships agents"),
				"metadata": map[string]interface{}{
					"type":        []string{"object", "string"},
					"description": "Metadata object, or a JSON string of one",
				},
			}, "id"),
		},
		{
			Name:        "ops_project_delete",
			Description: "Delete a project and all cascading data (health checks, issues, releases, runbooks)",
			InputSchema: idSchema("Project ID"),
		},
		{
			Name:        "ops_project_detect",
			Description: "Scan a project path to detect components (skills, MCP, hooks, agents)",
			InputSchema: objectSchema(map[string]interface{}{
				"path": stringProp("Directory to scan, relative to the project directory (default: the project directory)"),
			}),
		},

		// Health
		{
			Name:        "ops_health_create",
			Description: "Record a health check snapshot for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
				"status":     enumProp("Overall status (default pass)", healthStatuses),
				"score":      intProp("Score from 0 to 100 (default 100)"),
				"checks": map[string]interface{}{
					"type":        "array",
					"description": "Individual check results",
					"items": objectSchema(map[string]interface{}{
						"name":    stringProp("Check name"),
						"status":  stringProp("Check status (pass/warning/fail)"),
						"message": stringProp("Result message"),
						"details": stringProp("Additional details"),
					}, "name", "status", "message"),
				},
				"summary": stringProp("Summary of the check"),
			}, "project_id"),
		},
		{
			Name:        "ops_health_get",
			Description: "Get a health check by ID",
			InputSchema: idSchema("Health check ID"),
		},
		{
			Name:        "ops_health_list",
			Description: "List health check history for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
			}, "project_id"),
		},
		{
			Name:        "ops_health_latest",
			Description: "Get the most recent health check for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
			}, "project_id"),
		},

		// Issues
		{
			Name:        "ops_issue_create",
			Description: "File a new issue for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id":      stringProp("Project ID"),
				"health_check_id": stringProp("Health check that surfaced the issue"),
				"title":           stringProp("Issue title"),
				"description":     stringProp("Issue description"),
				"priority":        enumProp("Priority (default medium)", issuePriorities),
				"category":        enumProp("Category (default bug)", issueCategories),
				"source":          enumProp("Source (default manual)", issueSources),
			}, "project_id", "title"),
		},
		{
			Name:        "ops_issue_get",
			Description: "Get an issue by ID",
			InputSchema: idSchema("Issue ID"),
		},
		{
			Name:        "ops_issue_list",
			Description: "List issues with optional filters",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Filter by project"),
				"status":     enumProp("Filter by status", issueStatuses),
				"priority":   enumProp("Filter by priority", issuePriorities),
				"category":   enumProp("Filter by category", issueCategories),
			}),
		},
		{
			Name:        "ops_issue_update",
			Description: "Update issue fields",
			InputSchema: objectSchema(map[string]interface{}{
				"id":              stringProp("Issue ID"),
				"health_check_id": stringProp("Health check that surfaced the issue"),
				"title":           stringProp("Issue title"),
				"description":     stringProp("Issue description"),
				"status":          enumProp("Status", issueStatuses),
				"priority":        enumProp("Priority", issuePriorities),
				"category":        enumProp("Category", issueCategories),
				"source":          enumProp("Source", issueSources),
				"resolution":      stringProp("Resolution note"),
			}, "id"),
		},
		{
			Name:        "ops_issue_close",
			Description: "Close an issue with a resolution",
			InputSchema: objectSchema(map[string]interface{}{
				"id":         stringProp("Issue ID"),
				"resolution": stringProp("How the issue was resolved"),
			}, "id", "resolution"),
		},
		{
			Name:        "ops_issue_delete",
			Description: "Delete an issue",
			InputSchema: idSchema("Issue ID"),
		},
		{
			Name:        "ops_issue_stats",
			Description: "Get issue counts by status, priority, and category",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Restrict counts to one project"),
			}),
		},

		// Releases
		{
			Name:        "ops_release_create",
			Description: "Record a new release for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
				"version":    stringProp("Released version"),
				"type":       enumProp("Release type (default patch)", releaseTypes),
				"changelog":  stringProp("Changelog text for this release"),
				"files_bumped": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Files whose version was bumped",
				},
				"git_tag":    stringProp("Git tag"),
				"commit_sha": stringProp("Commit SHA"),
			}, "project_id", "version"),
		},
		{
			Name:        "ops_release_get",
			Description: "Get a release by ID",
			InputSchema: idSchema("Release ID"),
		},
		{
			Name:        "ops_release_list",
			Description: "List releases for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
			}, "project_id"),
		},
		{
			Name:        "ops_release_latest",
			Description: "Get the most recent release for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id": stringProp("Project ID"),
			}, "project_id"),
		},
		{
			Name:        "ops_release_update",
			Description: "Update release git_tag and commit_sha after tagging",
			InputSchema: objectSchema(map[string]interface{}{
				"id":         stringProp("Release ID"),
				"git_tag":    stringProp("Git tag"),
				"commit_sha": stringProp("Commit SHA"),
			}, "id"),
		},
		{
			Name:        "ops_release_export",
			Description: "Write a project's releases to a Markdown changelog and stamp them as published",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id":  stringProp("Project ID"),
				"target_path": stringProp("Changelog path, relative to the project directory (default CHANGELOG.md)"),
				"overwrite": map[string]interface{}{
					"type":        "boolean",
					"default":     false,
					"description": "Replace an existing file",
				},
			}, "project_id"),
		},

		// Runbooks
		{
			Name:        "ops_runbook_start",
			Description: "Start a runbook execution for a project",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id":   stringProp("Project ID"),
				"runbook_name": stringProp("Runbook name"),
				"total_steps":  intProp("Number of steps in the runbook"),
			}, "project_id", "runbook_name"),
		},
		{
			Name:        "ops_runbook_get",
			Description: "Get a runbook execution by ID",
			InputSchema: idSchema("Execution ID"),
		},
		{
			Name:        "ops_runbook_list",
			Description: "List runbook executions with optional filters",
			InputSchema: objectSchema(map[string]interface{}{
				"project_id":   stringProp("Filter by project"),
				"status":       enumProp("Filter by status", runbookStatuses),
				"runbook_name": stringProp("Filter by runbook name"),
			}),
		},
		{
			Name:        "ops_runbook_step",
			Description: "Log a completed step in a runbook execution",
			InputSchema: objectSchema(map[string]interface{}{
				"id":          stringProp("Execution ID"),
				"name":        stringProp("Step name"),
				"status":      stringProp("Step status (pass/fail/skip)"),
				"message":     stringProp("Step output"),
				"duration_ms": intProp("Step duration in milliseconds"),
			}, "id", "name", "status"),
		},
		{
			Name:        "ops_runbook_complete",
			Description: "Mark a runbook execution as completed or failed",
			InputSchema: objectSchema(map[string]interface{}{
				"id":     stringProp("Execution ID"),
				"status": enumProp("Final status", terminalStatuses),
				"error":  stringProp("Error message for a failed run"),
			}, "id", "status"),
		},

		// Templates
		{
			Name:        "ops_template_list",
			Description: "List the built-in health-check templates",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "ops_template_get",
			Description: "Get a health-check template by category, or the one matching a project's type",
			InputSchema: objectSchema(map[string]interface{}{
				"category":   enumProp("Template category", []string{"skill-only", "mcp-plugin", "full-plugin"}),
				"project_id": stringProp("Pick the template for this project's type"),
			}),
		},
	}
}

// RegisterTools registers all tool handlers
func (s *MCPServer) RegisterTools() {
	s.tools["ops_project_create"] = s.toolProjectCreate
	s.tools["ops_project_get"] = s.toolProjectGet
	s.tools["ops_project_list"] = s.toolProjectList
	s.tools["ops_project_update"] = s.toolProjectUpdate
	s.tools["ops_project_delete"] = s.toolProjectDelete
	s.tools["ops_project_detect"] = s.toolProjectDetect

	s.tools["ops_health_create"] = s.toolHealthCreate
	s.tools["ops_health_get"] = s.toolHealthGet
	s.tools["ops_health_list"] = s.toolHealthList
	s.tools["ops_health_latest"] = s.toolHealthLatest

	s.tools["ops_issue_create"] = s.toolIssueCreate
	s.tools["ops_issue_get"] = s.toolIssueGet
	s.tools["ops_issue_list"] = s.toolIssueList
	s.tools["ops_issue_update"] = s.toolIssueUpdate
	s.tools["ops_issue_close"] = s.toolIssueClose
	s.tools["ops_issue_delete"] = s.toolIssueDelete
	s.tools["ops_issue_stats"] = s.toolIssueStats

	s.tools["ops_release_create"] = s.toolReleaseCreate
	s.tools["ops_release_get"] = s.toolReleaseGet
	s.tools["ops_release_list"] = s.toolReleaseList
	s.tools["ops_release_latest"] = s.toolReleaseLatest
	s.tools["ops_release_update"] = s.toolReleaseUpdate
	s.tools["ops_release_export"] = s.toolReleaseExport

	s.tools["ops_runbook_start"] = s.toolRunbookStart
	s.tools["ops_runbook_get"] = s.toolRunbookGet
	s.tools["ops_runbook_list"] = s.toolRunbookList
	s.tools["ops_runbook_step"] = s.toolRunbookStep
	s.tools["ops_runbook_complete"] = s.toolRunbookComplete

	s.tools["ops_template_list"] = s.toolTemplateList
	s.tools["ops_template_get"] = s.toolTemplateGet
}
