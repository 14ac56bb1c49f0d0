package mcp

import (
	"pluginops/internal/issue"
)

// Resource represents a static resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceHandler produces the current contents of a resource.
type ResourceHandler func() (interface{}, error)

// Resource URIs.
const (
	ResourceProjects  = "ops://projects"
	ResourceHealth    = "ops://health"
	ResourceIssues    = "ops://issues"
	ResourceTemplates = "ops://templates"
)

// GetResourceDefinitions returns the read-only aggregate views.
func (s *MCPServer) GetResourceDefinitions() []Resource {
	return []Resource{
		{
			URI:         ResourceProjects,
			Name:        "Projects",
			Description: "All registered plugin projects",
			MimeType:    "application/json",
		},
		{
			URI:         ResourceHealth,
			Name:        "Health Overview",
			Description: "Latest health check for each project",
			MimeType:    "application/json",
		},
		{
			URI:         ResourceIssues,
			Name:        "Open Issues",
			Description: "Open issues across all projects",
			MimeType:    "application/json",
		},
		{
			URI:         ResourceTemplates,
			Name:        "Checklist Templates",
			Description: "Built-in health-check templates",
			MimeType:    "application/json",
		},
	}
}

// RegisterResources wires every resource URI to its handler.
func (s *MCPServer) RegisterResources() {
	s.resources[ResourceProjects] = func() (interface{}, error) {
		return s.projects.List()
	}
	s.resources[ResourceHealth] = func() (interface{}, error) {
		return s.checks.LatestPerProject()
	}
	s.resources[ResourceIssues] = func() (interface{}, error) {
		return s.issues.List(issue.Filter{Status: issue.StatusOpen})
	}
	s.resources[ResourceTemplates] = func() (interface{}, error) {
		return s.templates.List(), nil
	}
}
