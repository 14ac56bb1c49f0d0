package mcp

import (
	"pluginops/internal/envelope"
	opserrors "pluginops/internal/errors"
	"pluginops/internal/templates"
)

func (s *MCPServer) toolTemplateList(params map[string]interface{}) (*envelope.Response, error) {
	summaries := s.templates.List()
	return envelope.List(summaries, len(summaries)), nil
}

func (s *MCPServer) toolTemplateGet(params map[string]interface{}) (*envelope.Response, error) {
	category, err := stringParam(params, "category")
	if err != nil {
		return nil, err
	}
	projectID, err := stringParam(params, "project_id")
	if err != nil {
		return nil, err
	}

	var t *templates.Template
	switch {
	case category != "":
		t = s.templates.Get(category)
		if t == nil {
			return nil, notFound("template", category)
		}
	case projectID != "":
		p, err := s.projects.Get(projectID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, notFound("project", projectID)
		}
		t = s.templates.ForProjectType(p.Type)
		if t == nil {
			return nil, notFound("template", string(p.Type))
		}
	default:
		return nil, opserrors.NewInvalidParameterError("category", "category or project_id required")
	}

	b := envelope.New().Data(t)
	if projectID != "" {
		b.Suggest("ops_health_create", map[string]interface{}{"project_id": projectID},
			"Record the results of this checklist")
	}
	return b.Build(), nil
}
