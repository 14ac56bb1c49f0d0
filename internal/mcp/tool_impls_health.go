package mcp

import (
	"encoding/json"
	"fmt"

	"pluginops/internal/envelope"
	opserrors "pluginops/internal/errors"
	"pluginops/internal/health"
)

// maxIssueSuggestions caps the follow-up calls offered for one failing check.
const maxIssueSuggestions = 5

func (s *MCPServer) toolHealthCreate(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	status, err := enumParam(params, "status", healthStatuses...)
	if err != nil {
		return nil, err
	}

	in := health.CreateInput{ProjectID: projectID, Status: health.Status(status)}
	if in.Score, err = optionalInt(params, "score"); err != nil {
		return nil, err
	}
	if in.Checks, err = checkResults(params); err != nil {
		return nil, err
	}
	if in.Summary, err = stringParam(params, "summary"); err != nil {
		return nil, err
	}

	check, err := s.checks.Create(in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Health check recorded",
		"id", check.ID,
		"project", check.ProjectID,
		"status", string(check.Status),
		"score", check.Score,
	)

	b := envelope.New().Data(check)
	for i, item := range check.Failing() {
		if i == maxIssueSuggestions {
			break
		}
		category := "quality"
		if item.Status == string(health.StatusFail) {
			category = "bug"
		}
		b.Suggest("ops_issue_create", map[string]interface{}{
			"project_id":      check.ProjectID,
			"health_check_id": check.ID,
			"title":           fmt.Sprintf("%s: %s", item.Name, item.Message),
			"category":        category,
			"source":          "health-scan",
		}, fmt.Sprintf("Check %q reported %s", item.Name, item.Status))
	}
	return b.Build(), nil
}

// checkResults decodes the checks array, requiring a name on each item.
func checkResults(params map[string]interface{}) ([]health.CheckResult, error) {
	raw, ok := params["checks"]
	if !ok || raw == nil {
		return nil, nil
	}
	if _, ok := raw.([]interface{}); !ok {
		return nil, opserrors.NewInvalidParameterError("checks", "expected array")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, opserrors.NewInvalidParameterError("checks", err.Error())
	}
	var results []health.CheckResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, opserrors.NewInvalidParameterError("checks", "expected array of {name, status, message, details?}")
	}
	for i, r := range results {
		if r.Name == "" {
			return nil, opserrors.NewInvalidParameterError(fmt.Sprintf("checks[%d].name", i), "required")
		}
	}
	return results, nil
}

func (s *MCPServer) toolHealthGet(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	check, err := s.checks.Get(id)
	if err != nil {
		return nil, err
	}
	if check == nil {
		return nil, notFound("health check", id)
	}
	return envelope.Operational(check), nil
}

func (s *MCPServer) toolHealthList(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	checks, err := s.checks.List(projectID)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(checks).
		WithCount(len(checks)).
		WithFilters(map[string]string{"project_id": projectID}).
		Build(), nil
}

func (s *MCPServer) toolHealthLatest(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	check, err := s.checks.Latest(projectID)
	if err != nil {
		return nil, err
	}
	if check == nil {
		return nil, noneFound("No health checks found", projectID)
	}
	return envelope.Operational(check), nil
}
