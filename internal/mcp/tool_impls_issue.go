package mcp

import (
	"pluginops/internal/envelope"
	"pluginops/internal/issue"
)

var issueUpdateFields = []string{
	"health_check_id", "title", "description", "status",
	"priority", "category", "source", "resolution",
}

func (s *MCPServer) toolIssueCreate(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	title, err := requireString(params, "title")
	if err != nil {
		return nil, err
	}

	in := issue.CreateInput{ProjectID: projectID, Title: title}
	if in.HealthCheckID, err = optionalString(params, "health_check_id"); err != nil {
		return nil, err
	}
	if in.Description, err = stringParam(params, "description"); err != nil {
		return nil, err
	}
	priority, err := enumParam(params, "priority", issuePriorities...)
	if err != nil {
		return nil, err
	}
	category, err := enumParam(params, "category", issueCategories...)
	if err != nil {
		return nil, err
	}
	source, err := enumParam(params, "source", issueSources...)
	if err != nil {
		return nil, err
	}
	in.Priority = issue.Priority(priority)
	in.Category = issue.Category(category)
	in.Source = issue.Source(source)

	created, err := s.issues.Create(in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Issue filed", "id", created.ID, "project", created.ProjectID, "priority", string(created.Priority))
	return envelope.Operational(created), nil
}

func (s *MCPServer) toolIssueGet(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	found, err := s.issues.Get(id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound("issue", id)
	}
	return envelope.Operational(found), nil
}

func (s *MCPServer) toolIssueList(params map[string]interface{}) (*envelope.Response, error) {
	var f issue.Filter
	var err error
	if f.ProjectID, err = stringParam(params, "project_id"); err != nil {
		return nil, err
	}
	status, err := enumParam(params, "status", issueStatuses...)
	if err != nil {
		return nil, err
	}
	priority, err := enumParam(params, "priority", issuePriorities...)
	if err != nil {
		return nil, err
	}
	category, err := enumParam(params, "category", issueCategories...)
	if err != nil {
		return nil, err
	}
	f.Status = issue.Status(status)
	f.Priority = issue.Priority(priority)
	f.Category = issue.Category(category)

	issues, err := s.issues.List(f)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(issues).
		WithCount(len(issues)).
		WithFilters(map[string]string{
			"project_id": f.ProjectID,
			"status":     status,
			"priority":   priority,
			"category":   category,
		}).
		Build(), nil
}

func (s *MCPServer) toolIssueUpdate(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(params))
	for k, v := range params {
		if k != "id" {
			fields[k] = v
		}
	}
	if err := rejectUnknown(fields, issueUpdateFields, "updated_at"); err != nil {
		return nil, err
	}

	var patch issue.Patch
	if patch.HealthCheckID, err = optionalString(fields, "health_check_id"); err != nil {
		return nil, err
	}
	if patch.Title, err = optionalString(fields, "title"); err != nil {
		return nil, err
	}
	if patch.Description, err = optionalString(fields, "description"); err != nil {
		return nil, err
	}
	if patch.Resolution, err = optionalString(fields, "resolution"); err != nil {
		return nil, err
	}
	status, err := enumParam(fields, "status", issueStatuses...)
	if err != nil {
		return nil, err
	}
	priority, err := enumParam(fields, "priority", issuePriorities...)
	if err != nil {
		return nil, err
	}
	category, err := enumParam(fields, "category", issueCategories...)
	if err != nil {
		return nil, err
	}
	source, err := enumParam(fields, "source", issueSources...)
	if err != nil {
		return nil, err
	}
	if status != "" {
		v := issue.Status(status)
		patch.Status = &v
	}
	if priority != "" {
		v := issue.Priority(priority)
		patch.Priority = &v
	}
	if category != "" {
		v := issue.Category(category)
		patch.Category = &v
	}
	if source != "" {
		v := issue.Source(source)
		patch.Source = &v
	}

	updated, err := s.issues.Update(id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, notFound("issue", id)
	}
	return envelope.Operational(updated), nil
}

func (s *MCPServer) toolIssueClose(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	resolution, err := requireString(params, "resolution")
	if err != nil {
		return nil, err
	}
	closed, err := s.issues.Close(id, resolution)
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, notFound("issue", id)
	}
	s.logger.Info("Issue closed", "id", id)
	return envelope.Operational(closed), nil
}

func (s *MCPServer) toolIssueDelete(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	deleted, err := s.issues.Delete(id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, notFound("issue", id)
	}
	return envelope.Operational(map[string]interface{}{"id": id, "deleted": true}), nil
}

func (s *MCPServer) toolIssueStats(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := stringParam(params, "project_id")
	if err != nil {
		return nil, err
	}
	stats, err := s.issues.Stats(projectID)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(stats).
		WithFilters(map[string]string{"project_id": projectID}).
		Build(), nil
}
