package mcp

import (
	"pluginops/internal/envelope"
	"pluginops/internal/runbook"
)

func (s *MCPServer) toolRunbookStart(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	name, err := requireString(params, "runbook_name")
	if err != nil {
		return nil, err
	}
	total, err := optionalInt(params, "total_steps")
	if err != nil {
		return nil, err
	}
	totalSteps := 0
	if total != nil {
		totalSteps = *total
	}

	exec, err := s.runbooks.Start(projectID, name, totalSteps)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Runbook started", "id", exec.ID, "project", projectID, "runbook", name)
	return envelope.Operational(exec), nil
}

func (s *MCPServer) toolRunbookGet(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	exec, err := s.runbooks.Get(id)
	if err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, notFound("execution", id)
	}
	return envelope.Operational(exec), nil
}

func (s *MCPServer) toolRunbookList(params map[string]interface{}) (*envelope.Response, error) {
	var f runbook.Filter
	var err error
	if f.ProjectID, err = stringParam(params, "project_id"); err != nil {
		return nil, err
	}
	if f.RunbookName, err = stringParam(params, "runbook_name"); err != nil {
		return nil, err
	}
	status, err := enumParam(params, "status", runbookStatuses...)
	if err != nil {
		return nil, err
	}
	f.Status = runbook.Status(status)

	execs, err := s.runbooks.List(f)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(execs).
		WithCount(len(execs)).
		WithFilters(map[string]string{
			"project_id":   f.ProjectID,
			"status":       status,
			"runbook_name": f.RunbookName,
		}).
		Build(), nil
}

func (s *MCPServer) toolRunbookStep(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	name, err := requireString(params, "name")
	if err != nil {
		return nil, err
	}
	status, err := requireString(params, "status")
	if err != nil {
		return nil, err
	}
	message, err := stringParam(params, "message")
	if err != nil {
		return nil, err
	}
	duration, err := optionalInt(params, "duration_ms")
	if err != nil {
		return nil, err
	}

	step := runbook.StepEntry{Name: name, Status: status, Message: message}
	if duration != nil {
		ms := int64(*duration)
		step.DurationMs = &ms
	}

	exec, err := s.runbooks.LogStep(id, step)
	if err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, notFound("execution", id)
	}

	b := envelope.New().Data(exec)
	if exec.TotalSteps > 0 && exec.StepsCompleted > exec.TotalSteps {
		b.WarningWithCode("STEP_OVERRUN", "More steps logged than the runbook declares")
	}
	if exec.Status == runbook.StatusRunning && exec.TotalSteps > 0 && exec.StepsCompleted == exec.TotalSteps {
		b.Suggest("ops_runbook_complete", map[string]interface{}{"id": exec.ID, "status": "completed"},
			"All declared steps are logged")
	}
	return b.Build(), nil
}

func (s *MCPServer) toolRunbookComplete(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	status, err := enumParam(params, "status", terminalStatuses...)
	if err != nil {
		return nil, err
	}
	errMsg, err := optionalString(params, "error")
	if err != nil {
		return nil, err
	}

	exec, err := s.runbooks.Complete(id, runbook.Status(status), errMsg)
	if err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, notFound("execution", id)
	}
	s.logger.Info("Runbook finished", "id", id, "status", status)
	return envelope.Operational(exec), nil
}
