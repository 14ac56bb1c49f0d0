package mcp

import (
	"os"

	"pluginops/internal/envelope"
	"pluginops/internal/paths"
	"pluginops/internal/project"
)

var projectUpdateFields = []string{
	"name", "type", "path", "version", "description",
	"has_skills", "has_mcp", "has_hooks", "has_agents", "metadata",
}

// detectedProject is the detection result together with the directory scanned.
type detectedProject struct {
	Path string `json:"path"`
	project.DetectionResult
}

func (s *MCPServer) toolProjectCreate(params map[string]interface{}) (*envelope.Response, error) {
	name, err := requireString(params, "name")
	if err != nil {
		return nil, err
	}
	typ, err := enumParam(params, "type", projectTypes...)
	if err != nil {
		return nil, err
	}

	in := project.CreateInput{Name: name, Type: project.Type(typ)}
	if in.Path, err = optionalString(params, "path"); err != nil {
		return nil, err
	}
	if in.Version, err = optionalString(params, "version"); err != nil {
		return nil, err
	}
	if in.Description, err = stringParam(params, "description"); err != nil {
		return nil, err
	}
	for field, dst := range map[string]*bool{
		"has_skills": &in.HasSkills,
		"has_mcp":    &in.HasMCP,
		"has_hooks":  &in.HasHooks,
		"has_agents": &in.HasAgents,
	} {
		if *dst, err = boolParam(params, field); err != nil {
			return nil, err
		}
	}
	if in.Metadata, err = objectParam(params, "metadata"); err != nil {
		return nil, err
	}

	p, err := s.projects.Create(in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Project registered", "id", p.ID, "name", p.Name, "type", string(p.Type))
	return envelope.Operational(p), nil
}

func (s *MCPServer) toolProjectGet(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("project", id)
	}
	return envelope.Operational(p), nil
}

func (s *MCPServer) toolProjectList(params map[string]interface{}) (*envelope.Response, error) {
	projects, err := s.projects.List()
	if err != nil {
		return nil, err
	}
	return envelope.List(projects, len(projects)), nil
}

func (s *MCPServer) toolProjectUpdate(params map[string]interface{}) (*envelope.Response, error) {
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
	if err := rejectUnknown(fields, projectUpdateFields, "updated_at"); err != nil {
		return nil, err
	}

	var patch project.Patch
	if patch.Name, err = optionalString(fields, "name"); err != nil {
		return nil, err
	}
	typ, err := enumParam(fields, "type", projectTypes...)
	if err != nil {
		return nil, err
	}
	if typ != "" {
		t := project.Type(typ)
		patch.Type = &t
	}
	if patch.Path, err = optionalString(fields, "path"); err != nil {
		return nil, err
	}
	if patch.Version, err = optionalString(fields, "version"); err != nil {
		return nil, err
	}
	if patch.Description, err = optionalString(fields, "description"); err != nil {
		return nil, err
	}
	for field, dst := range map[string]**bool{
		"has_skills": &patch.HasSkills,
		"has_mcp":    &patch.HasMCP,
		"has_hooks":  &patch.HasHooks,
		"has_agents": &patch.HasAgents,
	} {
		if *dst, err = optionalBool(fields, field); err != nil {
			return nil, err
		}
	}
	if patch.Metadata, err = objectParam(fields, "metadata"); err != nil {
		return nil, err
	}

	p, err := s.projects.Update(id, patch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("project", id)
	}
	return envelope.Operational(p), nil
}

func (s *MCPServer) toolProjectDelete(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	deleted, err := s.projects.Delete(id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, notFound("project", id)
	}
	s.logger.Info("Project deleted", "id", id)
	return envelope.Operational(map[string]interface{}{"id": id, "deleted": true}), nil
}

func (s *MCPServer) toolProjectDetect(params map[string]interface{}) (*envelope.Response, error) {
	target, err := stringParam(params, "path")
	if err != nil {
		return nil, err
	}
	root := s.projectDir
	if target != "" {
		root = paths.ResolveProjectPath(s.projectDir, target)
	}

	result := project.Detect(root)
	data := detectedProject{Path: root, DetectionResult: result}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return envelope.New().
			Data(data).
			WarningWithCode("PATH_NOT_DIRECTORY", "Nothing detected: "+root+" is not a directory").
			Build(), nil
	}

	in := result.CreateInput(root)

	suggestion := map[string]interface{}{
		"name":       in.Name,
		"type":       string(in.Type),
		"path":       root,
		"has_skills": in.HasSkills,
		"has_mcp":    in.HasMCP,
		"has_hooks":  in.HasHooks,
		"has_agents": in.HasAgents,
	}
	if in.Version != nil {
		suggestion["version"] = *in.Version
	}
	if in.Description != "" {
		suggestion["description"] = in.Description
	}

	return envelope.New().
		Data(data).
		Suggest("ops_project_create", suggestion, "Register the detected project").
		Build(), nil
}
