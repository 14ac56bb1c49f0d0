package mcp

import (
	"pluginops/internal/envelope"
	"pluginops/internal/release"
)

func (s *MCPServer) toolReleaseCreate(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	version, err := requireString(params, "version")
	if err != nil {
		return nil, err
	}
	typ, err := enumParam(params, "type", releaseTypes...)
	if err != nil {
		return nil, err
	}

	in := release.CreateInput{ProjectID: projectID, Version: version, Type: release.Type(typ)}
	if in.Changelog, err = stringParam(params, "changelog"); err != nil {
		return nil, err
	}
	if in.FilesBumped, err = stringSlice(params, "files_bumped"); err != nil {
		return nil, err
	}
	if in.GitTag, err = optionalString(params, "git_tag"); err != nil {
		return nil, err
	}
	if in.CommitSHA, err = optionalString(params, "commit_sha"); err != nil {
		return nil, err
	}

	r, err := s.releases.Create(in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Release recorded", "id", r.ID, "project", r.ProjectID, "version", r.Version)

	b := envelope.New().Data(r)
	if r.GitTag == nil {
		b.Suggest("ops_release_update", map[string]interface{}{"id": r.ID, "git_tag": "v" + r.Version},
			"Record the git tag once the release is tagged")
	}
	return b.Build(), nil
}

func (s *MCPServer) toolReleaseGet(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	r, err := s.releases.Get(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("release", id)
	}
	return envelope.Operational(r), nil
}

func (s *MCPServer) toolReleaseList(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	releases, err := s.releases.List(projectID)
	if err != nil {
		return nil, err
	}
	return envelope.New().
		Data(releases).
		WithCount(len(releases)).
		WithFilters(map[string]string{"project_id": projectID}).
		Build(), nil
}

func (s *MCPServer) toolReleaseLatest(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	r, err := s.releases.Latest(projectID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, noneFound("No releases found", projectID)
	}
	return envelope.Operational(r), nil
}

func (s *MCPServer) toolReleaseUpdate(params map[string]interface{}) (*envelope.Response, error) {
	id, err := requireString(params, "id")
	if err != nil {
		return nil, err
	}
	gitTag, err := optionalString(params, "git_tag")
	if err != nil {
		return nil, err
	}
	commitSHA, err := optionalString(params, "commit_sha")
	if err != nil {
		return nil, err
	}

	r, err := s.releases.Update(id, gitTag, commitSHA)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("release", id)
	}
	return envelope.Operational(r), nil
}

func (s *MCPServer) toolReleaseExport(params map[string]interface{}) (*envelope.Response, error) {
	projectID, err := requireString(params, "project_id")
	if err != nil {
		return nil, err
	}
	target, err := stringParam(params, "target_path")
	if err != nil {
		return nil, err
	}
	overwrite, err := boolParam(params, "overwrite")
	if err != nil {
		return nil, err
	}

	result, err := s.exporter.Export(projectID, target, overwrite)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Changelog exported",
		"project", projectID,
		"path", result.FilePath,
		"releases", result.ReleasesExported,
	)

	b := envelope.New().Data(result)
	if result.OutsideProjectDir {
		b.WarningWithCode("OUTSIDE_PROJECT_DIR", "Changelog written outside the project directory: "+result.FilePath)
	}
	return b.Build(), nil
}
