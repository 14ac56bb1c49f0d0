package health

import (
	"testing"

	"pluginops/internal/project"
	"pluginops/internal/storage"
	"pluginops/internal/testutil"
)

func setup(t *testing.T) (*Repository, *project.Repository) {
	t.Helper()
	h := testutil.NewHandle(t)
	return NewRepository(h), project.NewRepository(h)
}

func mustProject(t *testing.T, projects *project.Repository, name string) *project.Project {
	t.Helper()
	p, err := projects.Create(project.CreateInput{Name: name})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func intPtr(i int) *int { return &i }

func TestCreateDefaults(t *testing.T) {
	repo, projects := setup(t)
	p := mustProject(t, projects, "alpha")

	c, err := repo.Create(CreateInput{ProjectID: p.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Status != StatusPass || c.Score != 100 {
		t.Errorf("status=%s score=%d, want pass/100", c.Status, c.Score)
	}
	if c.Checks == nil || len(c.Checks) != 0 {
		t.Errorf("Checks = %v, want empty", c.Checks)
	}
	if c.PublishedAt != nil || c.FilePath != nil {
		t.Error("export stamps should be unset on create")
	}
}

func TestCreateWithChecks(t *testing.T) {
	repo, projects := setup(t)
	p := mustProject(t, projects, "alpha")

	c, err := repo.Create(CreateInput{
		ProjectID: p.ID,
		Status:    StatusWarning,
		Score:     intPtr(0),
		Summary:   "2 of 3 passed",
		Checks: []CheckResult{
			{Name: "readme", Status: "pass", Message: "ok"},
			{Name: "tests", Status: "fail", Message: "none", Details: "no test dir"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(c.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.Score != 0 {
		t.Errorf("explicit zero score lost: %d", got.Score)
	}
	if len(got.Checks) != 2 || got.Checks[1].Details != "no test dir" {
		t.Errorf("Checks = %+v", got.Checks)
	}
	failing := got.Failing()
	if len(failing) != 1 || failing[0].Name != "tests" {
		t.Errorf("Failing() = %+v", failing)
	}
}

func TestCreateConstraints(t *testing.T) {
	repo, projects := setup(t)
	p := mustProject(t, projects, "alpha")

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"unknown project", CreateInput{ProjectID: "nope"}},
		{"bad status", CreateInput{ProjectID: p.ID, Status: "meh"}},
		{"score above range", CreateInput{ProjectID: p.ID, Score: intPtr(101)}},
		{"negative score", CreateInput{ProjectID: p.ID, Score: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(tt.in)
			if !storage.IsConstraintViolation(err) {
				t.Errorf("expected constraint violation, got %v", err)
			}
		})
	}
}

func TestListAndLatest(t *testing.T) {
	repo, projects := setup(t)
	p := mustProject(t, projects, "alpha")
	other := mustProject(t, projects, "beta")

	if c, err := repo.Latest(p.ID); err != nil || c != nil {
		t.Fatalf("Latest with no checks = %v, %v", c, err)
	}

	var last *Check
	for i := 0; i < 3; i++ {
		c, err := repo.Create(CreateInput{ProjectID: p.ID, Score: intPtr(50 + i)})
		if err != nil {
			t.Fatal(err)
		}
		last = c
	}
	if _, err := repo.Create(CreateInput{ProjectID: other.ID}); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt < list[i].CreatedAt {
			t.Errorf("list not newest-first at %d", i)
		}
	}

	latest, err := repo.Latest(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != last.ID {
		t.Errorf("Latest = %+v, want %s", latest, last.ID)
	}
}

func TestLatestPerProject(t *testing.T) {
	repo, projects := setup(t)
	a := mustProject(t, projects, "alpha")
	b := mustProject(t, projects, "beta")
	mustProject(t, projects, "gamma")

	if _, err := repo.Create(CreateInput{ProjectID: a.ID, Score: intPtr(10)}); err != nil {
		t.Fatal(err)
	}
	newest, err := repo.Create(CreateInput{ProjectID: a.ID, Score: intPtr(90)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(CreateInput{ProjectID: b.ID, Status: StatusFail, Score: intPtr(20)}); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.LatestPerProject()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2 (gamma has no checks)", len(rows))
	}
	if rows[0].ProjectName != "alpha" || rows[0].ID != newest.ID {
		t.Errorf("rows[0] = %s %s", rows[0].ProjectName, rows[0].ID)
	}
	if rows[1].ProjectName != "beta" || rows[1].Status != StatusFail {
		t.Errorf("rows[1] = %s %s", rows[1].ProjectName, rows[1].Status)
	}
}

func TestCascadeOnProjectDelete(t *testing.T) {
	repo, projects := setup(t)
	p := mustProject(t, projects, "alpha")

	c, err := repo.Create(CreateInput{ProjectID: p.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := projects.Delete(p.ID); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("health check survived project delete")
	}
}
