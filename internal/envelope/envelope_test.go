package envelope

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	opserrors "pluginops/internal/errors"
)

func TestBuilderError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: "INTERNAL_ERROR",
			wantMsg:  "boom",
		},
		{
			name:     "not found",
			err:      opserrors.NewResourceNotFoundError("project", "p1"),
			wantCode: "NOT_FOUND",
			wantMsg:  "Project not found",
		},
		{
			name:     "conflict",
			err:      opserrors.NewConflictError("CHANGELOG.md", "File already exists: CHANGELOG.md"),
			wantCode: "CONFLICT",
			wantMsg:  "File already exists: CHANGELOG.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := New().Data(nil).Error(tt.err).Build()
			if !resp.IsError() {
				t.Fatal("expected IsError() to be true")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
			if resp.Error.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", resp.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestBuilderNilError(t *testing.T) {
	resp := New().Data("ok").Error(nil).Build()
	if resp.IsError() {
		t.Error("nil error should not set the error field")
	}
}

func TestWithFiltersDropsEmpty(t *testing.T) {
	resp := New().WithFilters(map[string]string{"status": "open", "priority": ""}).Build()
	if resp.Meta == nil {
		t.Fatal("expected meta to be set")
	}
	if len(resp.Meta.Filters) != 1 || resp.Meta.Filters["status"] != "open" {
		t.Errorf("Filters = %v, want only status=open", resp.Meta.Filters)
	}

	empty := New().WithFilters(map[string]string{"status": ""}).Build()
	if empty.Meta != nil {
		t.Errorf("Meta = %+v, want nil when no filter applies", empty.Meta)
	}
}

func TestListEnvelopeJSON(t *testing.T) {
	resp := List([]string{"a", "b"}, 2)

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	for _, part := range []string{`"schemaVersion":"1.0"`, `"count":2`, `"data":["a","b"]`} {
		if !strings.Contains(s, part) {
			t.Errorf("json = %s, want to contain %s", s, part)
		}
	}
	if strings.Contains(s, `"error"`) {
		t.Errorf("json = %s, should omit error", s)
	}
}

func TestSuggest(t *testing.T) {
	resp := New().
		Suggest("ops_release_export", map[string]interface{}{"overwrite": true}, "target exists").
		Build()

	if len(resp.SuggestedNextCalls) != 1 {
		t.Fatalf("len(SuggestedNextCalls) = %d, want 1", len(resp.SuggestedNextCalls))
	}
	call := resp.SuggestedNextCalls[0]
	if call.Tool != "ops_release_export" || call.Params["overwrite"] != true {
		t.Errorf("unexpected suggested call: %+v", call)
	}
}
