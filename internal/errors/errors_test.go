package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewOpsError(t *testing.T) {
	cause := errors.New("underlying error")
	fixes := []FixAction{{Type: RetryWith, Params: map[string]interface{}{"overwrite": true}}}

	err := NewOpsError(Conflict, "file exists", cause, fixes)

	if err.Code != Conflict {
		t.Errorf("Code = %v, want %v", err.Code, Conflict)
	}
	if err.Message != "file exists" {
		t.Errorf("Message = %q, want %q", err.Message, "file exists")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestOpsError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *OpsError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       NewOperationError("insert project", errors.New("disk full")),
			wantParts: []string{"insert project failed", "disk full"},
		},
		{
			name:      "without cause",
			err:       NewResourceNotFoundError("issue", "abc"),
			wantParts: []string{"Issue not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestNotFoundMessages(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"project", "Project not found"},
		{"health check", "Health check not found"},
		{"runbook execution", "Runbook execution not found"},
		{"", "Record not found"},
	}

	for _, tt := range tests {
		if got := NewResourceNotFoundError(tt.kind, "").Error(); got != tt.want {
			t.Errorf("NewResourceNotFoundError(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestOpsError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewConstraintError("insert issue", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	wrapped := fmt.Errorf("tool failed: %w", err)
	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As should find OpsError in chain")
	}
	if got.Code != ConstraintViolation {
		t.Errorf("Code = %v, want %v", got.Code, ConstraintViolation)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if got := CodeOf(NewInvalidParameterError("name", "required")); got != InvalidParameter {
		t.Errorf("CodeOf(invalid) = %v, want %v", got, InvalidParameter)
	}
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError("CHANGELOG.md", "File already exists: CHANGELOG.md", FixAction{Type: RetryWith})

	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("Details type = %T, want map[string]string", err.Details)
	}
	if details["path"] != "CHANGELOG.md" {
		t.Errorf("details path = %q, want CHANGELOG.md", details["path"])
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}
