package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	opserrors "pluginops/internal/errors"
	"pluginops/internal/release"
	"pluginops/internal/storage"
)

// classifyError maps a tool failure onto a stable error code.
func classifyError(op string, err error) *opserrors.OpsError {
	if opsErr, ok := opserrors.As(err); ok {
		return opsErr
	}

	var exists *release.FileExistsError
	if errors.As(err, &exists) {
		return opserrors.NewConflictError(exists.Path, exists.Error(), opserrors.FixAction{
			Type:        opserrors.RetryWith,
			Tool:        "ops_release_export",
			Params:      map[string]interface{}{"overwrite": true},
			Description: "Replace the existing file",
		})
	}

	if storage.IsConstraintViolation(err) {
		return opserrors.NewConstraintError(op, err)
	}
	return opserrors.NewOperationError(op, err)
}

// requireString returns a non-empty string parameter.
func requireString(params map[string]interface{}, name string) (string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return "", opserrors.NewInvalidParameterError(name, "required")
	}
	s, ok := v.(string)
	if !ok {
		return "", opserrors.NewInvalidParameterError(name, "expected string")
	}
	if s == "" {
		return "", opserrors.NewInvalidParameterError(name, "must not be empty")
	}
	return s, nil
}

// optionalString returns nil when the parameter is absent or null.
func optionalString(params map[string]interface{}, name string) (*string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, opserrors.NewInvalidParameterError(name, "expected string")
	}
	return &s, nil
}

// stringParam returns the parameter or "" when absent.
func stringParam(params map[string]interface{}, name string) (string, error) {
	s, err := optionalString(params, name)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// enumParam returns the parameter when it is one of allowed, or "" when absent.
func enumParam(params map[string]interface{}, name string, allowed ...string) (string, error) {
	s, err := stringParam(params, name)
	if err != nil || s == "" {
		return s, err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", opserrors.NewInvalidParameterError(name, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// optionalInt accepts a JSON number with no fractional part.
func optionalInt(params map[string]interface{}, name string) (*int, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, opserrors.NewInvalidParameterError(name, "expected integer")
	}
	i := int(f)
	return &i, nil
}

// optionalBool accepts true/false or the numbers 0 and 1.
func optionalBool(params map[string]interface{}, name string) (*bool, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch b := v.(type) {
	case bool:
		return &b, nil
	case float64:
		if b == 0 || b == 1 {
			flag := b == 1
			return &flag, nil
		}
	}
	return nil, opserrors.NewInvalidParameterError(name, "expected boolean or 0/1")
}

func boolParam(params map[string]interface{}, name string) (bool, error) {
	b, err := optionalBool(params, name)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

// stringSlice accepts an array of strings.
func stringSlice(params map[string]interface{}, name string) ([]string, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, opserrors.NewInvalidParameterError(name, "expected array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, opserrors.NewInvalidParameterError(name, "expected array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// objectParam accepts a JSON object, or a string holding one.
func objectParam(params map[string]interface{}, name string) (map[string]interface{}, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	switch o := v.(type) {
	case map[string]interface{}:
		return o, nil
	case string:
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(o), &decoded); err != nil || decoded == nil {
			return nil, opserrors.NewInvalidParameterError(name, "expected JSON object")
		}
		return decoded, nil
	}
	return nil, opserrors.NewInvalidParameterError(name, "expected object")
}

// rejectUnknown fails when params holds a key outside allowed. Keys in
// ignored are dropped silently.
func rejectUnknown(params map[string]interface{}, allowed []string, ignored ...string) error {
	known := make(map[string]bool, len(allowed)+len(ignored))
	for _, k := range allowed {
		known[k] = true
	}
	for _, k := range ignored {
		known[k] = true
	}

	var unknown []string
	for k := range params {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return opserrors.NewInvalidParameterError(unknown[0],
		fmt.Sprintf("not an updatable field (allowed: %s)", strings.Join(allowed, ", ")))
}

// notFound reports a missing record by kind and id.
func notFound(kind, id string) error {
	return opserrors.NewResourceNotFoundError(kind, id)
}

// noneFound reports a project with no records of a kind, e.g. "No releases found".
func noneFound(message, projectID string) error {
	return opserrors.NewOpsError(opserrors.NotFound, message, nil, nil).
		WithDetails(map[string]string{"project_id": projectID})
}
