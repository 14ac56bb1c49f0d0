// Package envelope provides a standardized response wrapper for all MCP tool responses.
// Every tool response carries the payload plus warnings, a structured error and
// suggested follow-up calls.
package envelope

// Meta holds response metadata.
type Meta struct {
	Count   *int              `json:"count,omitempty"`   // number of records in a list payload
	Filters map[string]string `json:"filters,omitempty"` // equality filters applied to a list
}

// SuggestedCall represents a recommended follow-up tool call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ErrorInfo is the structured error carried by a failed response.
type ErrorInfo struct {
	Code           string      `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes interface{} `json:"suggestedFixes,omitempty"`
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	Error              *ErrorInfo      `json:"error,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

// IsError reports whether the response carries an error.
func (r *Response) IsError() bool {
	return r != nil && r.Error != nil
}
