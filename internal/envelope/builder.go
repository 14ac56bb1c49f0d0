package envelope

import (
	opserrors "pluginops/internal/errors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// WithCount records the number of items in a list payload.
func (b *Builder) WithCount(n int) *Builder {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	b.resp.Meta.Count = &n
	return b
}

// WithFilters records the equality filters applied to a list. Empty values are dropped.
func (b *Builder) WithFilters(filters map[string]string) *Builder {
	applied := make(map[string]string)
	for k, v := range filters {
		if v != "" {
			applied[k] = v
		}
	}
	if len(applied) == 0 {
		return b
	}

	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	b.resp.Meta.Filters = applied
	return b
}

// Warning adds a warning message.
func (b *Builder) Warning(msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Message: msg})
	return b
}

// WarningWithCode adds a warning with a code.
func (b *Builder) WarningWithCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Suggest appends a follow-up tool call.
func (b *Builder) Suggest(tool string, params map[string]interface{}, reason string) *Builder {
	b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: reason,
	})
	return b
}

// Error sets the error field. Typed errors keep their code, details and fixes.
func (b *Builder) Error(err error) *Builder {
	if err == nil {
		return b
	}

	info := &ErrorInfo{
		Code:    string(opserrors.InternalError),
		Message: err.Error(),
	}
	if opsErr, ok := opserrors.As(err); ok {
		info.Code = string(opsErr.Code)
		info.Details = opsErr.Details
		if len(opsErr.SuggestedFixes) > 0 {
			info.SuggestedFixes = opsErr.SuggestedFixes
		}
	}
	b.resp.Error = info
	return b
}

// Build returns the completed response envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

// Operational creates a simple envelope for a successful operation.
func Operational(data interface{}) *Response {
	return &Response{
		SchemaVersion: CurrentSchemaVersion,
		Data:          data,
	}
}

// List creates an envelope for a list payload with its count.
func List(data interface{}, n int) *Response {
	return New().Data(data).WithCount(n).Build()
}
