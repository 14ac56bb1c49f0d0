package slogutil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ndjsonLine is one record in the log file.
type ndjsonLine struct {
	Ts      string                 `json:"ts"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NDJSONHandler writes one JSON object per line: {ts, level, message, data?}.
// Attributes are collected under "data"; groups become nested objects.
type NDJSONHandler struct {
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

// NewNDJSONHandler creates a handler writing newline-delimited JSON to w.
func NewNDJSONHandler(w io.Writer, opts *slog.HandlerOptions) *NDJSONHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &NDJSONHandler{
		w:     w,
		level: level,
		mu:    &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *NDJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle encodes the record as a single line.
func (h *NDJSONHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	line := ndjsonLine{
		Ts:      ts.UTC().Format(time.RFC3339Nano),
		Level:   levelString(r.Level),
		Message: r.Message,
	}

	data := make(map[string]interface{})
	for _, a := range h.attrs {
		putAttr(data, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(data, h.groups, a)
		return true
	})
	if len(data) > 0 {
		line.Data = data
	}

	buf, err := json.Marshal(line)
	if err != nil {
		return err
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(buf)
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *NDJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		newAttrs = append(newAttrs, nestAttr(h.groups, a))
	}

	return &NDJSONHandler{
		w:      h.w,
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
		mu:     h.mu,
	}
}

// WithGroup returns a new handler with the given group name added.
func (h *NDJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &NDJSONHandler{
		w:      h.w,
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
		mu:     h.mu,
	}
}

// nestAttr wraps a in the given groups, outermost first.
func nestAttr(groups []string, a slog.Attr) slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		a = slog.Attr{Key: groups[i], Value: slog.GroupValue(a)}
	}
	return a
}

func putAttr(dst map[string]interface{}, groups []string, a slog.Attr) {
	a = nestAttr(groups, a)
	a.Value = a.Value.Resolve()
	if a.Key == "" && a.Value.Kind() != slog.KindGroup {
		return
	}

	if a.Value.Kind() != slog.KindGroup {
		dst[a.Key] = jsonValue(a.Value)
		return
	}

	target := dst
	if a.Key != "" {
		sub, ok := dst[a.Key].(map[string]interface{})
		if !ok {
			sub = make(map[string]interface{})
			dst[a.Key] = sub
		}
		target = sub
	}
	for _, ga := range a.Value.Group() {
		putAttr(target, nil, ga)
	}
}

func jsonValue(v slog.Value) interface{} {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}
