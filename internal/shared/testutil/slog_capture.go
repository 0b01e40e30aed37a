// Package testutil provides an in-memory slog handler so tests can assert
// on what a component logged without writing to disk.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// CapturedRecord is one log record as seen by the capture handler. Attrs
// includes attributes bound via Logger.With as well as call-site attributes.
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture records every log line sent through it. Safe for concurrent use.
type LogCapture struct {
	mu      sync.Mutex
	records []CapturedRecord
	preset  []slog.Attr
}

// NewCaptureLogger returns a logger whose output is recorded in the returned
// capture instead of being written anywhere.
func NewCaptureLogger() (*slog.Logger, *LogCapture) {
	capture := &LogCapture{}
	return slog.New(capture), capture
}

// Enabled reports true for every level; tests want everything.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(c.preset))
	for _, a := range c.preset {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, CapturedRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs returns a derived handler that shares this capture's record store
// but stamps the given attributes on every record it handles.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(c.preset)+len(attrs))
	merged = append(merged, c.preset...)
	merged = append(merged, attrs...)
	return &derivedCapture{root: c, preset: merged}
}

// WithGroup is accepted but groups are flattened; tests here assert on flat keys.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []CapturedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CapturedRecord, len(c.records))
	copy(out, c.records)
	return out
}

// HasMessage reports whether any captured record's message contains substr.
func (c *LogCapture) HasMessage(substr string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

// AttrValue returns the named attribute from the first record whose message
// contains substr. The second return is false when no such record exists or
// the record lacks the attribute.
func (c *LogCapture) AttrValue(substr, key string) (any, bool) {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, substr) {
			v, ok := r.Attrs[key]
			return v, ok
		}
	}
	return nil, false
}

// MessagesAtLevel returns the messages of all records logged at exactly level.
func (c *LogCapture) MessagesAtLevel(level slog.Level) []string {
	var out []string
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

func (c *LogCapture) append(rec CapturedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

// derivedCapture carries Logger.With attributes while writing to the root store.
type derivedCapture struct {
	root   *LogCapture
	preset []slog.Attr
}

func (d *derivedCapture) Enabled(context.Context, slog.Level) bool { return true }

func (d *derivedCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(d.preset))
	for _, a := range d.preset {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	d.root.append(CapturedRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

func (d *derivedCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(d.preset)+len(attrs))
	merged = append(merged, d.preset...)
	merged = append(merged, attrs...)
	return &derivedCapture{root: d.root, preset: merged}
}

func (d *derivedCapture) WithGroup(string) slog.Handler { return d }
