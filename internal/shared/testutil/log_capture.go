package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/infrastructure"
)

// LogRecord is one captured record. Attributes bound with Logger.With are
// merged into Attrs; RunID comes from the record's context.
type LogRecord struct {
	Level   slog.Level
	Message string
	RunID   string
	Attrs   map[string]any
}

// Stage returns the "stage" attribute, or "" for run-level records.
func (r LogRecord) Stage() string {
	s, _ := r.Attrs["stage"].(string)
	return s
}

type captured struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that keeps every record in memory and echoes
// it to t.Log. Handlers derived with WithAttrs share one buffer.
type LogCapture struct {
	buf   *captured
	bound []slog.Attr
	t     testing.TB
}

// NewTestLogger returns a logger writing into a fresh LogCapture.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	c := &LogCapture{buf: &captured{}, t: t}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(ctx context.Context, r slog.Record) error {
	rec := LogRecord{
		Level:   r.Level,
		Message: r.Message,
		RunID:   infrastructure.RunIDFromContext(ctx),
		Attrs:   make(map[string]any, len(c.bound)+r.NumAttrs()),
	}
	for _, a := range c.bound {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})

	c.buf.mu.Lock()
	c.buf.records = append(c.buf.records, rec)
	c.buf.mu.Unlock()

	if c.t != nil {
		c.t.Logf("%s %s %v", r.Level, r.Message, rec.Attrs)
	}
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := append(append([]slog.Attr(nil), c.bound...), attrs...)
	return &LogCapture{buf: c.buf, bound: bound, t: c.t}
}

// WithGroup flattens groups; no logger in this module uses them.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a snapshot of everything logged so far.
func (c *LogCapture) Records() []LogRecord {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	return append([]LogRecord(nil), c.buf.records...)
}

// Len reports how many records were captured.
func (c *LogCapture) Len() int {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	return len(c.buf.records)
}

// Reset drops the captured records.
func (c *LogCapture) Reset() {
	c.buf.mu.Lock()
	c.buf.records = nil
	c.buf.mu.Unlock()
}

// Filter returns the records keep accepts, in logging order.
func (c *LogCapture) Filter(keep func(LogRecord) bool) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// AtLevel returns the records logged at level.
func (c *LogCapture) AtLevel(level slog.Level) []LogRecord {
	return c.Filter(func(r LogRecord) bool { return r.Level == level })
}

// ForStage returns the records a pipeline stage logged.
func (c *LogCapture) ForStage(stageID string) []LogRecord {
	return c.Filter(func(r LogRecord) bool { return r.Stage() == stageID })
}

// ContainsMessage reports whether any message contains substr.
func (c *LogCapture) ContainsMessage(substr string) bool {
	return len(c.Filter(func(r LogRecord) bool { return strings.Contains(r.Message, substr) })) > 0
}

// ContainsAttr reports whether any record carries key=value.
func (c *LogCapture) ContainsAttr(key string, value any) bool {
	return len(c.Filter(func(r LogRecord) bool {
		v, ok := r.Attrs[key]
		return ok && v == value
	})) > 0
}

func (c *LogCapture) dump(t testing.TB) {
	for _, r := range c.Records() {
		t.Logf("  %s %q %v", r.Level, r.Message, r.Attrs)
	}
}

// AssertLogContains fails t unless a record at level contains substr.
func AssertLogContains(t testing.TB, c *LogCapture, level slog.Level, substr string) {
	t.Helper()
	for _, r := range c.AtLevel(level) {
		if strings.Contains(r.Message, substr) {
			return
		}
	}
	t.Errorf("no %s record containing %q", level, substr)
	c.dump(t)
}

// AssertLogAttr fails t unless some record carries key=value.
func AssertLogAttr(t testing.TB, c *LogCapture, key string, value any) {
	t.Helper()
	if !c.ContainsAttr(key, value) {
		t.Errorf("no record with %s=%v", key, value)
		c.dump(t)
	}
}

// AssertNoErrors fails t for every error-level record.
func AssertNoErrors(t testing.TB, c *LogCapture) {
	t.Helper()
	for _, r := range c.AtLevel(slog.LevelError) {
		t.Errorf("unexpected error log %q %v", r.Message, r.Attrs)
	}
}

// AssertSingleRun fails t unless every record was logged inside the run
// with ID runID.
func AssertSingleRun(t testing.TB, c *LogCapture, runID string) {
	t.Helper()
	for _, r := range c.Records() {
		if r.RunID != runID {
			t.Errorf("record %q logged with run_id %q, want %q", r.Message, r.RunID, runID)
		}
	}
}
