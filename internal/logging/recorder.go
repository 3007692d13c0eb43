package logging

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// Recorder keeps a bounded in-memory tail of log entries so the get_logs tool
// can expose recent activity without touching disk. It plugs into logrus as a
// hook: every component keeps logging through the shared logger and the
// recorder observes.
//
// Recorders are constructed explicitly and passed by reference; there is no
// package-level instance.
type Recorder struct {
	mu      sync.Mutex
	max     int
	entries []types.LogEntry
}

// NewRecorder creates a recorder that retains at most max entries, evicting
// the oldest on overflow.
func NewRecorder(max int) *Recorder {
	if max < 1 {
		max = 1
	}
	return &Recorder{max: max}
}

// Levels implements logrus.Hook.
func (r *Recorder) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (r *Recorder) Fire(entry *logrus.Entry) error {
	rec := types.LogEntry{
		Level:   entry.Level.String(),
		Message: entry.Message,
		Time:    entry.Time,
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if k == "component" {
				if s, ok := v.(string); ok {
					rec.Component = s
					continue
				}
			}
			rec.Fields[k] = v
		}
		if len(rec.Fields) == 0 {
			rec.Fields = nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, rec)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
	return nil
}

// Entries returns up to limit of the most recent entries, newest last. An
// empty minLevel (or an unknown one) returns entries of every severity;
// otherwise entries below minLevel are filtered out.
func (r *Recorder) Entries(limit int, minLevel string) []types.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var threshold logrus.Level = logrus.TraceLevel
	if minLevel != "" {
		if lvl, err := logrus.ParseLevel(strings.ToLower(minLevel)); err == nil {
			threshold = lvl
		}
	}

	out := make([]types.LogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		lvl, err := logrus.ParseLevel(e.Level)
		if err == nil && lvl > threshold {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Len reports how many entries are currently buffered.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear drops all buffered entries.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
